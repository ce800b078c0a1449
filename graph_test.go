package krajc

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func resourceFilter[T any]() Filter {
	return ResourceAccess(reflect.TypeFor[T]())
}

func mixedFilters() [][]Filter {
	pos := ComponentTypeFor[Position]()
	vel := ComponentTypeFor[Velocity]()

	return [][]Filter{
		{resourceFilter[resA]()},
		{resourceFilter[resA](), Transparent()},
		{resourceFilter[resB]()},
		{QueryAccess(accessOf([]*ComponentType{pos}, nil))},
		{QueryAccess(accessOf(nil, []*ComponentType{pos}))},
		{Transparent()},
		{Opaque()},
		{QueryAccess(accessOf([]*ComponentType{pos}, []*ComponentType{vel})), resourceFilter[resB]()},
		{},
	}
}

func TestDependencyGraphGroups(t *testing.T) {
	filters := mixedFilters()
	g := buildDependencyGraph(filters)

	seen := map[int]int{}
	for groupIdx, group := range g.Groups {
		for _, member := range group {
			seen[member] += 1
			require.Equal(t, groupIdx, g.GroupOf(member))
		}

		// members of a group are pairwise compatible
		for _, a := range group {
			for _, b := range group {
				if a != b {
					require.True(t, Compatible(filters[a], filters[b]), "%d vs %d", a, b)
				}
			}
		}
	}

	// every runnable is member of exactly one group
	require.Len(t, seen, len(filters))
	for _, count := range seen {
		require.Equal(t, 1, count)
	}
}

func TestDependencyGraphEdges(t *testing.T) {
	filters := mixedFilters()
	g := buildDependencyGraph(filters)

	for i := range filters {
		for j := range filters {
			if i == j {
				continue
			}

			// every incompatible pair is connected, in both directions
			compatible := Compatible(filters[i], filters[j])
			require.Equal(t, !compatible, g.HasEdge(i, j), "%d vs %d", i, j)
			require.Equal(t, g.HasEdge(i, j), g.HasEdge(j, i))
		}
	}
}

func TestDependencyGraphIdempotent(t *testing.T) {
	filters := mixedFilters()

	first := buildDependencyGraph(filters)
	second := buildDependencyGraph(filters)

	require.Equal(t, first.Groups, second.Groups)

	for i := range filters {
		require.Equal(t, first.Edges(i), second.Edges(i))
	}
}

func TestDependencyGraphKeepsEdgesAcrossGroups(t *testing.T) {
	// writer and reader of resA end up in different groups,
	// pruning must not drop the edge between them
	filters := [][]Filter{
		{resourceFilter[resA]()},
		{resourceFilter[resA]()},
		{resourceFilter[resB]()},
	}

	g := buildDependencyGraph(filters)

	require.Equal(t, [][]int{{0, 2}, {1}}, g.Groups)
	require.True(t, g.HasEdge(0, 1))
	require.True(t, g.HasEdge(1, 0))
	require.False(t, g.HasEdge(0, 2))
	require.False(t, g.HasEdge(1, 2))
	require.Equal(t, 1, g.EdgeCount())
}

func TestDependencyGraphFirstFit(t *testing.T) {
	// first fit depends on registration order
	filters := [][]Filter{
		{resourceFilter[resA]()},
		{resourceFilter[resB]()},
		{resourceFilter[resA](), resourceFilter[resB]()},
		{Transparent()},
	}

	g := buildDependencyGraph(filters)
	require.Equal(t, [][]int{{0, 1, 3}, {2}}, g.Groups)
	require.Equal(t, []int{2}, g.Edges(0))
	require.Equal(t, []int{2}, g.Edges(1))
	require.Equal(t, []int{0, 1}, g.Edges(2))
	require.Empty(t, g.Edges(3))
}

func TestDependencyGraphOpaque(t *testing.T) {
	filters := [][]Filter{
		{Transparent()},
		{Opaque()},
		{resourceFilter[resA]()},
	}

	g := buildDependencyGraph(filters)
	require.Equal(t, []int{0, 2}, g.Edges(1))
	require.Len(t, g.Groups, 2)
}

func TestDependencyGraphLevels(t *testing.T) {
	filters := [][]Filter{
		{resourceFilter[resA]()},
		{resourceFilter[resA]()},
		{resourceFilter[resB]()},
		{resourceFilter[resA](), resourceFilter[resB]()},
	}

	g := buildDependencyGraph(filters)

	require.Equal(t, [][]int{{0, 2}, {1}, {3}}, g.Levels())
}

func TestDependencyGraphEmpty(t *testing.T) {
	g := buildDependencyGraph(nil)

	require.Equal(t, 0, g.Len())
	require.Empty(t, g.Groups)

	require.Empty(t, g.Levels())
}
