package krajc

import (
	"slices"

	"github.com/oliverbestmann/krajc/internal/set"
)

// DependencyGraph describes which runnables of a schedule may not run at the
// same time. Runnables are identified by their index in registration order.
type DependencyGraph struct {
	// Groups holds the compatibility groups in creation order. Every runnable
	// is member of exactly one group and all members of a group are pairwise
	// compatible.
	Groups [][]int

	groupOf []int
	edges   []set.Set[int]

	// waits holds, per runnable, the sorted conflicting runnables registered
	// before it. A runnable is only dispatched once all of them completed.
	waits [][]int

	lookup []Runnable
}

// buildDependencyGraph computes groups and edges from the filter lists of all
// runnables, given in registration order.
func buildDependencyGraph(filters [][]Filter) *DependencyGraph {
	count := len(filters)

	g := &DependencyGraph{
		groupOf: make([]int, count),
		edges:   make([]set.Set[int], count),
		waits:   make([][]int, count),
	}

	// first fit: join the first group where the runnable is compatible with every member
	for idx := range count {
		groupIdx := slices.IndexFunc(g.Groups, func(group []int) bool {
			for _, member := range group {
				if !Compatible(filters[idx], filters[member]) {
					return false
				}
			}

			return true
		})

		if groupIdx == -1 {
			groupIdx = len(g.Groups)
			g.Groups = append(g.Groups, nil)
		}

		g.Groups[groupIdx] = append(g.Groups[groupIdx], idx)
		g.groupOf[idx] = groupIdx
	}

	// mutual edges between every incompatible pair
	for i := range count {
		for j := i + 1; j < count; j++ {
			if !Compatible(filters[i], filters[j]) {
				g.edges[i].Insert(j)
				g.edges[j].Insert(i)
			}
		}
	}

	// drop edges between members of the same group. They are compatible by
	// construction, so this only removes edges the pairwise check would not
	// have created. Edges that cross groups are never touched.
	for i := range count {
		for _, j := range set.Sorted(&g.edges[i]) {
			if g.groupOf[i] == g.groupOf[j] {
				g.edges[i].Remove(j)
				g.edges[j].Remove(i)
			}
		}
	}

	for i := range count {
		for _, j := range set.Sorted(&g.edges[i]) {
			if j < i {
				g.waits[i] = append(g.waits[i], j)
			}
		}
	}

	return g
}

// Len returns the number of runnables in the graph.
func (g *DependencyGraph) Len() int {
	return len(g.edges)
}

// Edges returns the sorted indices of all runnables conflicting with runnable i.
func (g *DependencyGraph) Edges(i int) []int {
	return set.Sorted(&g.edges[i])
}

func (g *DependencyGraph) HasEdge(i, j int) bool {
	return g.edges[i].Has(j)
}

// EdgeCount returns the number of conflicting pairs.
func (g *DependencyGraph) EdgeCount() int {
	var count int
	for i := range g.edges {
		count += g.edges[i].Len()
	}

	return count / 2
}

func (g *DependencyGraph) GroupOf(i int) int {
	return g.groupOf[i]
}

// Runnable returns the runnable at index i. It is nil for graphs that were
// not built by a Schedule.
func (g *DependencyGraph) Runnable(i int) Runnable {
	if i >= len(g.lookup) {
		return nil
	}

	return g.lookup[i]
}

// ready reports whether runnable i does not wait on any pending runnable.
func (g *DependencyGraph) ready(i int, pending *set.Set[int]) bool {
	for _, j := range g.waits[i] {
		if pending.Has(j) {
			return false
		}
	}

	return true
}

// Levels layers the runnables: a runnable is placed one level after the
// latest conflicting runnable registered before it. All runnables of a level
// can execute at the same time. Runnables only wait on lower indices, so the
// layering is computed in a single pass in registration order.
func (g *DependencyGraph) Levels() [][]int {
	levelOf := make([]int, len(g.waits))

	var levels [][]int

	for i, waits := range g.waits {
		level := 0
		for _, j := range waits {
			level = max(level, levelOf[j]+1)
		}

		levelOf[i] = level

		if level == len(levels) {
			levels = append(levels, nil)
		}

		levels[level] = append(levels[level], i)
	}

	return levels
}
