package krajc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type movable struct {
	Id       EntityId
	Position *Position
	Velocity Velocity
}

func TestQueryItems(t *testing.T) {
	w := NewWorld()

	a := w.Spawn(Position{X: 1}, Velocity{X: 1})
	w.Spawn(Position{X: 2})
	c := w.Spawn(Position{X: 3}, Velocity{X: 2})

	query, err := NewQuery[movable](w)
	require.NoError(t, err)
	require.Equal(t, 2, query.Count())

	for item := range query.Items() {
		item.Position.X += item.Velocity.X
	}

	posA, _ := ComponentOf[Position](w, a)
	require.Equal(t, 2.0, posA.X)

	posC, _ := ComponentOf[Position](w, c)
	require.Equal(t, 5.0, posC.X)

	item, ok := query.Get(c)
	require.True(t, ok)
	require.Equal(t, c, item.Id)
	require.Equal(t, Velocity{X: 2}, item.Velocity)
}

func TestQueryWithWithout(t *testing.T) {
	w := NewWorld()

	player := w.Spawn(Health{Value: 1}, Player{})
	w.Spawn(Health{Value: 2}, Player{}, Frozen{})
	w.Spawn(Health{Value: 3})

	type alivePlayer struct {
		Id     EntityId
		Health Health
		_      With[Player]
		_      Without[Frozen]
	}

	query, err := NewQuery[alivePlayer](w)
	require.NoError(t, err)

	item, ok := query.Single()
	require.True(t, ok)
	require.Equal(t, player, item.Id)
	require.Equal(t, 1, item.Health.Value)

	// the filters are not part of the access
	access := query.Access()
	require.True(t, access.Reads(ComponentTypeFor[Health]()))
	require.False(t, access.Reads(ComponentTypeFor[Player]()))
}

func TestQueryOnlyEntityId(t *testing.T) {
	w := NewWorld()
	w.Spawn()
	w.Spawn(Position{})

	type entity struct {
		Id EntityId
	}

	query, err := NewQuery[entity](w)
	require.NoError(t, err)
	require.Equal(t, 2, query.Count())

	_, ok := query.Single()
	require.False(t, ok)
}

func TestQueryInvalidType(t *testing.T) {
	w := NewWorld()

	type invalidField struct {
		Value int
	}

	_, err := NewQuery[invalidField](w)
	require.ErrorIs(t, err, ErrUnsupportedParam)

	type unexported struct {
		position Position
	}

	_, err = NewQuery[unexported](w)
	require.ErrorIs(t, err, ErrUnsupportedParam)

	_, err = NewQuery[int](w)
	require.ErrorIs(t, err, ErrUnsupportedParam)
}

func TestQueryAccessConflicts(t *testing.T) {
	rt := NewRuntime(Options{})

	require.NoError(t, rt.AddSystems(Update,
		func(Query[struct{ Position *Position }]) {},
		func(Query[struct{ Position Position }]) {},
		func(Query[struct{ Velocity Velocity }]) {},
		func(Query[struct{ Velocity Velocity }]) {},
	))

	require.NoError(t, rt.Build())

	schedule, _ := rt.Schedule(Update)
	graph := schedule.Graph()

	require.True(t, graph.HasEdge(0, 1))
	require.False(t, graph.HasEdge(0, 2))
	require.False(t, graph.HasEdge(2, 3))
	require.Equal(t, [][]int{{0, 2, 3}, {1}}, graph.Groups)
}

func TestQueryInSystem(t *testing.T) {
	forEachMode(t, func(t *testing.T, rt *Runtime) {
		entityId := rt.World().Spawn(Position{}, Velocity{X: 1, Y: 2})

		move := func(frame Res[FrameTime], query Query[movable]) {
			for item := range query.Items() {
				item.Position.X += item.Velocity.X * frame.Value.Delta.Seconds()
				item.Position.Y += item.Velocity.Y * frame.Value.Delta.Seconds()
			}
		}

		require.NoError(t, rt.AddSystems(Update, move))
		require.NoError(t, rt.Startup())

		for range 4 {
			require.NoError(t, rt.Frame(500*time.Millisecond))
		}

		pos, _ := ComponentOf[Position](rt.World(), entityId)
		require.Equal(t, Position{X: 2, Y: 4}, *pos)
	})
}
