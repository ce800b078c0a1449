package krajc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Value int
}

type Player struct{}

type Frozen struct{}

func TestWorldSpawn(t *testing.T) {
	w := NewWorld()

	a := w.Spawn(Position{X: 1}, Velocity{X: 2})
	b := w.Spawn(Position{X: 3})

	require.NotEqual(t, a, b)
	require.Equal(t, 2, w.Len())

	pos, ok := ComponentOf[Position](w, a)
	require.True(t, ok)
	require.Equal(t, Position{X: 1}, *pos)

	_, ok = ComponentOf[Velocity](w, b)
	require.False(t, ok)
}

func TestWorldInsertReplaces(t *testing.T) {
	w := NewWorld()

	entityId := w.Spawn(Health{Value: 10})
	pos, _ := ComponentOf[Health](w, entityId)

	require.True(t, w.Insert(entityId, Health{Value: 20}))

	// pointers stay valid when a component is replaced
	require.Equal(t, 20, pos.Value)

	require.False(t, w.Insert(EntityId(999), Health{}))
}

func TestWorldDespawn(t *testing.T) {
	w := NewWorld()

	a := w.Spawn(Position{X: 1})
	b := w.Spawn(Position{X: 2})
	c := w.Spawn(Position{X: 3})

	require.True(t, w.Despawn(a))
	require.False(t, w.Despawn(a))
	require.False(t, w.Exists(a))
	require.Equal(t, 2, w.Len())

	for _, entityId := range []EntityId{b, c} {
		require.True(t, w.Exists(entityId))

		_, ok := ComponentOf[Position](w, entityId)
		require.True(t, ok)
	}

	_, ok := ComponentOf[Position](w, a)
	require.False(t, ok)
}

func TestWorldRemoveComponent(t *testing.T) {
	w := NewWorld()

	entityId := w.Spawn(Position{}, Velocity{})
	require.True(t, RemoveComponent[Velocity](w, entityId))
	require.False(t, RemoveComponent[Velocity](w, entityId))

	_, ok := ComponentOf[Velocity](w, entityId)
	require.False(t, ok)

	require.True(t, w.Exists(entityId))
}

func TestComponentTypeOf(t *testing.T) {
	a := ComponentTypeFor[Position]()
	b := ComponentTypeFor[Position]()
	c := ComponentTypeFor[Velocity]()

	require.Same(t, a, b)
	require.NotEqual(t, a.Id, c.Id)

	require.Panics(t, func() { ComponentTypeFor[*Position]() })
	require.Panics(t, func() { ComponentTypeFor[int]() })
}
