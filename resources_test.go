package krajc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type resA struct {
	Value int
}

type resB struct {
	Value int
}

type closable struct {
	closed *bool
}

func (c closable) Close() error {
	*c.closed = true
	return errors.New("closed")
}

func TestResInitializesResource(t *testing.T) {
	rt := NewRuntime(Options{})

	_, ok := ResourceOf[resA](rt)
	require.False(t, ok)

	require.NoError(t, rt.AddSystems(Update, func(a Res[resA]) {
		a.Value.Value += 1
	}))

	require.NoError(t, rt.Startup())

	// the resource exists after setup, with its zero value
	a, ok := ResourceOf[resA](rt)
	require.True(t, ok)
	require.Equal(t, 0, a.Value)

	require.NoError(t, rt.Frame(time.Millisecond))
	require.NoError(t, rt.Frame(time.Millisecond))
	require.Equal(t, 2, a.Value)
}

func TestResourceParams(t *testing.T) {
	rt := NewRuntime(Options{})
	rt.InsertResource(resA{Value: 1})

	var copied resA
	require.NoError(t, rt.AddSystems(Update,
		func(a *resA) { a.Value += 1 },
		func(a resA) { copied = a },
	))

	require.NoError(t, rt.Startup())
	require.NoError(t, rt.Frame(time.Millisecond))

	require.Equal(t, 2, copied.Value)
}

func TestInsertResourceKeepsPointer(t *testing.T) {
	rt := NewRuntime(Options{})
	rt.InsertResource(resA{Value: 1})

	ptr, _ := ResourceOf[resA](rt)

	rt.InsertResource(resA{Value: 2})
	require.Equal(t, 2, ptr.Value)

	require.Same(t, ptr, GetOrInit[resA](rt))
}

func TestInsertResourcePointer(t *testing.T) {
	rt := NewRuntime(Options{})
	require.Panics(t, func() { rt.InsertResource(&resA{}) })
}

func TestResourceFilter(t *testing.T) {
	rt := NewRuntime(Options{})
	rt.InsertResource(resB{})

	require.NoError(t, rt.AddSystems(Update,
		func(Res[resA]) {},
		func(*resB) {},
		func(resB) {},
	))

	require.NoError(t, rt.Build())

	schedule, _ := rt.Schedule(Update)
	graph := schedule.Graph()

	require.False(t, graph.HasEdge(0, 1))
	require.False(t, graph.HasEdge(0, 2))
	require.True(t, graph.HasEdge(1, 2))
}

func TestCloseClosesResources(t *testing.T) {
	rt := NewRuntime(Options{})

	var closed bool
	rt.InsertResource(closable{closed: &closed})

	err := rt.Close()
	require.True(t, closed)
	require.ErrorContains(t, err, "closed")
}
