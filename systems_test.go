package krajc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSystemNames(t *testing.T) {
	a := System(func() {})
	b := System(func() {})

	require.NotEqual(t, a.Name(), b.Name())
	require.Equal(t, "named", System(func() {}).Named("named").Name())
}

func TestSystemNotAFunction(t *testing.T) {
	require.Panics(t, func() { System(42) })

	rt := NewRuntime(Options{})
	require.ErrorIs(t, rt.AddSystems(Update, 42), ErrNotASystem)
}

func TestSystemRunBeforeSetup(t *testing.T) {
	rt := NewRuntime(Options{})

	err := System(func() {}).Run(rt)
	require.ErrorIs(t, err, ErrExpectedInvariantViolation)
}

func TestSystemReturnTypes(t *testing.T) {
	rt := NewRuntime(Options{})

	require.NoError(t, rt.RunSystem(func() error { return nil }))

	errFailed := errors.New("failed")
	require.ErrorIs(t, rt.RunSystem(func() error { return errFailed }), errFailed)

	require.ErrorIs(t, rt.RunSystem(func() int { return 1 }), ErrUnsupportedParam)
	require.ErrorIs(t, rt.RunSystem(func(...int) {}), ErrUnsupportedParam)
}

func TestSystemFilters(t *testing.T) {
	rt := NewRuntime(Options{})
	rt.InsertResource(resB{})

	system := System(func(*World, Res[resA], *Local[int], resB, Query[struct{ Position *Position }]) {})

	filters, err := system.Setup(rt, 1)
	require.NoError(t, err)

	kinds := make([]FilterKind, 0, len(filters))
	for _, filter := range filters {
		kinds = append(kinds, filter.Kind())
	}

	require.Equal(t, []FilterKind{
		FilterOpaque,
		FilterResource,
		FilterTransparent,
		FilterResource,
		FilterQuery,
	}, kinds)
}

func TestSystemRunIf(t *testing.T) {
	rt := NewRuntime(Options{})

	var calls int
	system := System(func() { calls++ }).RunIf(EveryNthFrame(2))

	require.NoError(t, rt.AddSystems(Update, system))
	require.NoError(t, rt.Startup())

	for range 6 {
		require.NoError(t, rt.Frame(time.Millisecond))
	}

	require.Equal(t, 3, calls)

	schedule, _ := rt.Schedule(Update)
	require.Equal(t, 1, schedule.Executed())
}

func TestResourceExists(t *testing.T) {
	rt := NewRuntime(Options{})

	var calls int
	system := System(func() { calls++ }).RunIf(ResourceExists[resA])

	require.NoError(t, rt.AddSystems(Update, system))
	require.NoError(t, rt.Startup())

	require.NoError(t, rt.Frame(time.Millisecond))
	require.Equal(t, 0, calls)

	rt.InsertResource(resA{})

	require.NoError(t, rt.Frame(time.Millisecond))
	require.Equal(t, 1, calls)
}
