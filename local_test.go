package krajc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	rt := NewRuntime(Options{})

	var countSeen int

	local := func(count *Local[int], other *Local[int]) {
		count.Value += 1
		countSeen = count.Value

		require.Equal(t, 0, other.Value)
	}

	require.NoError(t, rt.AddSystems(Update, local))
	require.NoError(t, rt.Startup())

	require.NoError(t, rt.Frame(time.Millisecond))
	require.NoError(t, rt.Frame(time.Millisecond))

	require.Equal(t, 2, countSeen)
}

func TestLocalPerSystem(t *testing.T) {
	rt := NewRuntime(Options{Parallelism: true, Workers: 2})
	defer func() { require.NoError(t, rt.Close()) }()

	var seen [2]int

	makeSystem := func(idx int) func(*Local[int]) {
		return func(count *Local[int]) {
			count.Value += idx + 1
			seen[idx] = count.Value
		}
	}

	require.NoError(t, rt.AddSystems(Update, makeSystem(0), makeSystem(1)))
	require.NoError(t, rt.Startup())

	for range 3 {
		require.NoError(t, rt.Frame(time.Millisecond))
	}

	require.Equal(t, [2]int{3, 6}, seen)

	// locals are transparent
	schedule, _ := rt.Schedule(Update)
	require.Equal(t, 0, schedule.Graph().EdgeCount())
}

func TestLocalByValue(t *testing.T) {
	rt := NewRuntime(Options{})

	require.NoError(t, rt.AddSystems(Update, func(Local[int]) {}))
	require.ErrorIs(t, rt.Build(), ErrUnsupportedParam)
}
