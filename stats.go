package krajc

import (
	"maps"
	"slices"
	"sync"
	"time"
)

type Timings struct {
	Count         int
	Latest        time.Duration
	Total         time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Latest = d
	t.Total += d
	t.Count += 1

	return t
}

// TimingStats collects execution times of schedules and systems. Insert it
// as a resource created by NewTimingStats to enable collection. The zero
// value records nothing.
type TimingStats struct {
	state *timingState
}

type timingState struct {
	mu sync.Mutex

	bySchedule    map[ScheduleId]Timings
	scheduleOrder []ScheduleId

	bySystem map[string]Timings
}

func NewTimingStats() TimingStats {
	return TimingStats{
		state: &timingState{
			bySchedule: map[ScheduleId]Timings{},
			bySystem:   map[string]Timings{},
		},
	}
}

func (t *TimingStats) MeasureSchedule(scheduleId ScheduleId) TimingStopwatch {
	if t.state == nil {
		return TimingStopwatch{Stop: func() {}}
	}

	startTime := time.Now()

	return TimingStopwatch{
		Stop: func() {
			duration := time.Since(startTime)

			t.state.mu.Lock()
			defer t.state.mu.Unlock()

			if _, ok := t.state.bySchedule[scheduleId]; !ok {
				t.state.scheduleOrder = append(t.state.scheduleOrder, scheduleId)
			}

			t.state.bySchedule[scheduleId] = t.state.bySchedule[scheduleId].Add(duration)
		},
	}
}

func (t *TimingStats) MeasureSystem(name string) TimingStopwatch {
	if t.state == nil {
		return TimingStopwatch{Stop: func() {}}
	}

	startTime := time.Now()

	return TimingStopwatch{
		Stop: func() {
			duration := time.Since(startTime)

			t.state.mu.Lock()
			defer t.state.mu.Unlock()

			t.state.bySystem[name] = t.state.bySystem[name].Add(duration)
		},
	}
}

func (t *TimingStats) Schedule(scheduleId ScheduleId) (Timings, bool) {
	if t.state == nil {
		return Timings{}, false
	}

	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	timings, ok := t.state.bySchedule[scheduleId]
	return timings, ok
}

// Schedules returns the measured schedules in the order they were first seen.
func (t *TimingStats) Schedules() []ScheduleId {
	if t.state == nil {
		return nil
	}

	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	return slices.Clone(t.state.scheduleOrder)
}

func (t *TimingStats) System(name string) (Timings, bool) {
	if t.state == nil {
		return Timings{}, false
	}

	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	timings, ok := t.state.bySystem[name]
	return timings, ok
}

// Systems returns the names of all measured systems, sorted.
func (t *TimingStats) Systems() []string {
	if t.state == nil {
		return nil
	}

	t.state.mu.Lock()
	defer t.state.mu.Unlock()

	return slices.Sorted(maps.Keys(t.state.bySystem))
}

type TimingStopwatch struct {
	Stop func()
}
