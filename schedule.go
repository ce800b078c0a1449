package krajc

import (
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

// Schedule is an ordered list of runnables executed together. Before a
// schedule can be executed its dependency graph must be built. After that
// no more runnables can be registered.
type Schedule struct {
	id             ScheduleId
	singleThreaded bool

	actions []scheduledRunnable
	graph   *DependencyGraph

	runs         uint64
	lastExecuted int

	// values of SchedData parameters, by type
	data map[reflect.Type]reflect.Value
}

type scheduledRunnable struct {
	id       RunnableId
	runnable Runnable
}

func newSchedule(id ScheduleId, singleThreaded bool) *Schedule {
	return &Schedule{id: id, singleThreaded: singleThreaded}
}

func (s *Schedule) Id() ScheduleId {
	return s.id
}

// SingleThreaded reports whether the schedule always executes on the calling
// goroutine, regardless of the parallelism setting.
func (s *Schedule) SingleThreaded() bool {
	return s.singleThreaded
}

// Len returns the number of registered runnables.
func (s *Schedule) Len() int {
	return len(s.actions)
}

// Graph returns the dependency graph, or nil if it was not built yet.
func (s *Schedule) Graph() *DependencyGraph {
	return s.graph
}

// Runs returns how often the schedule was executed.
func (s *Schedule) Runs() uint64 {
	return s.runs
}

// Executed returns the number of runnables that completed during the last
// execution. Runnables skipped by their predicate count as completed.
func (s *Schedule) Executed() int {
	return s.lastExecuted
}

func (s *Schedule) register(id RunnableId, runnable Runnable) error {
	if s.graph != nil {
		return fmt.Errorf("%w: can not register %q into %s after its dependency graph was built",
			ErrScheduleFrozen, runnable.Name(), s.id)
	}

	s.actions = append(s.actions, scheduledRunnable{id: id, runnable: runnable})
	return nil
}

// CalcDepGraph sets up every runnable and builds the dependency graph from
// their filters. A previously built graph is replaced.
func (s *Schedule) CalcDepGraph(rt *Runtime) error {
	startTime := time.Now()

	filters := make([][]Filter, 0, len(s.actions))
	lookup := make([]Runnable, 0, len(s.actions))

	for _, action := range s.actions {
		actionFilters, err := action.runnable.Setup(rt, action.id)
		if err != nil {
			return fmt.Errorf("setup %q in schedule %s: %w", action.runnable.Name(), s.id, err)
		}

		rt.filters[action.id] = actionFilters
	}

	// filters are looked up by runnable id
	for _, action := range s.actions {
		actionFilters, ok := rt.filters[action.id]
		if !ok {
			return fmt.Errorf("%w: no filters for %q", ErrExpectedInvariantViolation, action.runnable.Name())
		}

		filters = append(filters, actionFilters)
		lookup = append(lookup, action.runnable)
	}

	graph := buildDependencyGraph(filters)
	graph.lookup = lookup

	s.graph = graph

	rt.logger.Info(
		"Dependency graph built",
		slog.String("schedule", s.id.String()),
		slog.Int("runnables", len(s.actions)),
		slog.Int("groups", len(graph.Groups)),
		slog.Int("edges", graph.EdgeCount()),
		slog.Int("levels", len(graph.Levels())),
		slog.Duration("duration", time.Since(startTime)),
	)

	return nil
}

// Execute runs every runnable of the schedule once. With parallelism enabled
// runnables are executed on the worker pool of the runtime, otherwise one
// after another in registration order. Execute returns when all runnables
// are done, or with the first failure.
func (s *Schedule) Execute(rt *Runtime) error {
	if s.graph == nil {
		return fmt.Errorf("%w: schedule %s", ErrGraphNotBuilt, s.id)
	}

	if stats, ok := ResourceOf[TimingStats](rt); ok {
		defer stats.MeasureSchedule(s.id).Stop()
	}

	s.runs += 1

	var executed int
	var err error

	parallel := rt.Parallelism() && !s.singleThreaded && len(s.actions) > 1

	// a schedule executed from within a running system falls back to the
	// calling goroutine, the pool is owned by the outer execution
	if parallel && rt.executing.CompareAndSwap(false, true) {
		executed, err = s.executeParallel(rt, rt.workerPool())
		rt.executing.Store(false)
	} else {
		executed, err = s.executeSingleThreaded(rt)
	}

	s.lastExecuted = executed

	return err
}
