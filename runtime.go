package krajc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Options configure a Runtime.
type Options struct {
	// Parallelism enables execution of schedules on a pool of worker goroutines.
	Parallelism bool

	// Workers is the size of the worker pool. Zero selects the number of
	// CPUs minus one, but at least one worker.
	Workers int

	// Logger receives the log output of the runtime. Defaults to slog.Default.
	Logger *slog.Logger
}

// Runtime owns the world, resources and schedules and drives their execution.
type Runtime struct {
	options Options
	logger  *slog.Logger

	world     *World
	resources *resourceRegistry
	locals    localStore

	filters     map[RunnableId][]Filter
	names       map[string]RunnableId
	owners      map[RunnableId]ScheduleId
	runnableSeq RunnableId

	schedules     map[ScheduleId]*Schedule
	scheduleOrder []ScheduleId

	pool      *workerPool
	executing atomic.Bool

	started   bool
	startTime time.Time
}

func NewRuntime(options Options) *Runtime {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rt := &Runtime{
		options:   options,
		logger:    logger,
		world:     NewWorld(),
		resources: newResourceRegistry(),
		filters:   map[RunnableId][]Filter{},
		names:     map[string]RunnableId{},
		owners:    map[RunnableId]ScheduleId{},
		schedules: map[ScheduleId]*Schedule{},
	}

	configureSchedules(rt)

	return rt
}

func (rt *Runtime) World() *World {
	return rt.world
}

func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

func (rt *Runtime) Parallelism() bool {
	return rt.options.Parallelism
}

// SetParallelism switches between parallel and single threaded execution.
// It must not be called while a schedule is executing.
func (rt *Runtime) SetParallelism(enabled bool) {
	rt.options.Parallelism = enabled
}

func (rt *Runtime) InsertResource(res any) {
	rt.resources.insert(res)
}

func (rt *Runtime) Schedule(scheduleId ScheduleId) (*Schedule, bool) {
	schedule, ok := rt.schedules[scheduleId]
	return schedule, ok
}

func (rt *Runtime) addSchedule(schedule *Schedule) *Schedule {
	rt.schedules[schedule.id] = schedule
	rt.scheduleOrder = append(rt.scheduleOrder, schedule.id)
	return schedule
}

func (rt *Runtime) scheduleOf(scheduleId ScheduleId) *Schedule {
	if schedule, ok := rt.schedules[scheduleId]; ok {
		return schedule
	}

	return rt.addSchedule(newSchedule(scheduleId, false))
}

// AddSystems registers functions or other Runnables into the schedule.
func (rt *Runtime) AddSystems(scheduleId ScheduleId, systems ...AnySystem) error {
	for _, system := range systems {
		runnable, err := asRunnable(system)
		if err != nil {
			return err
		}

		if err := rt.Register(scheduleId, runnable); err != nil {
			return err
		}
	}

	return nil
}

// Register adds the runnable to the end of the schedule. Names must be unique
// across all schedules of the runtime.
func (rt *Runtime) Register(scheduleId ScheduleId, runnable Runnable) error {
	name := runnable.Name()
	if _, exists := rt.names[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateRunnableName, name)
	}

	rt.runnableSeq += 1
	id := rt.runnableSeq

	if err := rt.scheduleOf(scheduleId).register(id, runnable); err != nil {
		return err
	}

	rt.names[name] = id
	rt.owners[id] = scheduleId

	rt.logger.Debug(
		"Runnable registered",
		slog.String("schedule", scheduleId.String()),
		slog.String("name", name),
		slog.Any("id", id),
	)

	return nil
}

// Build calculates the dependency graph of every schedule that was not built yet.
func (rt *Runtime) Build() error {
	for _, scheduleId := range rt.scheduleOrder {
		schedule := rt.schedules[scheduleId]
		if schedule.graph != nil {
			continue
		}

		if err := schedule.CalcDepGraph(rt); err != nil {
			return err
		}
	}

	return nil
}

// Startup builds all schedules and runs EngineLoad. It must be called
// exactly once, before the first frame.
func (rt *Runtime) Startup() error {
	if rt.started {
		return fmt.Errorf("%w: runtime already started", ErrExpectedInvariantViolation)
	}

	if err := rt.Build(); err != nil {
		return err
	}

	rt.started = true
	rt.startTime = time.Now()

	return rt.RunSchedule(EngineLoad)
}

// Frame updates FrameTime and runs the frame schedules in order:
// Update, PostUpdate, PhysicsSync and PostPhysicsSync.
func (rt *Runtime) Frame(delta time.Duration) error {
	if !rt.started {
		return fmt.Errorf("%w: frame before startup", ErrExpectedInvariantViolation)
	}

	frameTime := GetOrInit[FrameTime](rt)
	frameTime.Delta = delta
	frameTime.SinceStart = time.Since(rt.startTime)
	frameTime.Frame += 1

	for _, scheduleId := range frameSchedules {
		if err := rt.RunSchedule(scheduleId); err != nil {
			return err
		}
	}

	return nil
}

// RunSchedule executes the schedule with the given id. If no schedule with
// this id exists, no action is performed.
func (rt *Runtime) RunSchedule(scheduleId ScheduleId) error {
	schedule, ok := rt.schedules[scheduleId]
	if !ok {
		return nil
	}

	return schedule.Execute(rt)
}

// RunSystem sets up and runs a system once, outside any schedule.
func (rt *Runtime) RunSystem(system AnySystem) error {
	runnable, err := asRunnable(system)
	if err != nil {
		return err
	}

	rt.runnableSeq += 1
	id := rt.runnableSeq

	defer rt.locals.drop(id)

	if _, err := runnable.Setup(rt, id); err != nil {
		return err
	}

	if !runnable.Predicate(rt) {
		return nil
	}

	return rt.invoke(runnable)
}

// Run starts the runtime and executes frames until the context is cancelled.
// Frames are paced according to the TargetFps resource.
func (rt *Runtime) Run(ctx context.Context) error {
	if err := rt.Startup(); err != nil {
		return err
	}

	previousTime := time.Now()

	for ctx.Err() == nil {
		frameStart := time.Now()

		if err := rt.Frame(frameStart.Sub(previousTime)); err != nil {
			return err
		}

		previousTime = frameStart

		frameDuration := GetOrInit[TargetFps](rt).FrameDuration()
		if remaining := frameDuration - time.Since(frameStart); remaining > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(remaining):
			}
		}
	}

	return nil
}

// Close stops the worker pool and closes all resources implementing io.Closer.
func (rt *Runtime) Close() error {
	var errs []error

	if rt.pool != nil {
		errs = append(errs, rt.pool.close())
		rt.pool = nil
	}

	errs = append(errs, rt.resources.close())

	return errors.Join(errs...)
}

func (rt *Runtime) workerPool() *workerPool {
	if rt.pool == nil {
		rt.pool = newWorkerPool(rt.options.Workers)

		rt.logger.Debug("Worker pool started", slog.Int("workers", rt.pool.workers))
	}

	return rt.pool
}

// invoke runs the runnable, recording its timing and turning a panic into an error.
func (rt *Runtime) invoke(runnable Runnable) error {
	return invokeRecover(func() error {
		if stats, ok := ResourceOf[TimingStats](rt); ok {
			defer stats.MeasureSystem(runnable.Name()).Stop()
		}

		return runnable.Run(rt)
	})
}
