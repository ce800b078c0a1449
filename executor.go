package krajc

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/krajc/internal/set"
	"github.com/rotisserie/eris"
)

// evaluatePredicates decides which runnables take part in this execution.
// Predicates declare no filters, so all of them are evaluated before the
// first runnable starts.
func (s *Schedule) evaluatePredicates(rt *Runtime) []bool {
	active := make([]bool, len(s.actions))
	for idx, action := range s.actions {
		active[idx] = action.runnable.Predicate(rt)
	}

	return active
}

// executeSingleThreaded runs all runnables in registration order on the
// calling goroutine and stops at the first failure.
func (s *Schedule) executeSingleThreaded(rt *Runtime) (int, error) {
	active := s.evaluatePredicates(rt)

	var executed int

	for idx, action := range s.actions {
		if active[idx] {
			if err := rt.invoke(action.runnable); err != nil {
				return executed, s.systemError(rt, action.runnable, err)
			}
		}

		executed += 1
	}

	return executed, nil
}

// executeParallel dispatches runnables to the worker pool as soon as every
// conflicting runnable registered before them completed. The calling
// goroutine acts as coordinator and blocks until all dispatched runnables
// are done. After the first failure nothing new is dispatched.
func (s *Schedule) executeParallel(rt *Runtime, pool *workerPool) (int, error) {
	count := len(s.actions)
	generation := pool.nextGeneration()

	active := s.evaluatePredicates(rt)

	var executed int

	var pending set.Set[int]
	for idx := range count {
		if active[idx] {
			pending.Insert(idx)
		} else {
			// skipped runnables are complete before the execution starts
			executed += 1
		}
	}

	dispatched := make([]bool, count)

	// indices of ready runnables waiting for a free worker
	var queue []int

	var inFlight int
	var failure error

	enqueueReady := func() {
		for idx := range count {
			if !active[idx] || dispatched[idx] || !s.graph.ready(idx, &pending) {
				continue
			}

			dispatched[idx] = true
			queue = append(queue, idx)
		}
	}

	enqueueReady()

	for len(queue) > 0 || inFlight > 0 {
		// a nil channel is never selected, so no job is offered while the queue is empty
		var jobs chan<- job
		var next job

		if len(queue) > 0 {
			runnable := s.actions[queue[0]].runnable

			jobs = pool.jobs
			next = job{
				generation: generation,
				index:      queue[0],
				run:        func() error { return rt.invoke(runnable) },
			}
		}

		select {
		case jobs <- next:
			queue = queue[1:]
			inFlight += 1

		case result := <-pool.results:
			if result.generation != generation {
				rt.logger.Warn(
					"Dropped result of an earlier execution",
					slog.String("schedule", s.id.String()),
					slog.Uint64("generation", result.generation),
				)

				continue
			}

			inFlight -= 1

			pending.Remove(result.index)
			executed += 1

			if result.err != nil {
				if failure == nil {
					failure = s.systemError(rt, s.actions[result.index].runnable, result.err)
				}

				// wait for the runnables in flight, but start nothing new
				queue = nil
				continue
			}

			if failure == nil {
				enqueueReady()
			}
		}
	}

	if failure == nil && executed != count {
		failure = fmt.Errorf("%w: schedule %s stalled after %d of %d runnables",
			ErrExpectedInvariantViolation, s.id, executed, count)
	}

	return executed, failure
}

func (s *Schedule) systemError(rt *Runtime, runnable Runnable, err error) error {
	rt.logger.Error(
		"System failed",
		slog.String("schedule", s.id.String()),
		slog.String("system", runnable.Name()),
		slog.String("error", eris.ToString(err, true)),
	)

	return &SystemError{
		Schedule: s.id,
		System:   runnable.Name(),
		Err:      err,
	}
}
