package krajc

import (
	"runtime"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

type job struct {
	generation uint64
	index      int

	// run must not panic, see invokeRecover
	run func() error
}

type jobResult struct {
	generation uint64
	index      int
	err        error
}

// workerPool is a fixed set of goroutines waiting for jobs. Idle workers
// block on the jobs channel. All workers report into the same results
// channel, every execution of a schedule takes a new generation to tell
// its results apart from those of earlier executions.
type workerPool struct {
	jobs       chan job
	results    chan jobResult
	group      errgroup.Group
	generation atomic.Uint64
	workers    int
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = defaultWorkerCount()
	}

	p := &workerPool{
		jobs:    make(chan job),
		results: make(chan jobResult, workers),
		workers: workers,
	}

	for range workers {
		p.group.Go(p.work)
	}

	return p
}

func defaultWorkerCount() int {
	return max(1, runtime.NumCPU()-1)
}

func (p *workerPool) work() error {
	for job := range p.jobs {
		p.results <- jobResult{
			generation: job.generation,
			index:      job.index,
			err:        job.run(),
		}
	}

	return nil
}

func (p *workerPool) nextGeneration() uint64 {
	return p.generation.Add(1)
}

// close stops all workers once the queued jobs are done.
func (p *workerPool) close() error {
	close(p.jobs)
	return p.group.Wait()
}

// invokeRecover calls fn and turns a panic into an error.
func invokeRecover(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = eris.Wrap(rErr, "panic")
				return
			}

			err = eris.Errorf("panic: %v", r)
		}
	}()

	return fn()
}
