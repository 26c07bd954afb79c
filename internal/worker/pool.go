package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work producing R
type Job[R any] interface {
	Execute(ctx context.Context) R
}

// Pool runs jobs on a fixed number of goroutines
type Pool[R any] struct {
	workers int
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool[R any](workers int) *Pool[R] {
	if workers <= 0 {
		workers = 1
	}
	return &Pool[R]{workers: workers}
}

// Workers returns the pool size
func (p *Pool[R]) Workers() int {
	return p.workers
}

// Run executes every job and returns the results in job order. Jobs are
// expected to observe ctx themselves; Run never drops a job.
func (p *Pool[R]) Run(ctx context.Context, jobs []Job[R]) []R {
	results := make([]R, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := min(p.workers, len(jobs))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				results[i] = jobs[i].Execute(ctx)
			}
		}()
	}

	for i := range jobs {
		indexes <- i
	}
	close(indexes)

	wg.Wait()
	return results
}
