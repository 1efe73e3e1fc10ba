// Package worker runs independent jobs on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
)

type Job[T any] func(ctx context.Context) T

type Result[T any] struct {
	Index  int
	Output T
}

type Pool[T any] struct {
	ctx     context.Context
	jobs    chan indexedJob[T]
	results chan Result[T]
	wg      sync.WaitGroup
}

type indexedJob[T any] struct {
	index int
	fn    Job[T]
}

// NewPool starts workerCount goroutines (at least one). Jobs receive ctx.
func NewPool[T any](ctx context.Context, workerCount, bufferSize int) *Pool[T] {
	if workerCount < 1 {
		workerCount = 1
	}
	p := &Pool[T]{
		ctx:     ctx,
		jobs:    make(chan indexedJob[T], bufferSize),
		results: make(chan Result[T], bufferSize),
	}

	p.wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool[T]) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.results <- Result[T]{Index: job.index, Output: job.fn(p.ctx)}
	}
}

func (p *Pool[T]) Submit(index int, fn Job[T]) {
	p.jobs <- indexedJob[T]{index: index, fn: fn}
}

// Close stops accepting jobs. Results is closed once every worker is done.
func (p *Pool[T]) Close() {
	close(p.jobs)
	go func() {
		p.wg.Wait()
		close(p.results)
	}()
}

func (p *Pool[T]) Results() <-chan Result[T] {
	return p.results
}

// Run executes jobs on at most workers goroutines and returns the outputs
// in job order. With one worker the jobs run strictly one after another.
func Run[T any](ctx context.Context, workers int, jobs []Job[T]) []T {
	out := make([]T, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	p := NewPool[T](ctx, workers, len(jobs))
	for i, fn := range jobs {
		p.Submit(i, fn)
	}
	p.Close()

	for r := range p.Results() {
		out[r.Index] = r.Output
	}
	return out
}
