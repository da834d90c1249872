// Package workerpool runs independent tasks on a fixed set of goroutines.
// It is used to parse batches of geometry literals in parallel; each task
// owns its input and output slot, so tasks never share mutable state.
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Common errors
var (
	ErrPoolClosed  = errors.New("workerpool: pool is closed")
	ErrInvalidSize = errors.New("workerpool: invalid pool size")
	ErrTaskPanic   = errors.New("workerpool: task panicked")
)

// Task represents a unit of work to be executed by the pool
type Task func(ctx context.Context) error

type job struct {
	ctx    context.Context
	task   Task
	result chan error
}

// Pool is a fixed-size worker pool. Workers start in New and stop in Close.
type Pool struct {
	size     int
	jobs     chan job
	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	executed atomic.Int64
	failed   atomic.Int64
}

// New starts size workers with a queue of queueSize pending tasks.
func New(size, queueSize int) (*Pool, error) {
	if size <= 0 || queueSize < 0 {
		return nil, ErrInvalidSize
	}
	p := &Pool{size: size, jobs: make(chan job, queueSize)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p, nil
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		err := p.execute(j)
		p.executed.Add(1)
		if err != nil {
			p.failed.Add(1)
		}
		j.result <- err
	}
}

func (p *Pool) execute(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	if err := j.ctx.Err(); err != nil {
		return err
	}
	return j.task(j.ctx)
}

// Submit queues task and returns a channel that receives its error.
// It blocks while the queue is full.
func (p *Pool) Submit(ctx context.Context, task Task) (<-chan error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	result := make(chan error, 1)
	select {
	case p.jobs <- job{ctx: ctx, task: task, result: result}:
		return result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SubmitWait submits a task and waits for it to finish
func (p *Pool) SubmitWait(ctx context.Context, task Task) error {
	result, err := p.Submit(ctx, task)
	if err != nil {
		return err
	}
	return <-result
}

// Map runs fn(ctx, i) for every i in [0, n) and waits for all of them.
// errs[i] is the error of call i; tasks that could not be submitted get the
// submission error.
func (p *Pool) Map(ctx context.Context, n int, fn func(ctx context.Context, i int) error) []error {
	errs := make([]error, n)
	results := make([]<-chan error, n)
	for i := 0; i < n; i++ {
		ch, err := p.Submit(ctx, func(ctx context.Context) error { return fn(ctx, i) })
		if err != nil {
			errs[i] = err
			continue
		}
		results[i] = ch
	}
	for i, ch := range results {
		if ch != nil {
			errs[i] = <-ch
		}
	}
	return errs
}

// Close stops accepting tasks, lets queued tasks finish, and waits for the
// workers to exit. Closing twice is a no-op.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// Stats holds pool statistics
type Stats struct {
	Workers       int
	TasksExecuted int64
	TasksFailed   int64
	QueueLen      int
}

// Stats returns current pool statistics
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:       p.size,
		TasksExecuted: p.executed.Load(),
		TasksFailed:   p.failed.Load(),
		QueueLen:      len(p.jobs),
	}
}
