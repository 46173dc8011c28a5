package codec

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("codec: worker pool closed")

// Job is a unit of background codec work. The progress callback reports
// completion in [0, 1]; jobs may ignore it.
type Job func(ctx context.Context, progress func(float64)) error

// Task is the future for a submitted job.
type Task struct {
	done chan struct{}
	err  error
}

// Wait blocks until the job finishes or ctx is canceled, and returns the
// job's error. Cancellation abandons the wait, not the job: codec work
// runs to completion once started.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the job finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Pool runs encode/decode work on a fixed set of background goroutines so
// large compressions never run on the interactive path. The history
// store's bookkeeping stays on the caller's goroutine; only pixel
// crunching is offloaded.
type Pool struct {
	jobs chan poolJob

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

type poolJob struct {
	ctx      context.Context
	job      Job
	progress func(float64)
	task     *Task
}

// NewPool creates a pool with the given number of workers.
// Non-positive counts default to GOMAXPROCS.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		jobs: make(chan poolJob, workers*2),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for j := range p.jobs {
		progress := j.progress
		if progress == nil {
			progress = func(float64) {}
		}
		j.task.err = j.job(j.ctx, progress)
		close(j.task.done)
	}
}

// Submit queues a job and returns its task. The optional progress callback
// is invoked from the worker goroutine. Submit blocks while the queue is
// full; it returns a pre-failed task after Close.
func (p *Pool) Submit(ctx context.Context, job Job, progress func(float64)) *Task {
	task := &Task{done: make(chan struct{})}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		task.err = ErrPoolClosed
		close(task.done)
		return task
	}
	p.jobs <- poolJob{ctx: ctx, job: job, progress: progress, task: task}
	p.mu.Unlock()
	return task
}

// Close stops accepting jobs and waits for in-flight work to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
