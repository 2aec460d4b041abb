// Package taskrunner executes submitted operations on a worker pool and
// hands back a Future per submission.
package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
)

// ErrStopped is returned by futures submitted after the runner was stopped.
var ErrStopped = errors.New("taskrunner: runner stopped")

// Runner queues tasks and runs them on a bounded set of workers. A runner
// with one worker runs tasks one at a time in submission order.
type Runner struct {
	mu      sync.Mutex
	pool    *workerpool.WorkerPool
	stopped bool

	// pending fails the futures of tasks that have not finished yet.
	nextID  uint64
	pending map[uint64]func(error)
}

// New creates a runner with up to maxWorkers concurrent workers.
func New(maxWorkers int) *Runner {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Runner{
		pool:    workerpool.New(maxWorkers),
		pending: make(map[uint64]func(error)),
	}
}

// Stop runs every queued task, waits for running ones and releases the
// workers. Submissions after Stop fail with ErrStopped.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	r.pool.StopWait()
}

// Abort stops accepting tasks and resolves every unfinished future with
// err without waiting. Queued tasks still run on the workers in the
// background, but their results are discarded. Abort is safe to call from
// inside a running task.
func (r *Runner) Abort(err error) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, fail := range pending {
		fail(err)
	}
	go r.pool.StopWait()
}

// Pending returns the number of tasks waiting for a worker.
func (r *Runner) Pending() int {
	return r.pool.WaitingQueueSize()
}

func (r *Runner) submit(task func(), fail func(error)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	id := r.nextID
	r.nextID++
	r.pending[id] = fail
	r.pool.Submit(func() {
		task()
		r.finish(id)
	})
	return true
}

func (r *Runner) finish(id uint64) {
	r.mu.Lock()
	delete(r.pending, id)
	r.mu.Unlock()
}

// Submit queues fn on r and returns a future for its result. A panic in fn
// completes the future with an error.
func Submit[T any](r *Runner, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	fail := func(err error) {
		var zero T
		f.complete(zero, err)
	}
	ok := r.submit(func() {
		f.complete(run(fn))
	}, fail)
	if !ok {
		fail(ErrStopped)
	}
	return f
}

func run[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("taskrunner: task panicked: %v", rec)
		}
	}()
	return fn()
}

// Future is the pending result of a submitted task.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a future already resolved with v.
func Completed[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.complete(v, nil)
	return f
}

// Failed returns a future already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.complete(zero, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.value = v
		f.err = err
		close(f.done)
	})
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get waits for the result or for ctx to be done, whichever comes first.
// Abandoning a wait does not cancel the task.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the result is available.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}
