package engine

import (
	"context"
	"sync"
)

// Lifecycle enforces the session rules shared by engines: one session at a
// time, continuous recognition started at most once and nothing after
// release. The zero value is ready to use.
type Lifecycle struct {
	mu       sync.Mutex
	busy     bool
	running  bool
	released bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// BeginOnce marks a single-shot recognition as in progress. Call the
// returned function when it ends.
func (l *Lifecycle) BeginOnce() (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return nil, ErrReleased
	}
	if l.busy || l.running {
		return nil, ErrBusy
	}
	l.busy = true
	return func() {
		l.mu.Lock()
		l.busy = false
		l.mu.Unlock()
	}, nil
}

// StartContinuous runs fn on its own goroutine. The context passed to fn is
// canceled by StopContinuous.
func (l *Lifecycle) StartContinuous(fn func(ctx context.Context)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return ErrReleased
	}
	if l.running {
		return ErrAlreadyStarted
	}
	if l.busy {
		return ErrBusy
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	l.running = true
	l.cancel = cancel
	l.done = done

	go func() {
		defer func() {
			l.mu.Lock()
			l.running = false
			l.cancel = nil
			l.mu.Unlock()
			cancel()
			close(done)
		}()
		fn(ctx)
	}()
	return nil
}

// StopContinuous cancels continuous recognition and waits for it to return.
// It is a no-op when not running.
func (l *Lifecycle) StopContinuous(ctx context.Context) error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return ErrReleased
	}
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release cancels continuous recognition and marks the engine released.
// It does not wait for the recognition goroutine, so it may be called from
// an event handler running on it.
func (l *Lifecycle) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return ErrReleased
	}
	l.released = true
	if l.cancel != nil {
		l.cancel()
	}
	return nil
}

// Done returns a channel closed once the current continuous recognition
// has returned. It is nil when none was started.
func (l *Lifecycle) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}
