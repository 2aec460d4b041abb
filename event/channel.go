// Package event provides a typed, multi-subscriber notification channel.
package event

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownHandle is returned when unsubscribing a handle that is not
// registered with the channel.
var ErrUnknownHandle = errors.New("event: unknown subscription handle")

// Handler receives a payload fired on a channel. The sender is the object
// that announced the event.
type Handler[T any] func(sender any, payload T)

// Handle identifies a subscription. The zero Handle is never issued.
type Handle uint64

// HandlerPanicError is reported when a subscriber panics during delivery.
type HandlerPanicError struct {
	Channel string
	Handle  Handle
	Value   any
}

func (e *HandlerPanicError) Error() string {
	return fmt.Sprintf("event: subscriber %d of %q panicked: %v", e.Handle, e.Channel, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *HandlerPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

type subscriber[T any] struct {
	handle Handle
	fn     Handler[T]
}

// Channel delivers payloads to its subscribers in registration order.
// Fire, Subscribe and Unsubscribe are safe for concurrent use. Fire delivers
// to a snapshot of the subscribers taken when it is called, so a subscriber
// added or removed while a fire is in flight does not affect that fire.
type Channel[T any] struct {
	name string

	mu     sync.Mutex
	subs   []subscriber[T]
	nextID Handle

	report func(error)
}

// Option configures a Channel.
type Option func(*options)

type options struct {
	report func(error)
}

// WithErrorReporter sets the function that receives subscriber failures.
// Without it, failures are dropped.
func WithErrorReporter(fn func(error)) Option {
	return func(o *options) {
		o.report = fn
	}
}

// New creates an empty channel tagged with name.
func New[T any](name string, opts ...Option) *Channel[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Channel[T]{
		name:   name,
		report: o.report,
	}
}

// Name returns the tag the channel was created with.
func (c *Channel[T]) Name() string {
	return c.name
}

// Subscribe appends fn to the subscriber list and returns the handle needed
// to remove it.
func (c *Channel[T]) Subscribe(fn Handler[T]) Handle {
	if fn == nil {
		panic("event: nil handler")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	h := c.nextID
	c.subs = append(c.subs, subscriber[T]{handle: h, fn: fn})
	return h
}

// Unsubscribe removes the subscriber registered under h.
func (c *Channel[T]) Unsubscribe(h Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range c.subs {
		if s.handle != h {
			continue
		}
		// Copy instead of shifting in place: in-flight fires hold the old slice.
		subs := make([]subscriber[T], 0, len(c.subs)-1)
		subs = append(subs, c.subs[:i]...)
		subs = append(subs, c.subs[i+1:]...)
		c.subs = subs
		return nil
	}
	return fmt.Errorf("%w: %d on %q", ErrUnknownHandle, h, c.name)
}

// Len returns the number of current subscribers.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Fire delivers payload to every subscriber on the calling goroutine.
// A panicking subscriber does not stop delivery to the ones after it.
func (c *Channel[T]) Fire(sender any, payload T) {
	c.mu.Lock()
	subs := c.subs
	c.mu.Unlock()

	for _, s := range subs {
		c.deliver(s, sender, payload)
	}
}

func (c *Channel[T]) deliver(s subscriber[T], sender any, payload T) {
	defer func() {
		if r := recover(); r != nil && c.report != nil {
			c.report(&HandlerPanicError{Channel: c.name, Handle: s.handle, Value: r})
		}
	}()
	s.fn(sender, payload)
}
