// Package engine defines the contract between a translation recognizer and
// the speech engine doing the actual recognition, translation and synthesis.
// Different engines implement this interface to support various speech
// services like Google Speech, Deepgram, or the deterministic stub.
package engine

import (
	"context"
	"errors"

	"github.com/agnivade/stt_translation/event"
)

var (
	// ErrMissingConfig is returned by factories when no translation config is given.
	ErrMissingConfig = errors.New("engine: translation config is required")
	// ErrAlreadyStarted is returned by StartContinuous when continuous
	// recognition is already running.
	ErrAlreadyStarted = errors.New("engine: continuous recognition already started")
	// ErrBusy is returned when a single-shot recognition overlaps with another
	// recognition on the same engine.
	ErrBusy = errors.New("engine: recognition already in progress")
	// ErrReleased is returned by engines that are called after Release.
	ErrReleased = errors.New("engine: released")
)

// Factory creates engines.
type Factory interface {
	// NewEngine creates an engine for the given translation configuration.
	// The audio configuration is optional and passed through unexamined by
	// callers; engines that need audio fail when it is nil.
	NewEngine(ctx context.Context, cfg *TranslationConfig, audio *AudioConfig) (Engine, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, cfg *TranslationConfig, audio *AudioConfig) (Engine, error)

// NewEngine calls f.
func (f FactoryFunc) NewEngine(ctx context.Context, cfg *TranslationConfig, audio *AudioConfig) (Engine, error) {
	return f(ctx, cfg, audio)
}

// EventSource is the dispatch point for one kind of engine event. Engines
// invoke listeners from their own goroutines.
type EventSource interface {
	Subscribe(fn event.Handler[*NativeEvent]) event.Handle
	Unsubscribe(h event.Handle) error
}

// Engine is an exclusively owned handle to a recognition engine.
//
// RecognizeOnce, StartContinuous and StopContinuous block until the engine
// call returns and must not be called concurrently on the same engine.
// After Release, no other method may be called.
type Engine interface {
	// RecognizeOnce recognizes and translates a single utterance.
	RecognizeOnce(ctx context.Context) (*RecognitionResult, error)

	// StartContinuous starts streaming recognition. Results are delivered
	// through the event sources. Starting twice without a stop returns
	// ErrAlreadyStarted.
	StartContinuous(ctx context.Context) error

	// StopContinuous stops streaming recognition. Stopping a stopped engine
	// is a no-op.
	StopContinuous(ctx context.Context) error

	AuthorizationToken() (string, error)
	SetAuthorizationToken(token string) error

	// EventSource returns the dispatch point for kind.
	EventSource(kind EventKind) EventSource

	// Properties returns the engine's property bag. Ownership passes to the
	// caller, which closes it after Release.
	Properties() PropertyBag

	// Release frees the engine's resources.
	Release() error
}
