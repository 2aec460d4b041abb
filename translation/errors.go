package translation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned synchronously for missing or blank
	// required inputs, before the engine is involved.
	ErrInvalidArgument = errors.New("translation: invalid argument")
	// ErrDisposed is returned by operations on a disposed recognizer.
	ErrDisposed = errors.New("translation: recognizer disposed")
)

// EngineError wraps a failure reported by the engine for an operation.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("translation: engine %s: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

func invalidArgument(name, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidArgument, name, reason)
}
