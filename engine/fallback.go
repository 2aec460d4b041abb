package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// NamedFactory pairs a factory with the name used in logs.
type NamedFactory struct {
	Name    string
	Factory Factory
}

// Fallback is a Factory that tries several factories in order and returns
// the first engine that could be created.
type Fallback struct {
	factories []NamedFactory
	log       *logrus.Entry
}

// NewFallback creates a fallback factory over the given factories.
func NewFallback(log *logrus.Entry, factories ...NamedFactory) *Fallback {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Fallback{
		factories: factories,
		log:       log.WithField("component", "engine.fallback"),
	}
}

// NewEngine implements Factory.
func (f *Fallback) NewEngine(ctx context.Context, cfg *TranslationConfig, audio *AudioConfig) (Engine, error) {
	if cfg == nil {
		return nil, ErrMissingConfig
	}
	if len(f.factories) == 0 {
		return nil, errors.New("engine: no factories available")
	}

	var errs []error
	for _, nf := range f.factories {
		eng, err := nf.Factory.NewEngine(ctx, cfg, audio)
		if err != nil {
			f.log.WithError(err).WithField("engine", nf.Name).Warn("failed to create engine, trying next")
			// Continue with other factories
			errs = append(errs, fmt.Errorf("%s: %w", nf.Name, err))
			continue
		}
		f.log.WithField("engine", nf.Name).Debug("engine created")
		return eng, nil
	}
	return nil, errors.Join(errs...)
}
