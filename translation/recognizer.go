// Package translation provides TranslationRecognizer, the session object
// that drives a speech translation engine and republishes its events.
package translation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agnivade/stt_translation/engine"
	"github.com/agnivade/stt_translation/event"
	"github.com/agnivade/stt_translation/taskrunner"
)

// unregisterOrder is the order handlers are detached from the engine on
// Dispose.
var unregisterOrder = []engine.EventKind{
	engine.Recognizing,
	engine.Recognized,
	engine.Canceled,
	engine.SessionStarted,
	engine.SessionStopped,
	engine.SpeechStartDetected,
	engine.SpeechEndDetected,
	engine.Synthesizing,
}

// Option configures a TranslationRecognizer.
type Option func(*options)

type options struct {
	log    *logrus.Entry
	report func(error)
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithErrorReporter sets the function receiving subscriber panics. By
// default they are logged.
func WithErrorReporter(fn func(error)) Option {
	return func(o *options) {
		o.report = fn
	}
}

// TranslationRecognizer recognizes speech from an audio input and
// translates it into the configured target languages. Results arrive
// through the returned futures and the event channels.
//
// All methods are safe for concurrent use. Operations run one at a time in
// submission order.
type TranslationRecognizer struct {
	id              string
	eng             engine.Engine
	props           engine.PropertyBag
	targetLanguages []string
	log             *logrus.Entry

	recognizing         *event.Channel[TranslationRecognitionEventArgs]
	recognized          *event.Channel[TranslationRecognitionEventArgs]
	canceled            *event.Channel[TranslationRecognitionCanceledEventArgs]
	synthesizing        *event.Channel[TranslationSynthesisEventArgs]
	sessionStarted      *event.Channel[SessionEventArgs]
	sessionStopped      *event.Channel[SessionEventArgs]
	speechStartDetected *event.Channel[RecognitionEventArgs]
	speechEndDetected   *event.Channel[RecognitionEventArgs]

	registrations map[engine.EventKind]*registration

	runner *taskrunner.Runner
	ctx    context.Context
	cancel context.CancelFunc

	// mu orders submissions against Dispose.
	mu       sync.Mutex
	disposed atomic.Bool
}

// NewTranslationRecognizer creates a recognizer on an engine built by
// factory from cfg and audio. A nil audio config lets the engine pick its
// default input.
func NewTranslationRecognizer(ctx context.Context, factory engine.Factory, cfg *engine.TranslationConfig, audio *engine.AudioConfig, opts ...Option) (*TranslationRecognizer, error) {
	if factory == nil {
		return nil, invalidArgument("factory", "is nil")
	}
	if cfg == nil {
		return nil, invalidArgument("translation config", "is nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logrus.NewEntry(logrus.StandardLogger())
	}

	id := uuid.NewString()
	log := o.log.WithFields(logrus.Fields{
		"component":     "translation.recognizer",
		"recognizer_id": id,
	})
	if o.report == nil {
		o.report = func(err error) {
			log.WithError(err).Error("event subscriber failed")
		}
	}

	eng, err := factory.NewEngine(ctx, cfg, audio)
	if err != nil {
		return nil, &EngineError{Op: "create", Err: err}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r := &TranslationRecognizer{
		id:              id,
		eng:             eng,
		props:           eng.Properties(),
		targetLanguages: slices.Clone(cfg.TargetLanguages),
		log:             log,
		runner:          taskrunner.New(1),
		ctx:             runCtx,
		cancel:          cancel,
		registrations:   make(map[engine.EventKind]*registration, len(unregisterOrder)),
	}

	report := event.WithErrorReporter(o.report)
	r.recognizing = event.New[TranslationRecognitionEventArgs]("recognizing", report)
	r.recognized = event.New[TranslationRecognitionEventArgs]("recognized", report)
	r.canceled = event.New[TranslationRecognitionCanceledEventArgs]("canceled", report)
	r.synthesizing = event.New[TranslationSynthesisEventArgs]("synthesizing", report)
	r.sessionStarted = event.New[SessionEventArgs]("session_started", report)
	r.sessionStopped = event.New[SessionEventArgs]("session_stopped", report)
	r.speechStartDetected = event.New[RecognitionEventArgs]("speech_start_detected", report)
	r.speechEndDetected = event.New[RecognitionEventArgs]("speech_end_detected", report)

	if err := r.initialize(); err != nil {
		r.disposed.Store(true)
		r.runner.Stop()
		cancel()
		return nil, errors.Join(err, r.detach(), eng.Release())
	}

	log.WithFields(logrus.Fields{
		"from": r.SpeechRecognitionLanguage(),
		"to":   strings.Join(r.targetLanguages, ","),
	}).Debug("recognizer created")
	return r, nil
}

func (r *TranslationRecognizer) initialize() error {
	handlers := []struct {
		kind engine.EventKind
		h    nativeHandler
	}{
		{engine.Recognizing, &resultHandler{}},
		{engine.Recognized, &resultHandler{isRecognizedHandler: true}},
		{engine.Synthesizing, &synthesisHandler{}},
		{engine.Canceled, &canceledHandler{}},
		{engine.SessionStarted, &sessionHandler{isSessionStart: true}},
		{engine.SessionStopped, &sessionHandler{}},
		{engine.SpeechStartDetected, &speechDetectedHandler{isSpeechStart: true}},
		{engine.SpeechEndDetected, &speechDetectedHandler{}},
	}

	for _, entry := range handlers {
		source := r.eng.EventSource(entry.kind)
		if source == nil {
			return fmt.Errorf("translation: engine has no %s event source", entry.kind)
		}
		entry.h.bind(r)
		r.registrations[entry.kind] = register(entry.kind, source, entry.h)
	}
	return nil
}

// detach unregisters every handler in unregisterOrder, then clears their
// back references.
func (r *TranslationRecognizer) detach() error {
	var errs []error
	for _, kind := range unregisterOrder {
		reg, ok := r.registrations[kind]
		if !ok {
			continue
		}
		if err := reg.source.Unsubscribe(reg.handle); err != nil {
			errs = append(errs, fmt.Errorf("unregister %s handler: %w", kind, err))
		}
	}
	for _, kind := range unregisterOrder {
		if reg, ok := r.registrations[kind]; ok {
			reg.handler.release()
		}
	}
	return errors.Join(errs...)
}

// RecognizeOnceAsync recognizes a single utterance. The future resolves
// with the final result once the utterance ends or no speech was found.
func (r *TranslationRecognizer) RecognizeOnceAsync() *taskrunner.Future[TranslationRecognitionResult] {
	return submit(r, "recognize once", func(ctx context.Context) (TranslationRecognitionResult, error) {
		raw, err := r.eng.RecognizeOnce(ctx)
		if err != nil {
			return TranslationRecognitionResult{}, err
		}
		return newTranslationRecognitionResult(raw), nil
	})
}

// StartContinuousRecognitionAsync starts recognizing until stopped. Results
// are delivered through the Recognizing and Recognized channels.
func (r *TranslationRecognizer) StartContinuousRecognitionAsync() *taskrunner.Future[struct{}] {
	return submit(r, "start continuous recognition", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.eng.StartContinuous(ctx)
	})
}

// StopContinuousRecognitionAsync stops continuous recognition. Stopping
// when not started succeeds.
func (r *TranslationRecognizer) StopContinuousRecognitionAsync() *taskrunner.Future[struct{}] {
	return submit(r, "stop continuous recognition", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.eng.StopContinuous(ctx)
	})
}

func submit[T any](r *TranslationRecognizer, op string, fn func(ctx context.Context) (T, error)) *taskrunner.Future[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed.Load() {
		return taskrunner.Failed[T](ErrDisposed)
	}

	return taskrunner.Submit(r.runner, func() (T, error) {
		var zero T
		if r.disposed.Load() {
			return zero, ErrDisposed
		}
		r.log.WithField("op", op).Debug("running")
		v, err := fn(r.ctx)
		if err != nil {
			if r.ctx.Err() != nil {
				return zero, fmt.Errorf("%w: %s interrupted: %w", ErrDisposed, op, err)
			}
			return zero, &EngineError{Op: op, Err: err}
		}
		return v, nil
	})
}

// AuthorizationToken returns the token currently used by the engine.
func (r *TranslationRecognizer) AuthorizationToken() (string, error) {
	if r.disposed.Load() {
		return "", ErrDisposed
	}
	token, err := r.eng.AuthorizationToken()
	if err != nil {
		return "", &EngineError{Op: "get authorization token", Err: err}
	}
	return token, nil
}

// SetAuthorizationToken replaces the token used by the engine. Callers must
// refresh it before it expires.
func (r *TranslationRecognizer) SetAuthorizationToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return invalidArgument("authorization token", "is blank")
	}
	if r.disposed.Load() {
		return ErrDisposed
	}
	if err := r.eng.SetAuthorizationToken(token); err != nil {
		return &EngineError{Op: "set authorization token", Err: err}
	}
	return nil
}

// TargetLanguages returns a copy of the target languages.
func (r *TranslationRecognizer) TargetLanguages() []string {
	return slices.Clone(r.targetLanguages)
}

// SpeechRecognitionLanguage returns the language being recognized.
func (r *TranslationRecognizer) SpeechRecognitionLanguage() string {
	return r.props.GetProperty(engine.SpeechServiceConnectionRecoLanguage)
}

// VoiceName returns the synthesis voice, or "" when synthesis is off.
func (r *TranslationRecognizer) VoiceName() string {
	return r.props.GetProperty(engine.SpeechServiceConnectionTranslationVoice)
}

// Properties returns the engine's property bag.
func (r *TranslationRecognizer) Properties() engine.PropertyBag {
	return r.props
}

// Recognizing delivers intermediate results while speech is recognized.
func (r *TranslationRecognizer) Recognizing() *event.Channel[TranslationRecognitionEventArgs] {
	return r.recognizing
}

// Recognized delivers final results with their translations.
func (r *TranslationRecognizer) Recognized() *event.Channel[TranslationRecognitionEventArgs] {
	return r.recognized
}

// Canceled reports that recognition ended because of an error or the end
// of the audio stream.
func (r *TranslationRecognizer) Canceled() *event.Channel[TranslationRecognitionCanceledEventArgs] {
	return r.canceled
}

// Synthesizing delivers audio of the translations when a voice is set.
func (r *TranslationRecognizer) Synthesizing() *event.Channel[TranslationSynthesisEventArgs] {
	return r.synthesizing
}

// SessionStarted fires when the engine opens a recognition session.
func (r *TranslationRecognizer) SessionStarted() *event.Channel[SessionEventArgs] {
	return r.sessionStarted
}

// SessionStopped fires when a recognition session ends.
func (r *TranslationRecognizer) SessionStopped() *event.Channel[SessionEventArgs] {
	return r.sessionStopped
}

// SpeechStartDetected fires when speech begins in the audio.
func (r *TranslationRecognizer) SpeechStartDetected() *event.Channel[RecognitionEventArgs] {
	return r.speechStartDetected
}

// SpeechEndDetected fires when speech ends in the audio.
func (r *TranslationRecognizer) SpeechEndDetected() *event.Channel[RecognitionEventArgs] {
	return r.speechEndDetected
}

// Disposed reports whether Dispose was called.
func (r *TranslationRecognizer) Disposed() bool {
	return r.disposed.Load()
}

// Dispose detaches from the engine, fails pending operations with
// ErrDisposed and releases the engine. No events are delivered once Dispose
// has started. Every step runs even if an earlier one fails; the failures
// are joined. Calling Dispose again is a no-op.
//
// Dispose never waits for the goroutine delivering events, so it may be
// called from an event handler.
func (r *TranslationRecognizer) Dispose() error {
	r.mu.Lock()
	first := r.disposed.CompareAndSwap(false, true)
	r.mu.Unlock()
	if !first {
		return nil
	}

	r.cancel()

	var errs []error
	if err := r.detach(); err != nil {
		errs = append(errs, err)
	}

	r.runner.Abort(ErrDisposed)

	if err := r.eng.Release(); err != nil {
		errs = append(errs, &EngineError{Op: "release", Err: err})
	}
	if err := r.props.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close properties: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		r.log.WithError(err).Warn("recognizer disposed with errors")
	} else {
		r.log.Debug("recognizer disposed")
	}
	return err
}

// Close is Dispose, for use as an io.Closer.
func (r *TranslationRecognizer) Close() error {
	return r.Dispose()
}
