// Package stub implements a deterministic engine that produces placeholder
// transcripts and translations without calling any service.
package stub

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agnivade/stt_translation/engine"
)

const defaultSampleRate = 16000

// jsonResult is the response reported under SpeechServiceResponse_JsonResult.
// Offset and Duration are in 100ns ticks.
type jsonResult struct {
	RecognitionStatus string            `json:"RecognitionStatus"`
	DisplayText       string            `json:"DisplayText"`
	Offset            int64             `json:"Offset"`
	Duration          int64             `json:"Duration"`
	Translations      map[string]string `json:"Translations,omitempty"`
}

type jsonError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Option configures the stub engine.
type Option func(*Engine)

// WithUtterances sets the utterances produced when no audio stream is
// configured.
func WithUtterances(utterances ...string) Option {
	return func(e *Engine) {
		e.utterances = utterances
	}
}

// WithLatency delays every recognized utterance by d.
func WithLatency(d time.Duration) Option {
	return func(e *Engine) {
		e.latency = d
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewFactory returns a factory creating stub engines with opts.
func NewFactory(opts ...Option) engine.Factory {
	return engine.FactoryFunc(func(ctx context.Context, cfg *engine.TranslationConfig, audio *engine.AudioConfig) (engine.Engine, error) {
		return New(cfg, audio, opts...)
	})
}

// Engine produces deterministic results. Each chunk read from the audio
// stream becomes one utterance; without audio the configured utterances are
// used. Translations are the utterance prefixed with the target language.
type Engine struct {
	*engine.Sources

	cfg        engine.TranslationConfig
	audio      *engine.AudioConfig
	props      *engine.PropertyCollection
	log        *logrus.Entry
	utterances []string
	latency    time.Duration

	pump *engine.Pump

	lifecycle engine.Lifecycle
	next      int
	offset    time.Duration
}

// New creates a stub engine.
func New(cfg *engine.TranslationConfig, audio *engine.AudioConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrMissingConfig
	}

	e := &Engine{
		cfg:        *cfg,
		audio:      audio,
		props:      cfg.Properties(),
		utterances: []string{"hello world"},
		pump:       engine.NewPump(audio),
	}
	e.cfg.TargetLanguages = append([]string(nil), cfg.TargetLanguages...)
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logrus.NewEntry(logrus.StandardLogger())
	}
	e.log = e.log.WithField("component", "engine.stub")
	e.Sources = engine.NewSources(func(err error) {
		e.log.WithError(err).Warn("listener failed")
	})
	return e, nil
}

// RecognizeOnce implements engine.Engine.
func (e *Engine) RecognizeOnce(ctx context.Context) (*engine.RecognitionResult, error) {
	end, err := e.lifecycle.BeginOnce()
	if err != nil {
		return nil, err
	}
	defer end()

	sessionID := uuid.NewString()
	e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStarted, SessionID: sessionID})
	defer e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStopped, SessionID: sessionID})

	text, size, err := e.nextUtterance(ctx)
	if errors.Is(err, io.EOF) {
		return &engine.RecognitionResult{
			ResultID: uuid.NewString(),
			Reason:   engine.NoMatch,
			Offset:   e.offset,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := e.wait(ctx); err != nil {
		return nil, err
	}
	return e.recognize(sessionID, text, size), nil
}

// StartContinuous implements engine.Engine.
func (e *Engine) StartContinuous(ctx context.Context) error {
	sessionID := uuid.NewString()
	return e.lifecycle.StartContinuous(func(ctx context.Context) {
		e.loop(ctx, sessionID)
	})
}

// StopContinuous implements engine.Engine.
func (e *Engine) StopContinuous(ctx context.Context) error {
	return e.lifecycle.StopContinuous(ctx)
}

func (e *Engine) loop(ctx context.Context, sessionID string) {
	e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStarted, SessionID: sessionID})
	defer e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStopped, SessionID: sessionID})

	for {
		text, size, err := e.nextUtterance(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			details := &engine.CancellationDetails{Reason: engine.CancelEndOfStream}
			var errJSON string
			if !errors.Is(err, io.EOF) {
				details = &engine.CancellationDetails{
					Reason:       engine.CancelError,
					ErrorCode:    engine.RuntimeError,
					ErrorDetails: err.Error(),
				}
				raw, _ := json.Marshal(jsonError{Code: details.ErrorCode.String(), Message: details.ErrorDetails})
				errJSON = string(raw)
			}
			e.Emit(e, &engine.NativeEvent{
				Kind:      engine.Canceled,
				SessionID: sessionID,
				Offset:    e.offset,
				Result: &engine.RecognitionResult{
					ResultID:     uuid.NewString(),
					Reason:       engine.CanceledReason,
					ErrorDetails: details.ErrorDetails,
					ErrorJSON:    errJSON,
					Properties:   engine.ResponseProperties("", errJSON),
				},
				Cancellation: details,
			})
			return
		}

		if err := e.wait(ctx); err != nil {
			return
		}

		e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechStartDetected, SessionID: sessionID, Offset: e.offset})
		if e.cfg.InterimResults {
			words := strings.Fields(text)
			for i := 1; i < len(words); i++ {
				partial := strings.Join(words[:i], " ")
				e.Emit(e, &engine.NativeEvent{
					Kind:      engine.Recognizing,
					SessionID: sessionID,
					Offset:    e.offset,
					Result:    e.result(partial, engine.TranslatingSpeech, 0),
				})
			}
		}
		res := e.recognize(sessionID, text, size)
		e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechEndDetected, SessionID: sessionID, Offset: e.offset})
		e.Emit(e, &engine.NativeEvent{Kind: engine.Recognized, SessionID: sessionID, Offset: res.Offset, Result: res})

		if ctx.Err() != nil {
			return
		}
	}
}

// recognize builds the final result for text and raises synthesis events
// when a voice is configured.
func (e *Engine) recognize(sessionID, text string, size int) *engine.RecognitionResult {
	duration := e.duration(size)
	res := e.result(text, engine.TranslatedSpeech, duration)
	e.offset += duration

	if e.cfg.VoiceName != "" {
		for _, lang := range e.cfg.TargetLanguages {
			e.Emit(e, &engine.NativeEvent{
				Kind:      engine.Synthesizing,
				SessionID: sessionID,
				Synthesis: &engine.SynthesisResult{
					Reason: engine.SynthesizingAudio,
					Audio:  []byte(res.Translations[lang]),
				},
			})
		}
		e.Emit(e, &engine.NativeEvent{
			Kind:      engine.Synthesizing,
			SessionID: sessionID,
			Synthesis: &engine.SynthesisResult{Reason: engine.SynthesizingAudioCompleted},
		})
	}
	return res
}

func (e *Engine) result(text string, reason engine.ResultReason, duration time.Duration) *engine.RecognitionResult {
	translations := make(map[string]string, len(e.cfg.TargetLanguages))
	for _, lang := range e.cfg.TargetLanguages {
		translations[lang] = fmt.Sprintf("[%s] %s", lang, text)
	}
	raw, err := json.Marshal(jsonResult{
		RecognitionStatus: "Success",
		DisplayText:       text,
		Offset:            int64(e.offset / 100),
		Duration:          int64(duration / 100),
		Translations:      translations,
	})
	if err != nil {
		e.log.WithError(err).Warn("encode result")
	}
	return &engine.RecognitionResult{
		ResultID:     uuid.NewString(),
		Reason:       reason,
		Text:         text,
		Offset:       e.offset,
		Duration:     duration,
		Translations: translations,
		Properties:   engine.ResponseProperties(string(raw), ""),
	}
}

// nextUtterance returns the next utterance and the number of audio bytes it
// represents, or io.EOF when the input is exhausted.
func (e *Engine) nextUtterance(ctx context.Context) (string, int, error) {
	if e.audio != nil && e.audio.Stream != nil {
		chunk, err := e.pump.Next(ctx)
		if err != nil {
			return "", 0, err
		}
		e.next++
		return fmt.Sprintf("utterance %d", e.next), len(chunk), nil
	}

	if e.next >= len(e.utterances) {
		return "", 0, io.EOF
	}
	text := e.utterances[e.next]
	e.next++
	return text, len(text) * 2 * defaultSampleRate / 10, nil
}

func (e *Engine) duration(size int) time.Duration {
	rate := e.cfg.SampleRate
	if rate <= 0 {
		rate = defaultSampleRate
	}
	// 16-bit mono samples.
	return time.Duration(size/2) * time.Second / time.Duration(rate)
}

func (e *Engine) wait(ctx context.Context) error {
	if e.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AuthorizationToken implements engine.Engine.
func (e *Engine) AuthorizationToken() (string, error) {
	return e.props.GetProperty(engine.SpeechServiceAuthorizationToken), nil
}

// SetAuthorizationToken implements engine.Engine.
func (e *Engine) SetAuthorizationToken(token string) error {
	return e.props.SetProperty(engine.SpeechServiceAuthorizationToken, token)
}

// Properties implements engine.Engine.
func (e *Engine) Properties() engine.PropertyBag {
	return e.props
}

// Release implements engine.Engine.
func (e *Engine) Release() error {
	if err := e.lifecycle.Release(); err != nil {
		return err
	}
	e.pump.Close()
	e.log.Debug("stub engine released")
	return nil
}
