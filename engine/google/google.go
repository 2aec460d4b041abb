// Package google implements an engine on Google Cloud Speech-to-Text
// streaming recognition. Translations come from an engine.Translator.
package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/agnivade/stt_translation/engine"
)

const defaultSampleRate = 16000

// streamingRecognizeClient is a local interface that wraps the methods we need
// from speechpb.Speech_StreamingRecognizeClient to enable easier testing
type streamingRecognizeClient interface {
	Send(*speechpb.StreamingRecognizeRequest) error
	Recv() (*speechpb.StreamingRecognizeResponse, error)
	CloseSend() error
}

type openFunc func(ctx context.Context) (streamingRecognizeClient, error)

// NewFactory returns a factory creating engines on client. translator may
// be nil, in which case results carry no translations.
func NewFactory(client *speech.Client, translator engine.Translator, log *logrus.Entry) engine.Factory {
	return engine.FactoryFunc(func(ctx context.Context, cfg *engine.TranslationConfig, audio *engine.AudioConfig) (engine.Engine, error) {
		return New(client, translator, cfg, audio, log)
	})
}

// Engine streams audio to Google Speech. Each session opens one stream.
// Google does not synthesize translations, so Synthesizing never fires.
type Engine struct {
	*engine.Sources

	open       openFunc
	translator engine.Translator
	cfg        engine.TranslationConfig
	props      *engine.PropertyCollection
	pump       *engine.Pump
	log        *logrus.Entry

	lifecycle engine.Lifecycle
	offset    time.Duration
}

// New creates an engine reading audio from audio.Stream.
func New(client *speech.Client, translator engine.Translator, cfg *engine.TranslationConfig, audio *engine.AudioConfig, log *logrus.Entry) (*Engine, error) {
	if client == nil {
		return nil, errors.New("google engine requires a speech client")
	}
	return newEngine(func(ctx context.Context) (streamingRecognizeClient, error) {
		stream, err := client.StreamingRecognize(ctx)
		if err != nil {
			return nil, err
		}
		return stream, nil
	}, translator, cfg, audio, log)
}

func newEngine(open openFunc, translator engine.Translator, cfg *engine.TranslationConfig, audio *engine.AudioConfig, log *logrus.Entry) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrMissingConfig
	}
	if audio == nil || audio.Stream == nil {
		return nil, fmt.Errorf("%w: google engine requires an audio stream", engine.ErrMissingConfig)
	}

	e := &Engine{
		open:       open,
		translator: translator,
		cfg:        *cfg,
		props:      cfg.Properties(),
		pump:       engine.NewPump(audio),
		log:        log.WithField("component", "engine.google"),
	}
	e.cfg.TargetLanguages = append([]string(nil), cfg.TargetLanguages...)
	if e.cfg.SampleRate <= 0 {
		e.cfg.SampleRate = defaultSampleRate
	}
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

	var final *engine.RecognitionResult
	err = e.stream(ctx, sessionID, true, func(res *engine.RecognitionResult) bool {
		final = res
		return false
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if final == nil {
		return &engine.RecognitionResult{
			ResultID: uuid.NewString(),
			Reason:   engine.NoMatch,
			Offset:   e.offset,
		}, nil
	}
	return final, nil
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
	defer e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStopped, SessionID: sessionID})

	e.Emit(e, &engine.NativeEvent{Kind: engine.SessionStarted, SessionID: sessionID})
	err := e.stream(ctx, sessionID, false, func(res *engine.RecognitionResult) bool {
		e.Emit(e, &engine.NativeEvent{Kind: engine.Recognized, SessionID: sessionID, Offset: res.Offset, Result: res})
		return true
	})
	if ctx.Err() != nil {
		return
	}

	details := &engine.CancellationDetails{Reason: engine.CancelEndOfStream}
	var errJSON string
	if err != nil && !errors.Is(err, io.EOF) {
		e.log.WithError(err).Error("streaming recognition failed")
		details = &engine.CancellationDetails{
			Reason:       engine.CancelError,
			ErrorCode:    errorCode(err),
			ErrorDetails: err.Error(),
		}
		errJSON = errorJSON(err)
	}
	e.Emit(e, &engine.NativeEvent{
		Kind:      engine.Canceled,
		SessionID: sessionID,
		Offset:    e.offset,
		Result: &engine.RecognitionResult{
			ResultID:     uuid.NewString(),
			Reason:       engine.CanceledReason,
			Offset:       e.offset,
			ErrorDetails: details.ErrorDetails,
			ErrorJSON:    errJSON,
			Properties:   engine.ResponseProperties("", errJSON),
		},
		Cancellation: details,
	})
}

// stream runs one streaming recognize call. Each final result is passed to
// onFinal; returning false ends the stream. It returns io.EOF when the
// service closed the stream.
func (e *Engine) stream(ctx context.Context, sessionID string, single bool, onFinal func(*engine.RecognitionResult) bool) error {
	streamCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	stream, err := e.open(streamCtx)
	if err != nil {
		return err
	}

	// Send initial configuration
	req := &speechpb.StreamingRecognizeRequest{
		StreamingRequest: &speechpb.StreamingRecognizeRequest_StreamingConfig{
			StreamingConfig: &speechpb.StreamingRecognitionConfig{
				Config: &speechpb.RecognitionConfig{
					Encoding:                   speechpb.RecognitionConfig_LINEAR16,
					SampleRateHertz:            int32(e.cfg.SampleRate),
					LanguageCode:               e.cfg.SpeechRecognitionLanguage,
					EnableAutomaticPunctuation: true,
				},
				InterimResults:            e.cfg.InterimResults,
				SingleUtterance:           single,
				EnableVoiceActivityEvents: true,
			},
		},
	}
	if err := stream.Send(req); err != nil {
		stream.CloseSend()
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.sendAudio(streamCtx, stream)
	}()

	start := e.offset
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return io.EOF
		}
		if err != nil {
			return err
		}

		switch resp.SpeechEventType {
		case speechpb.StreamingRecognizeResponse_SPEECH_ACTIVITY_BEGIN:
			e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechStartDetected, SessionID: sessionID, Offset: e.offset})
		case speechpb.StreamingRecognizeResponse_SPEECH_ACTIVITY_END:
			e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechEndDetected, SessionID: sessionID, Offset: e.offset})
		}

		for _, result := range resp.Results {
			if len(result.Alternatives) == 0 {
				continue
			}
			alt := result.Alternatives[0]
			if !result.IsFinal {
				if e.cfg.InterimResults {
					e.Emit(e, &engine.NativeEvent{
						Kind:      engine.Recognizing,
						SessionID: sessionID,
						Offset:    e.offset,
						Result: &engine.RecognitionResult{
							ResultID: uuid.NewString(),
							Reason:   engine.RecognizingSpeech,
							Text:     alt.Transcript,
							Offset:   e.offset,
						},
					})
				}
				continue
			}

			end := start + result.GetResultEndTime().AsDuration()
			raw, err := protojson.Marshal(result)
			if err != nil {
				e.log.WithError(err).Warn("encode result")
			}
			res := &engine.RecognitionResult{
				ResultID:   uuid.NewString(),
				Reason:     engine.RecognizedSpeech,
				Text:       alt.Transcript,
				Offset:     e.offset,
				Duration:   max(end-e.offset, 0),
				Properties: engine.ResponseProperties(string(raw), ""),
			}
			e.offset = max(end, e.offset)
			if err := engine.Translate(ctx, e.translator, &e.cfg, res); err != nil {
				e.log.WithError(err).Warn("translation failed")
			}
			if !onFinal(res) {
				return nil
			}
		}
	}
}

// sendAudio forwards audio chunks until the stream is exhausted or ctx is
// done.
func (e *Engine) sendAudio(ctx context.Context, stream streamingRecognizeClient) {
	for {
		chunk, err := e.pump.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				if !errors.Is(err, io.EOF) {
					e.log.WithError(err).Warn("audio read failed")
				}
				stream.CloseSend()
			}
			return
		}
		req := &speechpb.StreamingRecognizeRequest{
			StreamingRequest: &speechpb.StreamingRecognizeRequest_AudioContent{
				AudioContent: chunk,
			},
		}
		if err := stream.Send(req); err != nil {
			e.log.WithError(err).Debug("audio send stopped")
			return
		}
	}
}

// errorJSON renders the gRPC status of err, or "" when err carries none.
func errorJSON(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}
	raw, err := protojson.Marshal(st.Proto())
	if err != nil {
		return ""
	}
	return string(raw)
}

func errorCode(err error) engine.CancellationErrorCode {
	switch status.Code(err) {
	case codes.Unauthenticated:
		return engine.AuthenticationFailure
	case codes.PermissionDenied:
		return engine.Forbidden
	case codes.InvalidArgument:
		return engine.BadRequest
	case codes.ResourceExhausted:
		return engine.TooManyRequests
	case codes.DeadlineExceeded:
		return engine.ServiceTimeout
	case codes.Unavailable:
		return engine.ServiceUnavailable
	case codes.Unknown:
		return engine.ConnectionFailure
	default:
		return engine.ServiceError
	}
}

// AuthorizationToken implements engine.Engine.
func (e *Engine) AuthorizationToken() (string, error) {
	return e.props.GetProperty(engine.SpeechServiceAuthorizationToken), nil
}

// SetAuthorizationToken implements engine.Engine. The speech client
// authenticates with its own credentials; the token is kept for callers.
func (e *Engine) SetAuthorizationToken(token string) error {
	return e.props.SetProperty(engine.SpeechServiceAuthorizationToken, token)
}

// Properties implements engine.Engine.
func (e *Engine) Properties() engine.PropertyBag {
	return e.props
}

// Release implements engine.Engine. The speech client is owned by the
// caller and stays open.
func (e *Engine) Release() error {
	if err := e.lifecycle.Release(); err != nil {
		return err
	}
	e.pump.Close()
	return nil
}
