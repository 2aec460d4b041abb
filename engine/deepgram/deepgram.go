// Package deepgram implements an engine on Deepgram's live transcription
// websocket API. Translations come from an engine.Translator.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	client "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/agnivade/stt_translation/engine"
)

const (
	defaultModel      = "nova-3"
	defaultSampleRate = 16000
	// ModelExtension selects the Deepgram model through TranslationConfig.Extensions.
	ModelExtension = "deepgram.model"
)

var errConnect = errors.New("failed to connect to deepgram")

// serviceError is an error message received on the live connection.
type serviceError struct {
	resp *api.ErrorResponse
}

func (e *serviceError) Error() string {
	return fmt.Sprintf("deepgram %s: %s", e.resp.Type, e.resp.Description)
}

// payload returns the message as sent by Deepgram.
func (e *serviceError) payload() string {
	raw, err := json.Marshal(e.resp)
	if err != nil {
		return ""
	}
	return string(raw)
}

// dgWriter is a local interface that wraps the methods we need
// from listenv1ws.WSCallback to enable easier testing
type dgWriter interface {
	io.Writer
	Stop()
}

type dialFunc func(ctx context.Context, apiKey string, opts *interfaces.LiveTranscriptionOptions, handler *ChannelHandler) (dgWriter, error)

// ChannelHandler implements the LiveMessageChan interface for receiving Deepgram messages
type ChannelHandler struct {
	openChan          chan *api.OpenResponse
	messageChan       chan *api.MessageResponse
	metadataChan      chan *api.MetadataResponse
	speechStartedChan chan *api.SpeechStartedResponse
	utteranceEndChan  chan *api.UtteranceEndResponse
	closeChan         chan *api.CloseResponse
	errorChan         chan *api.ErrorResponse
	unhandledChan     chan *[]byte
}

// NewChannelHandler creates a new handler with initialized channels
func NewChannelHandler() *ChannelHandler {
	return &ChannelHandler{
		openChan:          make(chan *api.OpenResponse, 1),
		messageChan:       make(chan *api.MessageResponse, 10),
		metadataChan:      make(chan *api.MetadataResponse, 1),
		speechStartedChan: make(chan *api.SpeechStartedResponse, 1),
		utteranceEndChan:  make(chan *api.UtteranceEndResponse, 1),
		closeChan:         make(chan *api.CloseResponse, 1),
		errorChan:         make(chan *api.ErrorResponse, 1),
		unhandledChan:     make(chan *[]byte, 1),
	}
}

// GetOpen returns slice of channels for open events
func (ch *ChannelHandler) GetOpen() []*chan *api.OpenResponse {
	return []*chan *api.OpenResponse{&ch.openChan}
}

// GetMessage returns slice of channels for message events
func (ch *ChannelHandler) GetMessage() []*chan *api.MessageResponse {
	return []*chan *api.MessageResponse{&ch.messageChan}
}

// GetMetadata returns slice of channels for metadata events
func (ch *ChannelHandler) GetMetadata() []*chan *api.MetadataResponse {
	return []*chan *api.MetadataResponse{&ch.metadataChan}
}

// GetSpeechStarted returns slice of channels for speech started events
func (ch *ChannelHandler) GetSpeechStarted() []*chan *api.SpeechStartedResponse {
	return []*chan *api.SpeechStartedResponse{&ch.speechStartedChan}
}

// GetUtteranceEnd returns slice of channels for utterance end events
func (ch *ChannelHandler) GetUtteranceEnd() []*chan *api.UtteranceEndResponse {
	return []*chan *api.UtteranceEndResponse{&ch.utteranceEndChan}
}

// GetClose returns slice of channels for close events
func (ch *ChannelHandler) GetClose() []*chan *api.CloseResponse {
	return []*chan *api.CloseResponse{&ch.closeChan}
}

// GetError returns slice of channels for error events
func (ch *ChannelHandler) GetError() []*chan *api.ErrorResponse {
	return []*chan *api.ErrorResponse{&ch.errorChan}
}

// GetUnhandled returns slice of channels for unhandled events
func (ch *ChannelHandler) GetUnhandled() []*chan *[]byte {
	return []*chan *[]byte{&ch.unhandledChan}
}

// NewFactory returns a factory creating Deepgram engines authenticated
// with apiKey. A token set on the config or on the engine takes precedence.
func NewFactory(apiKey string, translator engine.Translator, log *logrus.Entry) engine.Factory {
	client.InitWithDefault()

	return engine.FactoryFunc(func(ctx context.Context, cfg *engine.TranslationConfig, audio *engine.AudioConfig) (engine.Engine, error) {
		return New(apiKey, translator, cfg, audio, log)
	})
}

// Engine opens one Deepgram websocket per session and streams audio to it.
// Deepgram does not synthesize translations, so Synthesizing never fires.
type Engine struct {
	*engine.Sources

	dial       dialFunc
	apiKey     string
	translator engine.Translator
	cfg        engine.TranslationConfig
	props      *engine.PropertyCollection
	pump       *engine.Pump
	log        *logrus.Entry
	// drain is how long to wait for trailing results once the audio ends.
	drain time.Duration

	lifecycle engine.Lifecycle
}

// New creates an engine reading audio from audio.Stream.
func New(apiKey string, translator engine.Translator, cfg *engine.TranslationConfig, audio *engine.AudioConfig, log *logrus.Entry) (*Engine, error) {
	return newEngine(dialDeepgram, apiKey, translator, cfg, audio, log)
}

func newEngine(dial dialFunc, apiKey string, translator engine.Translator, cfg *engine.TranslationConfig, audio *engine.AudioConfig, log *logrus.Entry) (*Engine, error) {
	if cfg == nil {
		return nil, engine.ErrMissingConfig
	}
	if audio == nil || audio.Stream == nil {
		return nil, fmt.Errorf("%w: deepgram engine requires an audio stream", engine.ErrMissingConfig)
	}

	e := &Engine{
		dial:       dial,
		apiKey:     apiKey,
		translator: translator,
		cfg:        *cfg,
		props:      cfg.Properties(),
		pump:       engine.NewPump(audio),
		log:        log.WithField("component", "engine.deepgram"),
		drain:      2 * time.Second,
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

func dialDeepgram(ctx context.Context, apiKey string, tOptions *interfaces.LiveTranscriptionOptions, handler *ChannelHandler) (dgWriter, error) {
	// Configure Deepgram client options
	cOptions := &interfaces.ClientOptions{
		APIKey:          apiKey,
		EnableKeepAlive: true,
	}

	// Create Deepgram WebSocket client using channels
	dgClient, err := client.NewWSUsingChan(ctx, "", cOptions, tOptions, handler)
	if err != nil {
		return nil, err
	}

	// Connect to Deepgram
	if success := dgClient.Connect(); !success {
		return nil, errConnect
	}
	return dgClient, nil
}

func (e *Engine) transcriptionOptions() *interfaces.LiveTranscriptionOptions {
	model := e.cfg.Extensions[ModelExtension]
	if model == "" {
		model = defaultModel
	}
	return &interfaces.LiveTranscriptionOptions{
		Model:          model,
		Language:       e.cfg.SpeechRecognitionLanguage,
		Punctuate:      true,
		Encoding:       "linear16",
		Channels:       1,
		SampleRate:     e.cfg.SampleRate,
		VadEvents:      true,
		InterimResults: e.cfg.InterimResults,
		UtteranceEndMs: "1000",
	}
}

// credential returns the authorization token if one is set, otherwise the
// subscription key, otherwise the factory's API key.
func (e *Engine) credential() string {
	if token := e.props.GetProperty(engine.SpeechServiceAuthorizationToken); token != "" {
		return token
	}
	if key := e.props.GetProperty(engine.SpeechServiceConnectionKey); key != "" {
		return key
	}
	return e.apiKey
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
	err = e.session(ctx, sessionID, func(res *engine.RecognitionResult) bool {
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
	err := e.session(ctx, sessionID, func(res *engine.RecognitionResult) bool {
		e.Emit(e, &engine.NativeEvent{Kind: engine.Recognized, SessionID: sessionID, Offset: res.Offset, Result: res})
		return true
	})
	if ctx.Err() != nil {
		return
	}

	details := &engine.CancellationDetails{Reason: engine.CancelEndOfStream}
	var errJSON string
	if err != nil && !errors.Is(err, io.EOF) {
		e.log.WithError(err).Error("live transcription failed")
		code := engine.ServiceError
		if errors.Is(err, errConnect) {
			code = engine.ConnectionFailure
		}
		details = &engine.CancellationDetails{
			Reason:       engine.CancelError,
			ErrorCode:    code,
			ErrorDetails: err.Error(),
		}
		var se *serviceError
		if errors.As(err, &se) {
			errJSON = se.payload()
		}
	}
	e.Emit(e, &engine.NativeEvent{
		Kind:      engine.Canceled,
		SessionID: sessionID,
		Result: &engine.RecognitionResult{
			ResultID:     uuid.NewString(),
			Reason:       engine.CanceledReason,
			ErrorDetails: details.ErrorDetails,
			ErrorJSON:    errJSON,
			Properties:   engine.ResponseProperties("", errJSON),
		},
		Cancellation: details,
	})
}

// session runs one websocket connection. Each final result is passed to
// onFinal; returning false ends the session. It returns io.EOF when the
// connection closed or the audio ended and no more results arrived.
func (e *Engine) session(ctx context.Context, sessionID string, onFinal func(*engine.RecognitionResult) bool) error {
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := NewChannelHandler()
	conn, err := e.dial(sessCtx, e.credential(), e.transcriptionOptions(), handler)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	audioDone := make(chan struct{})
	defer func() {
		cancel()
		wg.Wait()
		conn.Stop()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.sendAudio(sessCtx, conn, audioDone)
	}()

	var (
		drainC <-chan time.Time
		offset time.Duration
	)
	for {
		select {
		case msg := <-handler.messageChan:
			if msg == nil {
				continue
			}
			res := e.processMessage(msg)
			if res == nil {
				continue
			}
			offset = res.Offset + res.Duration
			if res.Reason == engine.RecognizingSpeech {
				e.Emit(e, &engine.NativeEvent{Kind: engine.Recognizing, SessionID: sessionID, Offset: res.Offset, Result: res})
				continue
			}
			if err := engine.Translate(ctx, e.translator, &e.cfg, res); err != nil {
				e.log.WithError(err).Warn("translation failed")
			}
			if !onFinal(res) {
				return nil
			}
		case <-handler.speechStartedChan:
			e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechStartDetected, SessionID: sessionID, Offset: offset})
		case <-handler.utteranceEndChan:
			e.Emit(e, &engine.NativeEvent{Kind: engine.SpeechEndDetected, SessionID: sessionID, Offset: offset})
		case errResp := <-handler.errorChan:
			if errResp != nil {
				return &serviceError{resp: errResp}
			}
		case <-handler.closeChan:
			// Connection closed by Deepgram
			return io.EOF
		case <-handler.openChan:
		case <-handler.metadataChan:
		case <-handler.unhandledChan:
		case <-audioDone:
			audioDone = nil
			drainC = time.After(e.drain)
		case <-drainC:
			return io.EOF
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// processMessage converts a transcript message into a result. Interim
// results are dropped unless enabled.
func (e *Engine) processMessage(msg *api.MessageResponse) *engine.RecognitionResult {
	// Process transcription results
	if len(msg.Channel.Alternatives) == 0 {
		return nil
	}

	alternative := msg.Channel.Alternatives[0]
	sentence := strings.TrimSpace(alternative.Transcript)
	if sentence == "" {
		return nil
	}

	reason := engine.RecognizedSpeech
	if !msg.IsFinal {
		if !e.cfg.InterimResults {
			return nil
		}
		reason = engine.RecognizingSpeech
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		e.log.WithError(err).Warn("encode result")
	}
	return &engine.RecognitionResult{
		ResultID:   uuid.NewString(),
		Reason:     reason,
		Text:       sentence,
		Offset:     seconds(msg.Start),
		Duration:   seconds(msg.Duration),
		Properties: engine.ResponseProperties(string(raw), ""),
	}
}

// sendAudio writes audio chunks to the connection until the stream is
// exhausted or ctx is done. audioDone is closed when the stream ends.
func (e *Engine) sendAudio(ctx context.Context, conn dgWriter, audioDone chan<- struct{}) {
	for {
		chunk, err := e.pump.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				if !errors.Is(err, io.EOF) {
					e.log.WithError(err).Warn("audio read failed")
				}
				close(audioDone)
			}
			return
		}
		if _, err := conn.Write(chunk); err != nil {
			e.log.WithError(err).Debug("audio write stopped")
			return
		}
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// AuthorizationToken implements engine.Engine.
func (e *Engine) AuthorizationToken() (string, error) {
	return e.props.GetProperty(engine.SpeechServiceAuthorizationToken), nil
}

// SetAuthorizationToken implements engine.Engine. The token is used as the
// API key from the next session on.
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
	return nil
}
