package stub

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agnivade/stt_translation/engine"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// recorder collects native events from every source.
type recorder struct {
	mu     sync.Mutex
	events []*engine.NativeEvent
}

func (r *recorder) attach(e *Engine) {
	for _, kind := range engine.EventKinds {
		e.EventSource(kind).Subscribe(func(_ any, ev *engine.NativeEvent) {
			r.mu.Lock()
			r.events = append(r.events, ev)
			r.mu.Unlock()
		})
	}
}

func (r *recorder) kinds() []engine.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]engine.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (r *recorder) byKind(kind engine.EventKind) []*engine.NativeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*engine.NativeEvent
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, engine.ErrMissingConfig)
}

func TestEngine_RecognizeOnce(t *testing.T) {
	cfg := &engine.TranslationConfig{
		SpeechRecognitionLanguage: "en-US",
		TargetLanguages:           []string{"en", "fr"},
	}
	e, err := New(cfg, nil, WithUtterances("good morning"), WithLogger(testLogger()))
	require.NoError(t, err)

	var rec recorder
	rec.attach(e)

	res, err := e.RecognizeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.TranslatedSpeech, res.Reason)
	assert.Equal(t, "good morning", res.Text)
	assert.Equal(t, "[fr] good morning", res.Translations["fr"])
	assert.Equal(t, "[en] good morning", res.Translations["en"])
	assert.NotEmpty(t, res.ResultID)
	assert.Equal(t, []engine.EventKind{engine.SessionStarted, engine.SessionStopped}, rec.kinds())
	assert.JSONEq(t, `{
		"RecognitionStatus": "Success",
		"DisplayText": "good morning",
		"Offset": 0,
		"Duration": 12000000,
		"Translations": {"en": "[en] good morning", "fr": "[fr] good morning"}
	}`, res.Properties[engine.SpeechServiceResponseJSONResult.String()])
	assert.Empty(t, res.ErrorJSON)

	// Utterances are exhausted.
	res, err = e.RecognizeOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.NoMatch, res.Reason)
}

func TestEngine_RecognizeOnceCanceled(t *testing.T) {
	e, err := New(&engine.TranslationConfig{}, nil, WithLatency(time.Hour), WithLogger(testLogger()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = e.RecognizeOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Continuous(t *testing.T) {
	cfg := &engine.TranslationConfig{
		TargetLanguages: []string{"de"},
		VoiceName:       "de-DE-KatjaNeural",
		InterimResults:  true,
	}
	e, err := New(cfg, nil, WithUtterances("one two", "three"), WithLogger(testLogger()))
	require.NoError(t, err)

	var rec recorder
	rec.attach(e)

	require.NoError(t, e.StartContinuous(context.Background()))
	require.Eventually(t, func() bool {
		return len(rec.byKind(engine.SessionStopped)) == 1
	}, time.Second, 5*time.Millisecond)

	recognized := rec.byKind(engine.Recognized)
	require.Len(t, recognized, 2)
	assert.Equal(t, "one two", recognized[0].Result.Text)
	assert.Equal(t, "[de] three", recognized[1].Result.Translations["de"])

	recognizing := rec.byKind(engine.Recognizing)
	require.Len(t, recognizing, 1)
	assert.Equal(t, "one", recognizing[0].Result.Text)

	canceled := rec.byKind(engine.Canceled)
	require.Len(t, canceled, 1)
	assert.Equal(t, engine.CancelEndOfStream, canceled[0].Cancellation.Reason)

	// Two synthesizing events per utterance: audio and completion.
	assert.Len(t, rec.byKind(engine.Synthesizing), 4)
	assert.Len(t, rec.byKind(engine.SpeechStartDetected), 2)
	assert.Len(t, rec.byKind(engine.SpeechEndDetected), 2)

	kinds := rec.kinds()
	assert.Equal(t, engine.SessionStarted, kinds[0])
	assert.Equal(t, engine.SessionStopped, kinds[len(kinds)-1])
}

func TestEngine_StartStop(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	e, err := New(&engine.TranslationConfig{}, engine.NewAudioConfigFromStream(pr), WithLogger(testLogger()))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, e.StartContinuous(ctx))
	assert.ErrorIs(t, e.StartContinuous(ctx), engine.ErrAlreadyStarted)

	_, err = e.RecognizeOnce(ctx)
	assert.ErrorIs(t, err, engine.ErrBusy)

	// Stop returns even though the audio stream is blocked.
	require.NoError(t, e.StopContinuous(ctx))
	require.NoError(t, e.StopContinuous(ctx))

	require.NoError(t, e.StartContinuous(ctx))
	require.NoError(t, e.StopContinuous(ctx))
}

func TestEngine_AudioChunks(t *testing.T) {
	audio := &engine.AudioConfig{
		Stream:    bytes.NewReader(make([]byte, 3200*2+100)),
		ChunkSize: 3200,
	}
	e, err := New(&engine.TranslationConfig{TargetLanguages: []string{"fr"}}, audio, WithLogger(testLogger()))
	require.NoError(t, err)

	var rec recorder
	rec.attach(e)

	require.NoError(t, e.StartContinuous(context.Background()))
	require.Eventually(t, func() bool {
		return len(rec.byKind(engine.SessionStopped)) == 1
	}, time.Second, 5*time.Millisecond)

	recognized := rec.byKind(engine.Recognized)
	require.Len(t, recognized, 3)
	assert.Equal(t, "utterance 1", recognized[0].Result.Text)
	assert.Equal(t, 100*time.Millisecond, recognized[0].Result.Duration)
	assert.Equal(t, 100*time.Millisecond, recognized[1].Result.Offset)
	assert.Equal(t, "[fr] utterance 3", recognized[2].Result.Translations["fr"])
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestEngine_AudioReadError(t *testing.T) {
	audio := &engine.AudioConfig{Stream: failingReader{err: errors.New("mic unplugged")}}
	e, err := New(&engine.TranslationConfig{}, audio, WithLogger(testLogger()))
	require.NoError(t, err)

	var rec recorder
	rec.attach(e)

	require.NoError(t, e.StartContinuous(context.Background()))
	require.Eventually(t, func() bool {
		return len(rec.byKind(engine.SessionStopped)) == 1
	}, time.Second, 5*time.Millisecond)

	canceled := rec.byKind(engine.Canceled)
	require.Len(t, canceled, 1)
	assert.Equal(t, engine.CancelError, canceled[0].Cancellation.Reason)
	assert.Equal(t, engine.RuntimeError, canceled[0].Cancellation.ErrorCode)
	res := canceled[0].Result
	assert.Equal(t, "mic unplugged", res.ErrorDetails)
	assert.JSONEq(t, `{"code":"RuntimeError","message":"mic unplugged"}`, res.ErrorJSON)
	assert.Equal(t, res.ErrorJSON, res.Properties[engine.SpeechServiceResponseJSONErrorDetails.String()])
}

func TestEngine_AuthorizationToken(t *testing.T) {
	e, err := New(&engine.TranslationConfig{AuthorizationToken: "initial"}, nil, WithLogger(testLogger()))
	require.NoError(t, err)

	token, err := e.AuthorizationToken()
	require.NoError(t, err)
	assert.Equal(t, "initial", token)

	require.NoError(t, e.SetAuthorizationToken("rotated"))
	token, err = e.AuthorizationToken()
	require.NoError(t, err)
	assert.Equal(t, "rotated", token)
}

func TestEngine_Release(t *testing.T) {
	e, err := New(&engine.TranslationConfig{}, nil, WithLogger(testLogger()))
	require.NoError(t, err)

	require.NoError(t, e.Release())
	assert.ErrorIs(t, e.Release(), engine.ErrReleased)

	_, err = e.RecognizeOnce(context.Background())
	assert.ErrorIs(t, err, engine.ErrReleased)
	assert.ErrorIs(t, e.StartContinuous(context.Background()), engine.ErrReleased)
}
