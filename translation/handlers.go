package translation

import (
	"sync/atomic"

	"github.com/agnivade/stt_translation/engine"
	"github.com/agnivade/stt_translation/event"
)

// nativeHandler converts engine events into public event args and fires
// them on the recognizer's channels.
type nativeHandler interface {
	bind(r *TranslationRecognizer)
	execute(ev *engine.NativeEvent)
	release()
}

// adapter holds the back reference shared by all handlers. It is cleared
// on release so a late engine callback cannot reach the recognizer.
type adapter struct {
	recognizer atomic.Pointer[TranslationRecognizer]
}

func (a *adapter) bind(r *TranslationRecognizer) {
	a.recognizer.Store(r)
}

// owner returns the recognizer if it is still live.
func (a *adapter) owner() *TranslationRecognizer {
	r := a.recognizer.Load()
	if r == nil || r.disposed.Load() {
		return nil
	}
	return r
}

func (a *adapter) release() {
	a.recognizer.Store(nil)
}

func mustEvent(ev *engine.NativeEvent) {
	if ev == nil {
		panic("translation: nil native event")
	}
}

// resultHandler serves both the recognizing and the recognized channel.
type resultHandler struct {
	adapter
	isRecognizedHandler bool
}

func (h *resultHandler) execute(ev *engine.NativeEvent) {
	mustEvent(ev)
	r := h.owner()
	if r == nil {
		return
	}

	args := newTranslationRecognitionEventArgs(ev)
	ch := r.recognizing
	if h.isRecognizedHandler {
		ch = r.recognized
	}
	if r.disposed.Load() {
		return
	}
	ch.Fire(r, args)
}

type canceledHandler struct {
	adapter
}

func (h *canceledHandler) execute(ev *engine.NativeEvent) {
	mustEvent(ev)
	r := h.owner()
	if r == nil {
		return
	}

	args := newTranslationRecognitionCanceledEventArgs(ev)
	if r.disposed.Load() {
		return
	}
	r.canceled.Fire(r, args)
}

type synthesisHandler struct {
	adapter
}

func (h *synthesisHandler) execute(ev *engine.NativeEvent) {
	mustEvent(ev)
	r := h.owner()
	if r == nil {
		return
	}

	args := newTranslationSynthesisEventArgs(ev)
	if r.disposed.Load() {
		return
	}
	r.synthesizing.Fire(r, args)
}

// sessionHandler serves the session started and stopped channels.
type sessionHandler struct {
	adapter
	isSessionStart bool
}

func (h *sessionHandler) execute(ev *engine.NativeEvent) {
	mustEvent(ev)
	r := h.owner()
	if r == nil {
		return
	}

	args := SessionEventArgs{SessionID: ev.SessionID}
	ch := r.sessionStopped
	if h.isSessionStart {
		ch = r.sessionStarted
	}
	if r.disposed.Load() {
		return
	}
	ch.Fire(r, args)
}

// speechDetectedHandler serves the speech start and end channels.
type speechDetectedHandler struct {
	adapter
	isSpeechStart bool
}

func (h *speechDetectedHandler) execute(ev *engine.NativeEvent) {
	mustEvent(ev)
	r := h.owner()
	if r == nil {
		return
	}

	args := newRecognitionEventArgs(ev)
	ch := r.speechEndDetected
	if h.isSpeechStart {
		ch = r.speechStartDetected
	}
	if r.disposed.Load() {
		return
	}
	ch.Fire(r, args)
}

// registration ties a handler to the engine source it listens on.
type registration struct {
	kind    engine.EventKind
	source  engine.EventSource
	handle  event.Handle
	handler nativeHandler
}

func register(kind engine.EventKind, source engine.EventSource, h nativeHandler) *registration {
	handle := source.Subscribe(func(_ any, ev *engine.NativeEvent) {
		h.execute(ev)
	})
	return &registration{
		kind:    kind,
		source:  source,
		handle:  handle,
		handler: h,
	}
}
