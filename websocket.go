package stt_translation

import (
	"context"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/agnivade/stt_translation/engine"
	"github.com/agnivade/stt_translation/event"
	"github.com/agnivade/stt_translation/translation"
)

const writeTimeout = 10 * time.Second

// WebSocketRequest is a client frame. Buf carries 16-bit PCM; EOF marks the
// end of the audio.
type WebSocketRequest struct {
	Buf []byte `json:"buf"`
	EOF bool   `json:"eof,omitempty"`
}

// Frame types sent to the client.
const (
	FrameRecognizing    = "recognizing"
	FrameRecognized     = "recognized"
	FrameCanceled       = "canceled"
	FrameSynthesizing   = "synthesizing"
	FrameSessionStarted = "session_started"
	FrameSessionStopped = "session_stopped"
	FrameError          = "error"
)

type WebSocketResponse struct {
	Type         string            `json:"type"`
	SessionID    string            `json:"session_id,omitempty"`
	Text         string            `json:"text,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
	Reason       string            `json:"reason,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
	ErrorDetails string            `json:"error_details,omitempty"`
	Audio        []byte            `json:"audio,omitempty"`
}

// WebConn pumps one client's audio into its recognizer and writes the
// recognizer's events back as JSON frames.
type WebConn struct {
	conn    *websocket.Conn
	rec     *translation.TranslationRecognizer
	audio   *io.PipeWriter
	log     *logrus.Entry
	drain   time.Duration
	writeMu sync.Mutex

	stopped     chan struct{}
	stoppedOnce sync.Once
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	targets := splitList(q.Get("to"))
	if len(targets) == 0 {
		http.Error(w, "missing target language", http.StatusBadRequest)
		return
	}
	from := q.Get("from")
	if from == "" {
		from = s.defaults.Language
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  8192,
		WriteBufferSize: 8192,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	log := s.log.WithField("conn_id", uuid.NewString())
	pr, pw := io.Pipe()
	cfg := &engine.TranslationConfig{
		SpeechRecognitionLanguage: from,
		TargetLanguages:           targets,
		VoiceName:                 q.Get("voice"),
		SampleRate:                s.defaults.SampleRate,
		InterimResults:            s.defaults.InterimResults || q.Get("interim") == "true",
		Extensions:                maps.Clone(s.defaults.Extensions),
	}
	audio := &engine.AudioConfig{Stream: pr, ChunkSize: s.defaults.ChunkSize}

	webConn := &WebConn{
		conn:    conn,
		audio:   pw,
		log:     log,
		drain:   s.drainTimeout,
		stopped: make(chan struct{}),
	}

	rec, err := translation.NewTranslationRecognizer(r.Context(), s.factory, cfg, audio, translation.WithLogger(log))
	if err != nil {
		log.WithError(err).Error("failed to create recognizer")
		webConn.send(WebSocketResponse{Type: FrameError, ErrorDetails: err.Error()})
		pw.Close()
		conn.Close()
		return
	}
	webConn.rec = rec

	s.wg.Add(1)
	defer s.wg.Done()
	s.addConn(webConn)
	defer s.removeConn(webConn)

	log.WithFields(logrus.Fields{"from": from, "to": targets}).Info("connection opened")
	webConn.Start()
	log.Info("connection closed")
}

func (wc *WebConn) Start() {
	defer wc.conn.Close()
	defer func() {
		if err := wc.rec.Dispose(); err != nil {
			wc.log.WithError(err).Warn("dispose failed")
		}
	}()
	defer wc.audio.Close()

	wc.subscribe()
	if _, err := wc.rec.StartContinuousRecognitionAsync().Wait(); err != nil {
		wc.log.WithError(err).Error("failed to start recognition")
		wc.send(WebSocketResponse{Type: FrameError, ErrorDetails: err.Error()})
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		wc.reader()
	}()

	select {
	case <-wc.stopped:
	case <-readerDone:
		// The client is gone. Give the engine a moment to finish the
		// audio it already has.
		select {
		case <-wc.stopped:
		case <-time.After(wc.drain):
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), wc.drain)
	defer cancel()
	if _, err := wc.rec.StopContinuousRecognitionAsync().Get(ctx); err != nil {
		wc.log.WithError(err).Warn("failed to stop recognition")
	}
	wc.writeMu.Lock()
	_ = wc.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	wc.writeMu.Unlock()
}

// reader forwards audio frames into the recognizer's input until the client
// disconnects. The audio stream is closed on EOF or disconnect.
func (wc *WebConn) reader() {
	defer wc.audio.Close()

	for {
		_, message, err := wc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				wc.log.WithError(err).Warn("websocket read error")
			}
			return
		}

		var req WebSocketRequest
		if err := json.Unmarshal(message, &req); err != nil {
			wc.log.WithError(err).Warn("failed to unmarshal websocket message")
			continue
		}

		if len(req.Buf) > 0 {
			if _, err := wc.audio.Write(req.Buf); err != nil {
				wc.log.WithError(err).Debug("audio input closed")
				return
			}
		}
		if req.EOF {
			wc.audio.Close()
		}
	}
}

func (wc *WebConn) subscribe() {
	wc.rec.SessionStarted().Subscribe(func(_ any, e translation.SessionEventArgs) {
		wc.send(WebSocketResponse{Type: FrameSessionStarted, SessionID: e.SessionID})
	})
	wc.rec.SessionStopped().Subscribe(func(_ any, e translation.SessionEventArgs) {
		wc.send(WebSocketResponse{Type: FrameSessionStopped, SessionID: e.SessionID})
		wc.stoppedOnce.Do(func() { close(wc.stopped) })
	})
	wc.rec.Recognizing().Subscribe(wc.onResult(FrameRecognizing))
	wc.rec.Recognized().Subscribe(wc.onResult(FrameRecognized))
	wc.rec.Canceled().Subscribe(func(_ any, e translation.TranslationRecognitionCanceledEventArgs) {
		wc.send(WebSocketResponse{
			Type:         FrameCanceled,
			SessionID:    e.SessionID,
			Reason:       e.Reason.String(),
			ErrorCode:    e.ErrorCode.String(),
			ErrorDetails: e.ErrorDetails,
		})
	})
	wc.rec.Synthesizing().Subscribe(func(_ any, e translation.TranslationSynthesisEventArgs) {
		wc.send(WebSocketResponse{
			Type:      FrameSynthesizing,
			SessionID: e.SessionID,
			Reason:    e.Result.Reason.String(),
			Audio:     e.Result.Audio(),
		})
	})
}

func (wc *WebConn) onResult(frameType string) event.Handler[translation.TranslationRecognitionEventArgs] {
	return func(_ any, e translation.TranslationRecognitionEventArgs) {
		wc.send(WebSocketResponse{
			Type:         frameType,
			SessionID:    e.SessionID,
			Text:         e.Result.Text,
			Translations: e.Result.Translations(),
			Reason:       e.Result.Reason.String(),
			ErrorDetails: e.Result.ErrorDetails,
		})
	}
}

func (wc *WebConn) send(resp WebSocketResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		wc.log.WithError(err).Error("failed to marshal response")
		return
	}

	wc.writeMu.Lock()
	defer wc.writeMu.Unlock()
	_ = wc.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := wc.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		wc.log.WithError(err).Debug("websocket write error")
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
