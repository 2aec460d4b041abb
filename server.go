// Package stt_translation serves speech translation over websockets. Each
// connection owns one TranslationRecognizer fed by the audio the client
// streams.
package stt_translation

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agnivade/stt_translation/config"
	"github.com/agnivade/stt_translation/engine"
)

// SessionDefaults apply to every connection unless its query overrides them.
type SessionDefaults struct {
	Language       string
	SampleRate     int
	ChunkSize      int
	InterimResults bool
	Extensions     map[string]string
}

type Server struct {
	srv             *http.Server
	log             *logrus.Entry
	factory         engine.Factory
	defaults        SessionDefaults
	shutdownTimeout time.Duration
	// drainTimeout bounds how long a closing connection waits for the
	// engine to finish the audio already received.
	drainTimeout time.Duration

	mu    sync.Mutex
	conns map[*WebConn]struct{}
	wg    sync.WaitGroup
}

func New(cfg config.ServerConfig, defaults SessionDefaults, factory engine.Factory, logger *logrus.Logger) *Server {
	mux := http.NewServeMux()

	server := &Server{
		srv: &http.Server{
			Addr:         cfg.ListenAddr,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      mux,
		},
		log:             logger.WithField("component", "server"),
		factory:         factory,
		defaults:        defaults,
		shutdownTimeout: cfg.ShutdownTimeout,
		drainTimeout:    5 * time.Second,
		conns:           make(map[*WebConn]struct{}),
	}
	if server.shutdownTimeout <= 0 {
		server.shutdownTimeout = 30 * time.Second
	}

	mux.HandleFunc("GET /ws", server.handleWebSocket)
	mux.HandleFunc("GET /healthz", server.handleHealth)

	return server
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.log.WithField("addr", s.srv.Addr).Info("starting server")
	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down, then closes open websocket connections
// and waits for their recognizers to be disposed.
func (s *Server) Stop() error {
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)

	s.stopAllConns()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		err = errors.Join(err, ctx.Err())
	}
	return err
}

func (s *Server) addConn(wc *WebConn) {
	s.mu.Lock()
	s.conns[wc] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) removeConn(wc *WebConn) {
	s.mu.Lock()
	delete(s.conns, wc)
	s.mu.Unlock()
}

// stopAllConns closes every open websocket. Their handlers then dispose
// the recognizers.
func (s *Server) stopAllConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for wc := range s.conns {
		wc.conn.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}
