package main

import (
	"bufio"
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stt "github.com/agnivade/stt_translation"
	"github.com/agnivade/stt_translation/config"
	"github.com/agnivade/stt_translation/engine/stub"
)

// mockWebSocketServer creates a test WebSocket server that can send and receive messages
func mockWebSocketServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(server.Close)

	return server
}

func silentLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func connect(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitDone(t *testing.T, c *Client) {
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not see the end of the session")
	}
}

func TestSessionURL(t *testing.T) {
	got, err := sessionURL("ws://localhost:8081/ws", "en-US", "fr,de", "", false)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8081/ws?from=en-US&to=fr%2Cde", got)

	got, err = sessionURL("ws://localhost:8081/ws", "en-US", "es", "es-ES-Neural", true)
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8081/ws?from=en-US&interim=true&to=es&voice=es-ES-Neural", got)

	_, err = sessionURL("://bad", "en-US", "es", "", false)
	assert.Error(t, err)
}

func TestFormatResult(t *testing.T) {
	now := time.Date(2025, 1, 1, 9, 30, 15, 0, time.UTC)
	tests := []struct {
		name string
		resp stt.WebSocketResponse
		want string
	}{
		{
			name: "no translations",
			resp: stt.WebSocketResponse{Text: "hello"},
			want: "[09:30:15] hello\n",
		},
		{
			name: "sorted languages",
			resp: stt.WebSocketResponse{
				Text:         "hello",
				Translations: map[string]string{"fr": "bonjour", "de": "hallo"},
			},
			want: "[09:30:15] hello | de: hallo | fr: bonjour\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatResult(tt.resp, now))
		})
	}
}

func TestClient_WriterSendsAudio(t *testing.T) {
	requests := make(chan stt.WebSocketRequest, 10)
	server := mockWebSocketServer(t, func(conn *websocket.Conn) {
		for {
			var req stt.WebSocketRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			requests <- req
			if req.EOF {
				return
			}
		}
	})
	conn := connect(t, server, "")

	audio := bytes.Repeat([]byte{1}, framesPerBuffer*2*2+100)
	client := NewClient(conn, bytes.NewReader(audio), silentLog(), io.Discard, 0.8)

	client.wg.Add(1)
	go client.writer()

	var got []stt.WebSocketRequest
	for req := range requests {
		got = append(got, req)
		if req.EOF {
			break
		}
	}
	client.Close()

	require.Len(t, got, 4)
	assert.Len(t, got[0].Buf, framesPerBuffer*2)
	assert.Len(t, got[1].Buf, framesPerBuffer*2)
	assert.Len(t, got[2].Buf, 100)
	assert.True(t, got[3].EOF)
	assert.Empty(t, got[3].Buf)
}

func TestClient_ReaderProcessesResponses(t *testing.T) {
	responses := []stt.WebSocketResponse{
		{Type: stt.FrameSessionStarted, SessionID: "s1"},
		{Type: stt.FrameRecognizing, Text: "hello"},
		{Type: stt.FrameRecognized, Text: "Hello world", Translations: map[string]string{"es": "Hola mundo"}},
		{Type: stt.FrameRecognized, Text: "hello world."},
		{Type: stt.FrameRecognized, Text: ""},
		{Type: stt.FrameRecognized, Text: "This is a test"},
		{Type: stt.FrameCanceled, Reason: "Error", ErrorCode: "ServiceTimeout", ErrorDetails: "took too long"},
		{Type: stt.FrameCanceled, Reason: "EndOfStream"},
		{Type: stt.FrameSessionStopped, SessionID: "s1"},
		{Type: stt.FrameRecognized, Text: "never read"},
	}
	server := mockWebSocketServer(t, func(conn *websocket.Conn) {
		for _, resp := range responses {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
		// Keep the connection open until the client leaves.
		_, _, _ = conn.ReadMessage()
	})
	conn := connect(t, server, "")

	outputPath := filepath.Join(t.TempDir(), "out.txt")
	outputFile, err := os.Create(outputPath)
	require.NoError(t, err)
	defer outputFile.Close()

	var out syncBuffer
	client := NewClient(conn, strings.NewReader(""), silentLog(), &out, 0.8)
	client.bufWriter = bufio.NewWriter(outputFile)

	client.wg.Add(1)
	go client.reader()
	waitDone(t, client)
	client.Close()

	output := out.String()
	assert.Contains(t, output, "... hello\n")
	assert.Contains(t, output, "] Hello world | es: Hola mundo\n")
	assert.Equal(t, 1, strings.Count(output, "orld"), "duplicate result should be suppressed")
	assert.Contains(t, output, "] This is a test\n")
	assert.Contains(t, output, "canceled: ServiceTimeout took too long")
	assert.NotContains(t, output, "EndOfStream")
	assert.NotContains(t, output, "never read")

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Hello world | es: Hola mundo")
	assert.NotContains(t, string(data), "... hello")
}

func TestClient_ErrorFrameEndsSession(t *testing.T) {
	server := mockWebSocketServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(stt.WebSocketResponse{Type: stt.FrameError, ErrorDetails: "no engine available"})
		_, _, _ = conn.ReadMessage()
	})
	conn := connect(t, server, "")

	var out syncBuffer
	client := NewClient(conn, strings.NewReader(""), silentLog(), &out, 0.8)
	client.wg.Add(1)
	go client.reader()
	waitDone(t, client)
	client.Close()

	assert.Contains(t, out.String(), "error: no engine available")
}

func TestClient_EndToEnd(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	server := stt.New(config.ServerConfig{ListenAddr: "127.0.0.1:0"}, stt.SessionDefaults{
		Language:  "en-US",
		ChunkSize: framesPerBuffer * 2,
	}, stub.NewFactory(), logger)
	testServer := httptest.NewServer(server.Handler())
	defer testServer.Close()

	endpoint, err := sessionURL("ws"+strings.TrimPrefix(testServer.URL, "http")+"/ws", "en-US", "es", "", false)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	require.NoError(t, err)
	defer conn.Close()

	var out syncBuffer
	audio := make([]byte, framesPerBuffer*2*2)
	// Consecutive stub results differ by one character.
	client := NewClient(conn, bytes.NewReader(audio), silentLog(), &out, 1.0)
	client.Start()
	waitDone(t, client)
	client.Close()

	output := out.String()
	assert.Contains(t, output, "] utterance 1 | es: [es] utterance 1\n")
	assert.Contains(t, output, "] utterance 2 | es: [es] utterance 2\n")
}
