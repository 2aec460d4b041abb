package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	stt "github.com/agnivade/stt_translation"
)

type Client struct {
	conn                *websocket.Conn
	audioReader         io.Reader
	log                 *logrus.Entry
	out                 io.Writer
	bufWriter           *bufio.Writer
	msgBuffer           *MessageBuffer
	similarityThreshold float64
	wg                  sync.WaitGroup

	// done is closed when the server ends the session.
	done     chan struct{}
	doneOnce sync.Once
}

func main() {
	var (
		serverURL  = flag.String("url", "ws://localhost:8081/ws", "WebSocket server URL")
		from       = flag.String("from", "en-US", "Spoken language")
		to         = flag.String("to", "es", "Comma separated target languages")
		voice      = flag.String("voice", "", "Voice used to synthesize translations (optional)")
		interim    = flag.Bool("interim", false, "Print partial results")
		inputPath  = flag.String("input", "", "Raw 16-bit PCM file to send instead of the microphone (optional)")
		outputPath = flag.String("output", "", "Output file path for translations (optional)")
		similarity = flag.Float64("similarity", 0.8, "Suppress results at least this similar to a recent one")
		logLevel   = flag.String("log-level", "info", "Log level")
	)
	flag.Parse()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(level)
	}
	log := logrus.NewEntry(logger)

	endpoint, err := sessionURL(*serverURL, *from, *to, *voice, *interim)
	if err != nil {
		log.WithError(err).Error("invalid server URL")
		return
	}

	var audio io.ReadCloser
	if *inputPath != "" {
		audio, err = os.Open(*inputPath)
	} else {
		audio, err = NewMicrophoneReader(defaultSampleRate)
	}
	if err != nil {
		log.WithError(err).Error("failed to open audio input")
		return
	}
	defer audio.Close()

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		log.WithError(err).Error("websocket dial failed")
		return
	}
	defer conn.Close()

	client := NewClient(conn, audio, log, os.Stdout, *similarity)

	// Setup output file if specified
	if *outputPath != "" {
		outputFile, err := os.Create(*outputPath)
		if err != nil {
			log.WithError(err).Error("failed to create output file")
			return
		}
		defer outputFile.Close()

		client.bufWriter = bufio.NewWriter(outputFile)
		defer client.bufWriter.Flush()
	}

	fmt.Println("Recording... Press Ctrl+C to stop.")
	client.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-client.done:
	}

	client.Close()
	fmt.Println("\nDone.")
}

// sessionURL adds the recognition parameters to the server URL.
func sessionURL(server, from, to, voice string, interim bool) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("from", from)
	q.Set("to", to)
	if voice != "" {
		q.Set("voice", voice)
	}
	if interim {
		q.Set("interim", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func NewClient(conn *websocket.Conn, audio io.Reader, log *logrus.Entry, out io.Writer, threshold float64) *Client {
	return &Client{
		conn:                conn,
		audioReader:         audio,
		log:                 log,
		out:                 out,
		msgBuffer:           NewMessageBuffer(10),
		similarityThreshold: threshold,
		done:                make(chan struct{}),
	}
}

func (c *Client) Start() {
	c.wg.Add(2)
	go c.reader()
	go c.writer()
}

func (c *Client) reader() {
	defer c.wg.Done()
	defer c.doneOnce.Do(func() { close(c.done) })

	for {
		var response stt.WebSocketResponse
		if err := c.conn.ReadJSON(&response); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.log.WithError(err).Warn("websocket read error")
			}
			return
		}

		if stop := c.handleResponse(response, time.Now()); stop {
			return
		}
	}
}

// handleResponse prints one server frame. It reports whether the session
// has ended.
func (c *Client) handleResponse(resp stt.WebSocketResponse, now time.Time) bool {
	switch resp.Type {
	case stt.FrameRecognized:
		if resp.Text == "" {
			return false
		}
		if !c.msgBuffer.AddIfNew(resp.Text, c.similarityThreshold) {
			c.log.WithField("text", resp.Text).Debug("skipping duplicate result")
			return false
		}
		c.print(formatResult(resp, now))
	case stt.FrameRecognizing:
		c.log.WithField("text", resp.Text).Debug("partial result")
		fmt.Fprintf(c.out, "... %s\n", resp.Text)
	case stt.FrameCanceled:
		if resp.Reason != "EndOfStream" {
			c.print(fmt.Sprintf("[%s] canceled: %s %s\n", now.Format("15:04:05"), resp.ErrorCode, resp.ErrorDetails))
		}
	case stt.FrameError:
		c.print(fmt.Sprintf("[%s] error: %s\n", now.Format("15:04:05"), resp.ErrorDetails))
		return true
	case stt.FrameSessionStopped:
		return true
	}
	return false
}

func (c *Client) print(line string) {
	fmt.Fprint(c.out, line)

	if c.bufWriter != nil {
		if _, err := c.bufWriter.WriteString(line); err != nil {
			c.log.WithError(err).Warn("failed to write to output file")
		} else {
			c.bufWriter.Flush()
		}
	}
}

// formatResult renders a recognized frame as
// "[15:04:05] text | de: ... | fr: ..." with languages sorted.
func formatResult(resp stt.WebSocketResponse, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", now.Format("15:04:05"), resp.Text)

	langs := make([]string, 0, len(resp.Translations))
	for lang := range resp.Translations {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	for _, lang := range langs {
		fmt.Fprintf(&b, " | %s: %s", lang, resp.Translations[lang])
	}
	b.WriteByte('\n')
	return b.String()
}

func (c *Client) writer() {
	defer c.wg.Done()

	buf := make([]byte, framesPerBuffer*2)
	for {
		n, err := c.audioReader.Read(buf)
		if n > 0 {
			request := stt.WebSocketRequest{
				Buf: append([]byte(nil), buf[:n]...),
			}
			if err := c.conn.WriteJSON(request); err != nil {
				if !errors.Is(err, net.ErrClosed) {
					c.log.WithError(err).Warn("websocket write error")
				}
				return
			}
		}
		if errors.Is(err, io.EOF) {
			if err := c.conn.WriteJSON(stt.WebSocketRequest{EOF: true}); err != nil && !errors.Is(err, net.ErrClosed) {
				c.log.WithError(err).Warn("websocket write error")
			}
			return
		}
		if err != nil {
			c.log.WithError(err).Error("audio read error")
			return
		}
	}
}

func (c *Client) Close() {
	c.log.Info("closing client")
	if c.conn != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.conn.Close()
	}
	c.wg.Wait()
}
