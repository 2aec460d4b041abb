package engine_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agnivade/stt_translation/engine"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("device unplugged")
}

func TestPump(t *testing.T) {
	t.Run("chunks until eof", func(t *testing.T) {
		p := engine.NewPump(&engine.AudioConfig{
			Stream:    bytes.NewReader(make([]byte, 250)),
			ChunkSize: 100,
		})
		defer p.Close()

		var sizes []int
		for {
			chunk, err := p.Next(context.Background())
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			sizes = append(sizes, len(chunk))
		}
		assert.Equal(t, []int{100, 100, 50}, sizes)

		_, err := p.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("no audio", func(t *testing.T) {
		p := engine.NewPump(nil)
		_, err := p.Next(context.Background())
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("read error", func(t *testing.T) {
		p := engine.NewPump(engine.NewAudioConfigFromStream(failingReader{}))
		_, err := p.Next(context.Background())
		assert.ErrorContains(t, err, "device unplugged")
	})

	t.Run("blocked read honours context", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		p := engine.NewPump(engine.NewAudioConfigFromStream(pr))
		defer p.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := p.Next(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
