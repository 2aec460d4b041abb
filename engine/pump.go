package engine

import (
	"context"
	"errors"
	"io"
	"sync"
)

// Pump reads an audio stream chunk by chunk on its own goroutine. It
// outlives individual recognition sessions so that a blocked read never
// holds up a stop.
type Pump struct {
	audio *AudioConfig

	startOnce sync.Once
	chunks    chan []byte
	err       error

	closeOnce sync.Once
	quit      chan struct{}
}

// NewPump creates a pump over audio. Reading starts on the first Next.
func NewPump(audio *AudioConfig) *Pump {
	return &Pump{
		audio:  audio,
		chunks: make(chan []byte),
		quit:   make(chan struct{}),
	}
}

// Next returns the next chunk. It returns io.EOF once the stream is
// exhausted and ctx.Err() if ctx is done first.
func (p *Pump) Next(ctx context.Context) ([]byte, error) {
	p.startOnce.Do(func() {
		go p.run()
	})
	select {
	case chunk, ok := <-p.chunks:
		if !ok {
			return nil, p.err
		}
		return chunk, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close stops the pump. A read in progress is abandoned.
func (p *Pump) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
}

func (p *Pump) run() {
	defer close(p.chunks)

	if p.audio == nil || p.audio.Stream == nil {
		p.err = io.EOF
		return
	}

	for {
		buf := make([]byte, p.audio.Chunk())
		n, err := io.ReadFull(p.audio.Stream, buf)
		if n > 0 {
			select {
			case p.chunks <- buf[:n]:
			case <-p.quit:
				p.err = ErrReleased
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				err = io.EOF
			}
			p.err = err
			return
		}
	}
}
