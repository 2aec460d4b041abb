package main

import (
	"github.com/gordonklaus/portaudio"
)

const (
	defaultSampleRate = 16000
	framesPerBuffer   = 1024
)

// frameSource captures one buffer of samples per Read.
type frameSource interface {
	Read() error
	Stop() error
	Close() error
}

// MicrophoneReader implements io.ReadCloser for capturing audio from the microphone.
// It yields 16-bit little-endian mono PCM.
type MicrophoneReader struct {
	stream  frameSource
	buffer  []int16
	pending []byte
	// terminate releases PortAudio once the stream is closed.
	terminate func() error
}

// NewMicrophoneReader opens the default input device at sampleRate and
// starts recording. The caller must call Close.
func NewMicrophoneReader(sampleRate int) (*MicrophoneReader, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}

	buffer := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(buffer), buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, err
	}

	return &MicrophoneReader{
		stream:    stream,
		buffer:    buffer,
		terminate: portaudio.Terminate,
	}, nil
}

// Read implements io.Reader. A captured frame that does not fit into p is
// returned by the following reads.
func (m *MicrophoneReader) Read(p []byte) (int, error) {
	if len(m.pending) == 0 {
		if err := m.stream.Read(); err != nil {
			return 0, err
		}
		m.pending = int16SliceToByteSlice(m.buffer)
	}

	n := copy(p, m.pending)
	m.pending = m.pending[n:]
	return n, nil
}

// Close implements io.Closer. It stops the audio stream, closes it, and terminates PortAudio.
func (m *MicrophoneReader) Close() error {
	var err error
	if m.stream != nil {
		if stopErr := m.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := m.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if m.terminate != nil {
		if termErr := m.terminate(); termErr != nil && err == nil {
			err = termErr
		}
	}
	return err
}

// int16SliceToByteSlice converts a slice of int16 audio samples to a byte slice
// using little-endian encoding. Each int16 sample is converted to 2 bytes.
func int16SliceToByteSlice(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, v := range in {
		// little-endian
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}
