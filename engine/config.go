package engine

import (
	"io"
	"strings"
)

// TranslationConfig holds provider-agnostic configuration for translation
// recognizers.
type TranslationConfig struct {
	// SpeechRecognitionLanguage is the spoken language in BCP-47 format (e.g., "en-US").
	SpeechRecognitionLanguage string

	// TargetLanguages are the languages to translate into.
	TargetLanguages []string

	// VoiceName selects the voice used to synthesize translations. Empty
	// disables synthesis.
	VoiceName string

	// SubscriptionKey and AuthorizationToken authenticate against the
	// service. Engines decide which one they honour.
	SubscriptionKey    string
	AuthorizationToken string

	// SampleRate is the audio sample rate in Hz (e.g., 16000)
	SampleRate int

	// InterimResults indicates whether to raise recognizing events
	InterimResults bool

	// Extensions allows engines to specify additional configuration options
	// using a map of key-value pairs specific to their implementation
	Extensions map[string]string
}

// Properties returns a property collection seeded from the config.
func (c *TranslationConfig) Properties() *PropertyCollection {
	props := NewPropertyCollection()
	props.set(SpeechServiceConnectionRecoLanguage, c.SpeechRecognitionLanguage)
	props.set(SpeechServiceConnectionTranslationToLanguages, strings.Join(c.TargetLanguages, ","))
	props.set(SpeechServiceConnectionTranslationVoice, c.VoiceName)
	props.set(SpeechServiceConnectionKey, c.SubscriptionKey)
	props.set(SpeechServiceAuthorizationToken, c.AuthorizationToken)
	for k, v := range c.Extensions {
		props.SetPropertyByName(k, v)
	}
	return props
}

// AudioConfig describes where an engine reads audio from.
type AudioConfig struct {
	// Stream yields 16-bit little-endian PCM. Engines read it until io.EOF.
	Stream io.Reader

	// ChunkSize is the number of bytes sent to the service per write.
	// Zero selects DefaultChunkSize.
	ChunkSize int
}

// DefaultChunkSize is 100ms of 16kHz mono 16-bit PCM.
const DefaultChunkSize = 3200

// NewAudioConfigFromStream returns an AudioConfig reading from r.
func NewAudioConfigFromStream(r io.Reader) *AudioConfig {
	return &AudioConfig{Stream: r}
}

// Chunk returns the effective chunk size.
func (a *AudioConfig) Chunk() int {
	if a == nil || a.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return a.ChunkSize
}
