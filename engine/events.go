package engine

import (
	"fmt"
	"time"
)

// EventKind enumerates the events an engine raises.
type EventKind int

const (
	Recognizing EventKind = iota
	Recognized
	Canceled
	Synthesizing
	SessionStarted
	SessionStopped
	SpeechStartDetected
	SpeechEndDetected
)

// EventKinds lists every kind in declaration order.
var EventKinds = []EventKind{
	Recognizing,
	Recognized,
	Canceled,
	Synthesizing,
	SessionStarted,
	SessionStopped,
	SpeechStartDetected,
	SpeechEndDetected,
}

func (k EventKind) String() string {
	switch k {
	case Recognizing:
		return "recognizing"
	case Recognized:
		return "recognized"
	case Canceled:
		return "canceled"
	case Synthesizing:
		return "synthesizing"
	case SessionStarted:
		return "session_started"
	case SessionStopped:
		return "session_stopped"
	case SpeechStartDetected:
		return "speech_start_detected"
	case SpeechEndDetected:
		return "speech_end_detected"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ResultReason tells why a result was produced.
type ResultReason int

const (
	NoMatch ResultReason = iota
	CanceledReason
	RecognizingSpeech
	RecognizedSpeech
	TranslatingSpeech
	TranslatedSpeech
	SynthesizingAudio
	SynthesizingAudioCompleted
)

func (r ResultReason) String() string {
	switch r {
	case NoMatch:
		return "NoMatch"
	case CanceledReason:
		return "Canceled"
	case RecognizingSpeech:
		return "RecognizingSpeech"
	case RecognizedSpeech:
		return "RecognizedSpeech"
	case TranslatingSpeech:
		return "TranslatingSpeech"
	case TranslatedSpeech:
		return "TranslatedSpeech"
	case SynthesizingAudio:
		return "SynthesizingAudio"
	case SynthesizingAudioCompleted:
		return "SynthesizingAudioCompleted"
	default:
		return fmt.Sprintf("ResultReason(%d)", int(r))
	}
}

// CancellationReason tells why recognition was canceled.
type CancellationReason int

const (
	CancelError CancellationReason = iota + 1
	CancelEndOfStream
	CancelByUser
)

func (r CancellationReason) String() string {
	switch r {
	case CancelError:
		return "Error"
	case CancelEndOfStream:
		return "EndOfStream"
	case CancelByUser:
		return "CancelledByUser"
	default:
		return fmt.Sprintf("CancellationReason(%d)", int(r))
	}
}

// CancellationErrorCode classifies a cancellation caused by an error.
type CancellationErrorCode int

const (
	NoError CancellationErrorCode = iota
	AuthenticationFailure
	BadRequest
	TooManyRequests
	Forbidden
	ConnectionFailure
	ServiceTimeout
	ServiceError
	ServiceUnavailable
	RuntimeError
)

func (c CancellationErrorCode) String() string {
	switch c {
	case NoError:
		return "NoError"
	case AuthenticationFailure:
		return "AuthenticationFailure"
	case BadRequest:
		return "BadRequest"
	case TooManyRequests:
		return "TooManyRequests"
	case Forbidden:
		return "Forbidden"
	case ConnectionFailure:
		return "ConnectionFailure"
	case ServiceTimeout:
		return "ServiceTimeout"
	case ServiceError:
		return "ServiceError"
	case ServiceUnavailable:
		return "ServiceUnavailable"
	case RuntimeError:
		return "RuntimeError"
	default:
		return fmt.Sprintf("CancellationErrorCode(%d)", int(c))
	}
}

// RecognitionResult is the raw result of a recognition as reported by an engine.
type RecognitionResult struct {
	ResultID     string
	Reason       ResultReason
	Text         string
	Offset       time.Duration
	Duration     time.Duration
	Translations map[string]string
	// ErrorDetails is set when Reason is CanceledReason.
	ErrorDetails string
	// ErrorJSON is the error payload sent by the service, if any.
	ErrorJSON string
	// Properties holds per-result values keyed by property name.
	Properties map[string]string
}

// CancellationDetails describes a canceled recognition.
type CancellationDetails struct {
	Reason       CancellationReason
	ErrorCode    CancellationErrorCode
	ErrorDetails string
}

// SynthesisResult carries synthesized audio for a translation.
type SynthesisResult struct {
	Reason ResultReason
	Audio  []byte
}

// NativeEvent is the payload an engine hands to its listeners. Which fields
// are set depends on Kind.
type NativeEvent struct {
	Kind      EventKind
	SessionID string
	// Offset is set for recognition and speech detection events.
	Offset time.Duration
	// Result is set for Recognizing, Recognized and Canceled.
	Result *RecognitionResult
	// Cancellation is set for Canceled.
	Cancellation *CancellationDetails
	// Synthesis is set for Synthesizing.
	Synthesis *SynthesisResult
}
