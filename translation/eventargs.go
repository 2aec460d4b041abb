package translation

import (
	"maps"
	"slices"
	"time"

	"github.com/agnivade/stt_translation/engine"
)

type (
	ResultReason          = engine.ResultReason
	CancellationReason    = engine.CancellationReason
	CancellationErrorCode = engine.CancellationErrorCode
)

// TranslationRecognitionResult is the outcome of one recognized utterance
// together with its translations.
type TranslationRecognitionResult struct {
	ResultID string
	Reason   ResultReason
	Text     string
	Offset   time.Duration
	Duration time.Duration
	// ErrorDetails is set when Reason is engine.CanceledReason.
	ErrorDetails string
	// ErrorJSON is the error payload returned by the service, if any.
	ErrorJSON string

	translations map[string]string
	properties   map[string]string
}

func newTranslationRecognitionResult(raw *engine.RecognitionResult) TranslationRecognitionResult {
	if raw == nil {
		return TranslationRecognitionResult{Reason: engine.NoMatch}
	}
	return TranslationRecognitionResult{
		ResultID:     raw.ResultID,
		Reason:       raw.Reason,
		Text:         raw.Text,
		Offset:       raw.Offset,
		Duration:     raw.Duration,
		ErrorDetails: raw.ErrorDetails,
		ErrorJSON:    raw.ErrorJSON,
		translations: maps.Clone(raw.Translations),
		properties:   maps.Clone(raw.Properties),
	}
}

// Translations returns a copy of the translations keyed by target language.
func (r TranslationRecognitionResult) Translations() map[string]string {
	out := make(map[string]string, len(r.translations))
	for lang, text := range r.translations {
		out[lang] = text
	}
	return out
}

// Properties returns a snapshot of the result's properties, such as the raw
// service response under engine.SpeechServiceResponseJSONResult.
func (r TranslationRecognitionResult) Properties() map[string]string {
	out := make(map[string]string, len(r.properties))
	maps.Copy(out, r.properties)
	return out
}

// Property returns the property id of the result, or "" when unset.
func (r TranslationRecognitionResult) Property(id engine.PropertyID) string {
	return r.properties[id.String()]
}

// Translation returns the translation into lang.
func (r TranslationRecognitionResult) Translation(lang string) (string, bool) {
	text, ok := r.translations[lang]
	return text, ok
}

// SessionEventArgs is raised when a recognition session starts or stops.
type SessionEventArgs struct {
	SessionID string
}

// RecognitionEventArgs is raised when the start or end of speech is detected.
type RecognitionEventArgs struct {
	SessionEventArgs
	Offset time.Duration
}

// TranslationRecognitionEventArgs carries an intermediate or final result.
type TranslationRecognitionEventArgs struct {
	RecognitionEventArgs
	Result TranslationRecognitionResult
}

func newTranslationRecognitionEventArgs(ev *engine.NativeEvent) TranslationRecognitionEventArgs {
	return TranslationRecognitionEventArgs{
		RecognitionEventArgs: newRecognitionEventArgs(ev),
		Result:               newTranslationRecognitionResult(ev.Result),
	}
}

// TranslationRecognitionCanceledEventArgs describes why recognition was canceled.
type TranslationRecognitionCanceledEventArgs struct {
	TranslationRecognitionEventArgs
	Reason       CancellationReason
	ErrorCode    CancellationErrorCode
	ErrorDetails string
}

func newTranslationRecognitionCanceledEventArgs(ev *engine.NativeEvent) TranslationRecognitionCanceledEventArgs {
	args := TranslationRecognitionCanceledEventArgs{
		TranslationRecognitionEventArgs: newTranslationRecognitionEventArgs(ev),
		Reason:                          engine.CancelError,
		ErrorCode:                       engine.RuntimeError,
	}
	if c := ev.Cancellation; c != nil {
		args.Reason = c.Reason
		args.ErrorCode = c.ErrorCode
		args.ErrorDetails = c.ErrorDetails
	}
	args.Result.Reason = engine.CanceledReason
	if args.Result.ErrorDetails == "" {
		args.Result.ErrorDetails = args.ErrorDetails
	}
	return args
}

// TranslationSynthesisResult carries synthesized audio of a translation. An
// empty audio with reason SynthesizingAudioCompleted marks the end of an
// utterance's audio.
type TranslationSynthesisResult struct {
	Reason ResultReason

	audio []byte
}

// Audio returns a copy of the synthesized audio.
func (r TranslationSynthesisResult) Audio() []byte {
	return slices.Clone(r.audio)
}

// TranslationSynthesisEventArgs carries a synthesis result.
type TranslationSynthesisEventArgs struct {
	SessionEventArgs
	Result TranslationSynthesisResult
}

func newTranslationSynthesisEventArgs(ev *engine.NativeEvent) TranslationSynthesisEventArgs {
	args := TranslationSynthesisEventArgs{
		SessionEventArgs: SessionEventArgs{SessionID: ev.SessionID},
	}
	if s := ev.Synthesis; s != nil {
		args.Result = TranslationSynthesisResult{
			Reason: s.Reason,
			audio:  slices.Clone(s.Audio),
		}
	}
	return args
}

func newRecognitionEventArgs(ev *engine.NativeEvent) RecognitionEventArgs {
	return RecognitionEventArgs{
		SessionEventArgs: SessionEventArgs{SessionID: ev.SessionID},
		Offset:           ev.Offset,
	}
}
