package engine

import (
	"context"
	"fmt"
)

// Translator translates recognized text. Engines whose service only does
// speech-to-text use one to fill RecognitionResult.Translations.
type Translator interface {
	// Translate returns one translation per target language, keyed by the
	// language as given in to.
	Translate(ctx context.Context, text, from string, to []string) (map[string]string, error)
}

// Translate fills res.Translations using t. A nil translator or an empty
// text leaves the result untouched.
func Translate(ctx context.Context, t Translator, cfg *TranslationConfig, res *RecognitionResult) error {
	if t == nil || res == nil || res.Text == "" || len(cfg.TargetLanguages) == 0 {
		return nil
	}

	translations, err := t.Translate(ctx, res.Text, cfg.SpeechRecognitionLanguage, cfg.TargetLanguages)
	if err != nil {
		return fmt.Errorf("translate %q: %w", res.Text, err)
	}

	res.Translations = make(map[string]string, len(translations))
	for lang, text := range translations {
		res.Translations[lang] = text
	}
	if res.Reason == RecognizedSpeech {
		res.Reason = TranslatedSpeech
	} else if res.Reason == RecognizingSpeech {
		res.Reason = TranslatingSpeech
	}
	return nil
}
