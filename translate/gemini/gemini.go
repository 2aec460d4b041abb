// Package gemini translates recognized text with Google's Gemini models.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

const systemPrompt = "You are a professional interpreter. Translate the user's text from %s into each of these languages: %s. " +
	"Your response must be a single, valid JSON object whose keys are exactly those language codes and whose values are the translations. " +
	"Do not add explanations."

// generator is the part of genai.Models used by the translator.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Translator implements engine.Translator on top of the Gemini API.
type Translator struct {
	models generator
	model  string
	logger *logrus.Entry
}

// New creates a translator authenticated with apiKey.
func New(ctx context.Context, apiKey, model string, log *logrus.Entry) (*Translator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini translator requires api_key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return newTranslator(client.Models, model, log), nil
}

func newTranslator(models generator, model string, log *logrus.Entry) *Translator {
	if model == "" {
		model = DefaultModel
	}
	return &Translator{
		models: models,
		model:  model,
		logger: log.WithField("component", "translate.gemini"),
	}
}

// Translate returns the translations of text keyed by target language.
// Target languages equal to from get text unchanged.
func (t *Translator) Translate(ctx context.Context, text, from string, to []string) (map[string]string, error) {
	out := make(map[string]string, len(to))
	var pending []string
	for _, lang := range to {
		if sameLanguage(lang, from) {
			out[lang] = text
			continue
		}
		pending = append(pending, lang)
	}
	if len(pending) == 0 || strings.TrimSpace(text) == "" {
		for _, lang := range pending {
			out[lang] = text
		}
		return out, nil
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				genai.NewPartFromText(fmt.Sprintf(systemPrompt, from, strings.Join(pending, ", "))),
			},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	resp, err := t.models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	translated, err := parseTranslations(responseText(resp))
	if err != nil {
		return nil, err
	}
	for _, lang := range pending {
		v, ok := translated[lang]
		if !ok {
			t.logger.WithFields(logrus.Fields{
				"lang":  lang,
				"model": t.model,
			}).Warn("translation missing from model response")
			continue
		}
		out[lang] = v
	}
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	candidate := resp.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

func parseTranslations(raw string) (map[string]string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("gemini returned an empty response")
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal translations: %w", err)
	}
	return out, nil
}

// sameLanguage reports whether two language tags share a primary subtag,
// e.g. "en-US" and "en".
func sameLanguage(a, b string) bool {
	primary := func(tag string) string {
		tag, _, _ = strings.Cut(tag, "-")
		return strings.ToLower(tag)
	}
	return a != "" && primary(a) == primary(b)
}
