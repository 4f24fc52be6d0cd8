package chatbot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const classifierSystemPrompt = `You are a medical triage helper for India. Return STRICT JSON:
{ "intent": "triage"|"find_doctor"|"other",
  "symptoms": string[],
  "disease": string|null,
  "location": string|null,
  "specialty_hint": string|null }
No extra text. Never provide medical advice.`

// GeminiClassifier implements Classifier using Google's Gemini API.
type GeminiClassifier struct {
	client  *genai.Client
	modelID string
}

// NewGeminiClassifier creates a new Gemini-backed classifier.
func NewGeminiClassifier(ctx context.Context, apiKey, modelID string) (*GeminiClassifier, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("chatbot: gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("chatbot: failed to create gemini client: %w", err)
	}
	return &GeminiClassifier{client: client, modelID: modelID}, nil
}

// Classify sends the symptom text to Gemini and parses the JSON verdict.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	model := c.client.GenerativeModel(c.modelID)
	model.SetTemperature(0.2)
	model.SystemInstruction = genai.NewUserContent(genai.Text(classifierSystemPrompt))

	resp, err := model.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("chatbot: gemini request failed: %w", err)
	}

	raw := collectText(resp)
	return parseClassification(raw)
}

// Close releases the underlying API client.
func (c *GeminiClassifier) Close() error {
	return c.client.Close()
}

func collectText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}

// parseClassification tolerates prose around the JSON object; models wrap
// their answer in markdown fences often enough.
func parseClassification(raw string) (*Classification, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("chatbot: no JSON object in model output")
	}

	var c Classification
	if err := json.Unmarshal([]byte(raw[start:end+1]), &c); err != nil {
		return nil, fmt.Errorf("chatbot: malformed model output: %w", err)
	}
	return &c, nil
}
