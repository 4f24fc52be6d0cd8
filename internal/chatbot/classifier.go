package chatbot

import "context"

// Classification is the model's reading of a symptom description.
type Classification struct {
	Intent        string   `json:"intent"` // "triage", "find_doctor", "other"
	Symptoms      []string `json:"symptoms"`
	Disease       string   `json:"disease"`
	Location      string   `json:"location"`
	SpecialtyHint string   `json:"specialty_hint"`
}

// Classifier turns free-text symptoms into a structured classification.
// Implementations may be slow or flaky; callers bound them with a context
// deadline and fall back to the rule table.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
}
