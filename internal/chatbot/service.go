package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docconnect/platform/internal/doctors"
	"github.com/docconnect/platform/internal/observability/metrics"
	"github.com/docconnect/platform/pkg/logging"
)

// Disclaimer accompanies every triage response.
const Disclaimer = "⚠️ This tool does not provide medical advice. For emergencies, call your local emergency number."

// Result is the triage verdict returned to the patient.
type Result struct {
	Symptoms    string           `json:"symptoms"`
	Suggestions []string         `json:"suggestions"`
	Message     string           `json:"message"`
	Explain     string           `json:"explain"`
	Doctors     []doctors.Doctor `json:"doctors"`
	Disclaimer  string           `json:"disclaimer"`
}

// Service runs the symptom triage flow: classify, map to specialties, and
// look up matching doctors. The classifier is optional and time-boxed; the
// rule table always has the final word on producing an answer.
type Service struct {
	classifier Classifier
	directory  doctors.Directory
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
	timeout    time.Duration
}

// NewService wires up the triage service. classifier may be nil.
func NewService(classifier Classifier, directory doctors.Directory, m *metrics.BookingMetrics, logger *logging.Logger, timeout time.Duration) *Service {
	if directory == nil {
		panic("chatbot: directory required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Service{
		classifier: classifier,
		directory:  directory,
		metrics:    m,
		logger:     logger,
		timeout:    timeout,
	}
}

// Triage suggests specialties and doctors for a symptom description.
func (s *Service) Triage(ctx context.Context, symptoms string) (*Result, error) {
	text := strings.TrimSpace(symptoms)
	if text == "" {
		return nil, fmt.Errorf("symptoms required")
	}

	ai := s.classify(ctx, text)

	suggestions := s.suggest(text, ai)
	location := ""
	if ai != nil {
		location = ai.Location
	}

	docs := s.findDoctors(ctx, suggestions, location)

	return &Result{
		Symptoms:    text,
		Suggestions: suggestions,
		Message:     englishMessage(suggestions),
		Explain:     hinglishMessage(suggestions),
		Doctors:     docs,
		Disclaimer:  Disclaimer,
	}, nil
}

// classify runs the model under a deadline. Any failure, including the
// deadline, degrades to rules-only triage.
func (s *Service) classify(ctx context.Context, text string) *Classification {
	if s.classifier == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ai, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.metrics.ObserveClassifierFallback()
		s.logger.Warn("symptom classifier unavailable", "error", err)
		return nil
	}
	return ai
}

// suggest unions the rule verdict with the model's hint, keeping rule-first
// order, and falls back to General Medicine.
func (s *Service) suggest(text string, ai *Classification) []string {
	var suggestions []string
	seen := map[string]struct{}{}
	add := func(spec string) {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			return
		}
		if _, ok := seen[spec]; ok {
			return
		}
		seen[spec] = struct{}{}
		suggestions = append(suggestions, spec)
	}

	add(RuleSuggestSpecialty(text))
	if ai != nil {
		add(ai.SpecialtyHint)
	}
	if len(suggestions) == 0 {
		add(DefaultSpecialty)
	}
	return suggestions
}

// findDoctors merges directory results across suggested specialties,
// deduplicated by id. Lookup failures degrade to an empty list.
func (s *Service) findDoctors(ctx context.Context, suggestions []string, location string) []doctors.Doctor {
	merged := []doctors.Doctor{}
	seen := map[int64]struct{}{}
	for _, spec := range suggestions {
		docs, err := s.directory.Search(ctx, doctors.SearchFilter{Specialty: spec, Location: location})
		if err != nil {
			s.logger.Warn("doctor lookup failed during triage", "specialty", spec, "error", err)
			continue
		}
		for _, doc := range docs {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			merged = append(merged, doc)
		}
	}
	return merged
}

func englishMessage(suggestions []string) string {
	if len(suggestions) == 1 {
		return fmt.Sprintf("Based on your symptoms, you should see a %s specialist.", suggestions[0])
	}
	return fmt.Sprintf("Based on your symptoms, you may need to consult: %s specialist.", strings.Join(suggestions, " or "))
}

func hinglishMessage(suggestions []string) string {
	if len(suggestions) == 1 {
		return fmt.Sprintf("Lagta hai aapko %s specialist se milna chahiye. Yeh doctor aapke symptoms ke liye best hain!", suggestions[0])
	}
	return fmt.Sprintf("Lagta hai aapko %s specialist se milna chahiye. Inme se koi bhi aapke case me sahi rahega.", strings.Join(suggestions, " ya "))
}
