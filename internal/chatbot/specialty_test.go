package chatbot

import "testing"

func TestRuleSuggestSpecialty(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"I have chest pain since morning", "Cardiology"},
		{"high BP and palpitations", "Cardiology"},
		{"fever and sore throat", "General Medicine"},
		{"itchy skin rash", "Dermatology"},
		{"my baby has colic", "Pediatrics"},
		{"knee hurts after a fall", "Orthopedics"},
		{"wheezing at night", "Pulmonology"},
		{"terrible migraine", "Neurology"},
		{"feeling a bit off", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := RuleSuggestSpecialty(tc.text); got != tc.want {
			t.Errorf("RuleSuggestSpecialty(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	// "chest pain" (Cardiology) appears before "cough" (General Medicine).
	if got := RuleSuggestSpecialty("chest pain and cough"); got != "Cardiology" {
		t.Errorf("expected Cardiology, got %q", got)
	}
}

func TestParseClassification(t *testing.T) {
	raw := "```json\n{\"intent\":\"triage\",\"symptoms\":[\"fever\"],\"specialty_hint\":\"General Medicine\"}\n```"
	c, err := parseClassification(raw)
	if err != nil {
		t.Fatalf("parseClassification failed: %v", err)
	}
	if c.Intent != "triage" || c.SpecialtyHint != "General Medicine" {
		t.Fatalf("unexpected classification %+v", c)
	}

	if _, err := parseClassification("no json here"); err == nil {
		t.Error("expected error for output without JSON")
	}
	if _, err := parseClassification("{broken"); err == nil {
		t.Error("expected error for truncated JSON")
	}
}
