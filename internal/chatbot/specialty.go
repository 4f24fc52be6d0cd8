package chatbot

import "strings"

// DefaultSpecialty is suggested when nothing else matches.
const DefaultSpecialty = "General Medicine"

type specialtyRule struct {
	keys  []string
	value string
}

// Rule order matters: the first matching row wins.
var specialtyRules = []specialtyRule{
	{keys: []string{"chest pain", "shortness of breath", "palpitations", "bp"}, value: "Cardiology"},
	{keys: []string{"fever", "cough", "cold", "throat", "flu"}, value: "General Medicine"},
	{keys: []string{"skin", "rash", "acne", "itch", "eczema"}, value: "Dermatology"},
	{keys: []string{"child", "kids", "pediatric", "baby", "infant"}, value: "Pediatrics"},
	{keys: []string{"bone", "fracture", "knee", "back pain", "sprain"}, value: "Orthopedics"},
	{keys: []string{"breathless", "asthma", "lung", "wheezing"}, value: "Pulmonology"},
	{keys: []string{"headache", "migraine", "seizure", "numbness", "stroke"}, value: "Neurology"},
}

// RuleSuggestSpecialty maps free-text symptoms onto a specialty using plain
// keyword rules. Returns empty when nothing matches.
func RuleSuggestSpecialty(text string) string {
	t := strings.ToLower(text)
	for _, rule := range specialtyRules {
		for _, key := range rule.keys {
			if strings.Contains(t, key) {
				return rule.value
			}
		}
	}
	return ""
}
