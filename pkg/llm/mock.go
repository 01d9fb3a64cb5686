package llm

import (
	"context"
	"fmt"

	"github.com/dtnitsch/studybot/models"
)

// MockProvider answers every prompt with fixed JSON. Useful offline and in
// tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string   { return ProviderMock }
func (m *MockProvider) Source() string { return models.SourceMockAPI }

func (m *MockProvider) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	switch req.Kind {
	case KindFlashcards:
		return `[
  {"question": "What does this material cover?", "answer": "The main ideas of the source text.", "difficulty": "easy"},
  {"question": "Why review with flashcards?", "answer": "Spaced recall strengthens memory.", "difficulty": "medium"}
]`, nil
	case KindSummary:
		return `{"text": "Deterministic mock summary of the source text.", "keyPoints": ["Mock point one", "Mock point two"]}`, nil
	case KindQuiz:
		return `[
  {"question": "This summary was produced by a mock provider.", "type": "true-false", "options": ["True", "False"], "correctAnswer": 0, "difficulty": "easy"},
  {"question": "Which provider answered?", "type": "multiple-choice", "options": ["mock", "anthropic", "openai", "proxy"], "correctAnswer": 0, "difficulty": "easy"}
]`, nil
	default:
		return "", fmt.Errorf("mock: unknown prompt kind %q", req.Kind)
	}
}
