// Package models defines data structures shared by the extractor, the
// synthesizer, the store and the CLI.
package models

import (
	"errors"
	"time"
)

const (
	MaxFlashcards    = 50
	MaxQuizQuestions = 10
	MaxKeyPoints     = 5
)

// Generation sources recorded in StudyMetadata.Source.
const (
	SourceClaudeAPI        = "claude-api"
	SourceOpenAIAPI        = "openai-api"
	SourceProxyAPI         = "proxy-api"
	SourceMockAPI          = "mock-api"
	SourceTemplateFallback = "template-fallback"
)

// Quiz question types.
const (
	QuestionMultipleChoice = "multiple-choice"
	QuestionTrueFalse      = "true-false"
)

// Difficulty labels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Summary is one detail level of a summary.
type Summary struct {
	Text      string   `json:"text" yaml:"text"`
	KeyPoints []string `json:"key_points" yaml:"key_points"`
}

type Flashcard struct {
	ID         string `json:"id" yaml:"id"`
	Question   string `json:"question" yaml:"question"`
	Answer     string `json:"answer" yaml:"answer"`
	Category   string `json:"category" yaml:"category"`
	Difficulty string `json:"difficulty" yaml:"difficulty"`
	Known      bool   `json:"known" yaml:"known"`
}

type QuizQuestion struct {
	ID                 string   `json:"id" yaml:"id"`
	Question           string   `json:"question" yaml:"question"`
	Type               string   `json:"type" yaml:"type"`
	Options            []string `json:"options" yaml:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index" yaml:"correct_answer_index"`
	Difficulty         string   `json:"difficulty" yaml:"difficulty"`
}

// CorrectAnswer returns the option text at CorrectAnswerIndex, or "" if the
// index is out of range.
func (q QuizQuestion) CorrectAnswer() string {
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectAnswerIndex]
}

type StudyMetadata struct {
	Title          string    `json:"title" yaml:"title"`
	CharacterCount int       `json:"character_count" yaml:"character_count"`
	SentenceCount  int       `json:"sentence_count,omitempty" yaml:"sentence_count,omitempty"`
	GeneratedAt    time.Time `json:"generated_at" yaml:"generated_at"`
	Source         string    `json:"source" yaml:"source"`
	Provider       string    `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// StudyMaterials is the synthesizer output for one piece of text.
type StudyMaterials struct {
	Summary    map[DetailLevel]Summary `json:"summary" yaml:"summary"`
	Flashcards []Flashcard             `json:"flashcards" yaml:"flashcards"`
	Quiz       []QuizQuestion          `json:"quiz" yaml:"quiz"`
	Metadata   StudyMetadata           `json:"metadata" yaml:"metadata"`
}

// Validate checks the size and identity invariants every StudyMaterials value
// must hold regardless of which generation path produced it.
func (m *StudyMaterials) Validate() error {
	if len(m.Flashcards) > MaxFlashcards {
		return errors.New("too many flashcards")
	}
	if len(m.Quiz) > MaxQuizQuestions {
		return errors.New("too many quiz questions")
	}
	seen := make(map[string]struct{}, len(m.Flashcards)+len(m.Quiz))
	for _, c := range m.Flashcards {
		if _, dup := seen[c.ID]; dup || c.ID == "" {
			return errors.New("flashcard id missing or duplicated: " + c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	for _, q := range m.Quiz {
		if _, dup := seen[q.ID]; dup || q.ID == "" {
			return errors.New("quiz id missing or duplicated: " + q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return errors.New("quiz answer index out of range: " + q.ID)
		}
	}
	return nil
}

// IsEmpty reports whether there is nothing to study.
func (m *StudyMaterials) IsEmpty() bool {
	return len(m.Flashcards) == 0 && len(m.Quiz) == 0
}

// StudySet is a persisted bundle of study materials tied to one source text.
type StudySet struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	SourceURL    string   `json:"source_url" yaml:"source_url"`
	Content      string   `json:"content" yaml:"content"`
	IsSelection  bool     `json:"is_selection" yaml:"is_selection"`
	WasTruncated bool     `json:"was_truncated" yaml:"was_truncated"`
	Language     string   `json:"language,omitempty" yaml:"language,omitempty"`
	Keywords     []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	StudyMaterials `yaml:",inline"`

	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	LastStudied  *time.Time `json:"last_studied,omitempty" yaml:"last_studied,omitempty"`
	CardsStudied int        `json:"cards_studied" yaml:"cards_studied"`
	CardsCorrect int        `json:"cards_correct" yaml:"cards_correct"`
}

// ValidateImport checks the minimum shape of a study set read from an export
// file.
func (s *StudySet) ValidateImport() error {
	if s.Title == "" {
		return errors.New("invalid study set: missing title")
	}
	if s.Flashcards == nil {
		return errors.New("invalid study set: missing flashcards")
	}
	return nil
}

// FlashcardPatch is a partial update to a stored flashcard. Nil fields are
// left untouched.
type FlashcardPatch struct {
	Known    *bool   `json:"known,omitempty"`
	Question *string `json:"question,omitempty"`
	Answer   *string `json:"answer,omitempty"`
}

// Usage reports remote-generation consumption for the current month.
type Usage struct {
	Month     string    `json:"month" yaml:"month"`
	Count     int       `json:"count" yaml:"count"`
	Limit     int       `json:"limit" yaml:"limit"`
	Remaining int       `json:"remaining" yaml:"remaining"`
	ResetAt   time.Time `json:"reset_at" yaml:"reset_at"`
}

func (u Usage) LimitReached() bool {
	return u.Limit > 0 && u.Remaining <= 0
}

type Stats struct {
	TotalSets    int      `json:"total_sets" yaml:"total_sets"`
	TotalCards   int      `json:"total_cards" yaml:"total_cards"`
	KnownCards   int      `json:"known_cards" yaml:"known_cards"`
	CardsStudied int      `json:"cards_studied" yaml:"cards_studied"`
	CardsCorrect int      `json:"cards_correct" yaml:"cards_correct"`
	TopKeywords  []string `json:"top_keywords,omitempty" yaml:"top_keywords,omitempty"`
}
