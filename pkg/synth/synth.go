// Package synth turns extracted text into study materials, preferring a
// remote generator and falling back to local templates.
package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/studybot/models"
)

// ErrFallbackExhausted means neither path produced a flashcard or a quiz item.
var ErrFallbackExhausted = errors.New("materials could not be generated")

// Remote generates materials from sanitized text. Any error sends the
// synthesizer to the local fallback.
type Remote interface {
	Generate(ctx context.Context, text, title string) (*models.StudyMaterials, error)
}

type Synthesizer struct {
	remote   Remote
	fallback *Fallback
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a Synthesizer. remote may be nil, in which case only the
// fallback runs.
func New(remote Remote, fallback *Fallback, logger *slog.Logger) *Synthesizer {
	if fallback == nil {
		fallback = NewFallback(FallbackOptions{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		remote:   remote,
		fallback: fallback,
		logger:   logger,
		now:      fallback.now,
	}
}

// HasRemote reports whether Generate will try remote generation first.
func (s *Synthesizer) HasRemote() bool {
	return s.remote != nil
}

// WithRemote returns a copy that uses remote instead. A nil remote leaves
// only the fallback.
func (s *Synthesizer) WithRemote(remote Remote) *Synthesizer {
	c := *s
	c.remote = remote
	return &c
}

// Generate tries the remote path, then the fallback. The returned materials
// are owned by the caller.
func (s *Synthesizer) Generate(ctx context.Context, text, title string) (*models.StudyMaterials, error) {
	if s.remote == nil {
		return s.GenerateLocal(text, title)
	}

	clean := Sanitize(text)
	m, err := s.remote.Generate(ctx, clean, title)
	switch {
	case err != nil:
	case m == nil || m.IsEmpty():
		err = errors.New("remote returned no flashcards or quiz")
	default:
		err = m.Validate()
	}
	if err != nil {
		s.logger.Warn("remote generation failed, using template fallback",
			"title", title,
			"error", err)
		return s.GenerateLocal(text, title)
	}

	m.Metadata.Title = title
	m.Metadata.CharacterCount = len(clean)
	m.Metadata.SentenceCount = len(Sentences(clean))
	m.Metadata.GeneratedAt = s.now().UTC()
	s.logger.Info("generated study materials",
		"source", m.Metadata.Source,
		"provider", m.Metadata.Provider,
		"flashcards", len(m.Flashcards),
		"quiz", len(m.Quiz))
	return m, nil
}

// GenerateLocal runs only the template fallback.
func (s *Synthesizer) GenerateLocal(text, title string) (*models.StudyMaterials, error) {
	m := s.fallback.Generate(text, title)
	if m.IsEmpty() {
		return nil, ErrFallbackExhausted
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("fallback produced invalid materials: %w", err)
	}
	s.logger.Info("generated study materials",
		"source", m.Metadata.Source,
		"flashcards", len(m.Flashcards),
		"quiz", len(m.Quiz))
	return m, nil
}
