package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/studybot/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generator produces study materials by sending the flashcards, summary and
// quiz prompts concurrently. Either all three succeed or none are used.
type Generator struct {
	chain  *Chain
	logger *slog.Logger
	newID  func() string
}

type GeneratorOptions struct {
	Logger *slog.Logger
	// NewID defaults to uuid.NewString.
	NewID func() string
}

func NewGenerator(providers []Provider, opts GeneratorOptions) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Generator{
		chain:  NewChain(providers, opts.Logger),
		logger: opts.Logger,
		newID:  opts.NewID,
	}
}

func (g *Generator) Len() int {
	return g.chain.Len()
}

func (g *Generator) Names() []string {
	return g.chain.Names()
}

// Without returns a generator that skips the named providers.
func (g *Generator) Without(names ...string) *Generator {
	return &Generator{chain: g.chain.Without(names...), logger: g.logger, newID: g.newID}
}

// UsesProxy reports whether materials from m counted against the free tier.
func UsesProxy(m *models.StudyMaterials) bool {
	return m != nil && m.Metadata.Source == models.SourceProxyAPI
}

// Generate implements synth.Remote. Every failure wraps
// ErrRemoteGenerationFailed.
func (g *Generator) Generate(ctx context.Context, text, title string) (*models.StudyMaterials, error) {
	if g.chain.Len() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrRemoteGenerationFailed, ErrNoProviders)
	}

	var (
		mu         sync.Mutex
		cards      []models.Flashcard
		summary    map[models.DetailLevel]models.Summary
		quiz       []models.QuizQuestion
		cardsFrom  Provider
		usedSource = map[string]bool{}
	)
	// IDs are drawn under mu so injected sequential generators stay safe.
	newID := func() string {
		mu.Lock()
		defer mu.Unlock()
		return g.newID()
	}
	record := func(p Provider) {
		mu.Lock()
		usedSource[p.Source()] = true
		mu.Unlock()
	}

	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		p, err := g.chain.Do(ectx, Request{Kind: KindFlashcards, Prompt: flashcardsPrompt(text, title)}, func(raw string) error {
			c, err := parseFlashcards(raw, newID)
			cards = c
			return err
		})
		if err != nil {
			return err
		}
		cardsFrom = p
		record(p)
		return nil
	})
	eg.Go(func() error {
		p, err := g.chain.Do(ectx, Request{Kind: KindSummary, Prompt: summaryPrompt(text, title)}, func(raw string) error {
			s, err := parseSummary(raw)
			summary = s
			return err
		})
		if err != nil {
			return err
		}
		record(p)
		return nil
	})
	eg.Go(func() error {
		p, err := g.chain.Do(ectx, Request{Kind: KindQuiz, Prompt: quizPrompt(text, title)}, func(raw string) error {
			q, err := parseQuiz(raw, newID)
			quiz = q
			return err
		})
		if err != nil {
			return err
		}
		record(p)
		return nil
	})

	if err := eg.Wait(); err != nil {
		g.logger.Warn("remote generation failed",
			"title", title,
			"error_type", ClassifyError(err),
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrRemoteGenerationFailed, err)
	}

	m := &models.StudyMaterials{
		Summary:    summary,
		Flashcards: cards,
		Quiz:       quiz,
		Metadata: models.StudyMetadata{
			Source:   cardsFrom.Source(),
			Provider: cardsFrom.Name(),
		},
	}
	if usedSource[models.SourceProxyAPI] {
		m.Metadata.Source = models.SourceProxyAPI
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("%w: no valid flashcards or quiz questions", ErrRemoteGenerationFailed)
	}
	return m, nil
}
