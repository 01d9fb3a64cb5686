// Package pipeline turns a page source into a saved study set: extract,
// synthesize, then persist.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dtnitsch/studybot/models"
	"github.com/dtnitsch/studybot/pkg/analytics"
	"github.com/dtnitsch/studybot/pkg/caching"
	"github.com/dtnitsch/studybot/pkg/extractor"
	"github.com/dtnitsch/studybot/pkg/llm"
	"github.com/dtnitsch/studybot/pkg/synth"
	"github.com/google/uuid"
)

// DefaultKeywords is how many keywords are stored per set.
const DefaultKeywords = 10

// Store is the persistence the pipeline needs.
type Store interface {
	SaveStudySet(set *models.StudySet) error
	GetUsage(limit int) (models.Usage, error)
	IncrementUsage(limit int) (models.Usage, error)
}

// ResultCache keeps remote generation results keyed by content.
type ResultCache interface {
	GetJSON(key string, v any) bool
	SetJSON(key string, v any) error
}

type Options struct {
	Extractor *extractor.Extractor
	Synth     *synth.Synthesizer
	// Generator is the remote path. Nil means template fallback only.
	Generator *llm.Generator
	Store     Store
	Cache     ResultCache
	// FreeTierLimit caps proxy generations per month. 0 means no cap.
	FreeTierLimit int
	Keywords      int
	Logger        *slog.Logger
	NewID         func() string
}

type Pipeline struct {
	extractor *extractor.Extractor
	synth     *synth.Synthesizer
	generator *llm.Generator
	store     Store
	cache     ResultCache
	limit     int
	keywords  int
	analytics *analytics.Analytics
	logger    *slog.Logger
	newID     func() string
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		extractor: opts.Extractor,
		synth:     opts.Synth,
		generator: opts.Generator,
		store:     opts.Store,
		cache:     opts.Cache,
		limit:     opts.FreeTierLimit,
		keywords:  opts.Keywords,
		analytics: &analytics.Analytics{},
		logger:    opts.Logger,
		newID:     opts.NewID,
	}
	if p.extractor == nil {
		p.extractor = extractor.New(extractor.Options{Logger: opts.Logger})
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.synth == nil {
		p.synth = synth.New(nil, nil, p.logger)
	}
	if p.keywords <= 0 {
		p.keywords = DefaultKeywords
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

type RunOptions struct {
	// Title overrides the page title.
	Title string
	// NoSave skips persistence; the set is returned without an ID.
	NoSave bool
	// Local skips remote generation.
	Local bool
}

type Result struct {
	Set      *models.StudySet
	Document *models.ExtractedDocument
	CacheHit bool
	// Usage is set when the run counted against the free tier.
	Usage *models.Usage
}

// Extract runs only the extraction stage.
func (p *Pipeline) Extract(ctx context.Context, src extractor.PageSource) (*models.ExtractedDocument, error) {
	return p.extractor.ExtractFrom(ctx, src)
}

// Run extracts src, generates study materials and saves the set.
// extractor.ErrExtractionEmpty and synth.ErrFallbackExhausted pass through
// wrapped.
func (p *Pipeline) Run(ctx context.Context, src extractor.PageSource, opts RunOptions) (*Result, error) {
	doc, err := p.extractor.ExtractFrom(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", describe(src), err)
	}

	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		title = extractor.SelectionTitle(doc.Text)
	}

	res := &Result{Document: doc}
	key := caching.Key("materials", title, doc.Text)

	var m *models.StudyMaterials
	if !opts.Local && p.cache != nil {
		var cached models.StudyMaterials
		if p.cache.GetJSON(key, &cached) && !cached.IsEmpty() {
			p.reassignIDs(&cached)
			m, res.CacheHit = &cached, true
			p.logger.Info("using cached study materials", "title", title, "source", cached.Metadata.Source)
		}
	}

	if m == nil {
		s, err := p.synthesizer(opts.Local)
		if err != nil {
			return nil, err
		}
		if m, err = s.Generate(ctx, doc.Text, title); err != nil {
			return nil, fmt.Errorf("generate %q: %w", title, err)
		}
		if m.Metadata.Source != models.SourceTemplateFallback && p.cache != nil {
			if err := p.cache.SetJSON(key, m); err != nil {
				p.logger.Warn("failed to cache study materials", "error", err)
			}
		}
		if llm.UsesProxy(m) && p.store != nil {
			u, err := p.store.IncrementUsage(p.limit)
			if err != nil {
				p.logger.Warn("failed to record usage", "error", err)
			} else {
				res.Usage = &u
			}
		}
	}

	set := &models.StudySet{
		Title:          title,
		SourceURL:      doc.SourceURL,
		Content:        doc.Text,
		IsSelection:    doc.IsSelection,
		WasTruncated:   doc.WasTruncated,
		Language:       doc.Meta.Language,
		Keywords:       p.analytics.TopNWords(doc.Text, p.keywords),
		StudyMaterials: *m,
	}
	res.Set = set

	if opts.NoSave || p.store == nil {
		return res, nil
	}
	if err := p.store.SaveStudySet(set); err != nil {
		return nil, fmt.Errorf("save study set: %w", err)
	}
	p.logger.Info("saved study set", "id", set.ID, "title", set.Title, "flashcards", len(set.Flashcards), "quiz", len(set.Quiz))
	return res, nil
}

// synthesizer picks the generation path for one run. Once the monthly free
// tier is used up the proxy is dropped from the provider chain, so BYOK
// providers still run and the rest goes to the template fallback.
func (p *Pipeline) synthesizer(local bool) (*synth.Synthesizer, error) {
	gen := p.generator
	if local || gen == nil || gen.Len() == 0 {
		return p.synth.WithRemote(nil), nil
	}

	if p.store != nil && p.limit > 0 && slices.Contains(gen.Names(), llm.ProviderProxy) {
		u, err := p.store.GetUsage(p.limit)
		if err != nil {
			return nil, fmt.Errorf("check usage: %w", err)
		}
		if u.LimitReached() {
			p.logger.Info("free tier limit reached, skipping proxy",
				"count", u.Count,
				"limit", u.Limit,
				"reset_at", u.ResetAt)
			gen = gen.Without(llm.ProviderProxy)
		}
	}
	if gen.Len() == 0 {
		return p.synth.WithRemote(nil), nil
	}
	return p.synth.WithRemote(gen), nil
}

// reassignIDs gives cached materials fresh ids so a second save does not
// collide with the first.
func (p *Pipeline) reassignIDs(m *models.StudyMaterials) {
	for i := range m.Flashcards {
		m.Flashcards[i].ID = p.newID()
	}
	for i := range m.Quiz {
		m.Quiz[i].ID = p.newID()
	}
}

func describe(src extractor.PageSource) string {
	if u := src.URL(); u != "" {
		return u
	}
	return "selection"
}
