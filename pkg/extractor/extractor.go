// Package extractor reduces an HTML document, or a literal text selection,
// to the plain-text form the synthesizer consumes.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/dtnitsch/studybot/models"
	"golang.org/x/net/html"
)

// ErrExtractionEmpty is returned when a page or selection yields no text.
var ErrExtractionEmpty = errors.New("no readable content found on this page")

// Options configures an Extractor.
type Options struct {
	// MaxLength caps the extracted text, in characters. Zero means
	// models.DefaultMaxContentLength.
	MaxLength int

	// Enrich turns on readability, language and source-kind metadata.
	Enrich bool

	Logger *slog.Logger
	Now    func() time.Time
}

type Extractor struct {
	maxLength int
	enrich    bool
	logger    *slog.Logger
	now       func() time.Time
	lang      *languageDetector
}

func New(opts Options) *Extractor {
	e := &Extractor{
		maxLength: opts.MaxLength,
		enrich:    opts.Enrich,
		logger:    opts.Logger,
		now:       opts.Now,
		lang:      newLanguageDetector(),
	}
	if e.maxLength <= 0 {
		e.maxLength = models.DefaultMaxContentLength
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// MaxLength reports the effective size cap.
func (e *Extractor) MaxLength() int {
	return e.maxLength
}

// TruncationNotice is appended to text cut at max characters.
func TruncationNotice(max int) string {
	return fmt.Sprintf("\n\n[Content truncated - exceeded %d characters]", max)
}

// ExtractFrom pulls the selection or document from src and extracts it.
// A non-blank selection wins over the document.
func (e *Extractor) ExtractFrom(ctx context.Context, src PageSource) (*models.ExtractedDocument, error) {
	if sel := src.SelectionText(); strings.TrimSpace(sel) != "" {
		return e.ExtractSelection(sel, src.URL(), src.Title())
	}
	root, err := src.DocumentRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load page %s: %w", src.URL(), err)
	}
	return e.ExtractNode(root, src.URL(), src.Title())
}

// Extract handles a request carrying either raw HTML or a selection.
func (e *Extractor) Extract(req models.ExtractRequest) (*models.ExtractedDocument, error) {
	ex := e
	if req.MaxLength > 0 && req.MaxLength != e.maxLength {
		copied := *e
		copied.maxLength = req.MaxLength
		ex = &copied
	}
	if strings.TrimSpace(req.Selection) != "" {
		return ex.ExtractSelection(req.Selection, req.URL, req.Title)
	}
	root, err := html.Parse(strings.NewReader(req.HTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return ex.ExtractNode(root, req.URL, req.Title)
}

// ExtractSelection uses text verbatim. The size cap still applies.
func (e *Extractor) ExtractSelection(text, sourceURL, title string) (*models.ExtractedDocument, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrExtractionEmpty
	}
	doc := e.finish(text, sourceURL, title)
	doc.IsSelection = true
	if e.enrich {
		e.enrichText(doc)
	}
	return doc, nil
}

// ExtractNode walks a snapshot of root. The caller's tree is never modified.
func (e *Extractor) ExtractNode(root *html.Node, sourceURL, title string) (*models.ExtractedDocument, error) {
	if root == nil {
		return nil, ErrExtractionEmpty
	}
	snapshot := cloneTree(root)

	walkRoot := chooseRoot(snapshot)
	if walkRoot == nil {
		return nil, ErrExtractionEmpty
	}

	// The root is a container even when it is a role=main div.
	w := newWalker()
	w.children(walkRoot)
	text := w.String()
	if text == "" {
		return nil, ErrExtractionEmpty
	}

	if title == "" {
		title = documentTitle(snapshot)
	}
	doc := e.finish(text, sourceURL, title)

	if e.enrich {
		e.enrichHTML(doc, snapshot)
		e.enrichText(doc)
	}

	e.logger.Debug("extracted page",
		"url", sourceURL,
		"chars", doc.Meta.CharacterCount,
		"truncated", doc.WasTruncated)
	return doc, nil
}

// finish applies the size cap and fills the counters.
func (e *Extractor) finish(text, sourceURL, title string) *models.ExtractedDocument {
	doc := &models.ExtractedDocument{
		SourceURL: sourceURL,
		Title:     strings.TrimSpace(title),
	}
	if utf8.RuneCountInString(text) > e.maxLength {
		runes := []rune(text)
		text = string(runes[:e.maxLength]) + TruncationNotice(e.maxLength)
		doc.WasTruncated = true
	}
	doc.Text = text
	doc.Meta.CharacterCount = utf8.RuneCountInString(text)
	doc.Meta.WordCount = len(strings.Fields(text))
	doc.Meta.ExtractedAt = e.now().UTC()
	return doc
}

func chooseRoot(root *html.Node) *html.Node {
	doc := goquery.NewDocumentFromNode(root)
	for _, selector := range rootSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel.Get(0)
		}
	}
	return nil
}

func documentTitle(root *html.Node) string {
	return normalizeText(goquery.NewDocumentFromNode(root).Find("title").First().Text())
}
