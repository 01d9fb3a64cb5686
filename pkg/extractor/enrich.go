package extractor

import (
	"bytes"
	"net/url"
	"strings"
	"sync"

	"github.com/dtnitsch/studybot/models"
	"github.com/dtnitsch/studybot/pkg/detector"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"
	"golang.org/x/net/html"
)

// languageSample bounds how much text the language detector looks at.
const languageSample = 2000

var detectedLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

// languageDetector builds the lingua model on first use; it is large.
type languageDetector struct {
	once     sync.Once
	detector lingua.LanguageDetector
}

func newLanguageDetector() *languageDetector {
	return &languageDetector{}
}

func (d *languageDetector) detect(text string) (string, float64) {
	d.once.Do(func() {
		d.detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectedLanguages...).
			Build()
	})
	if runes := []rune(text); len(runes) > languageSample {
		text = string(runes[:languageSample])
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", 0
	}
	code := strings.ToLower(lang.IsoCode639_1().String())
	return code, d.detector.ComputeLanguageConfidence(text, lang)
}

// enrichHTML copies readability's provenance fields onto doc. Readability
// failures only cost metadata.
func (e *Extractor) enrichHTML(doc *models.ExtractedDocument, root *html.Node) {
	var buf bytes.Buffer
	if err := html.Render(&buf, cloneTree(root)); err != nil {
		e.logger.Debug("failed to render page for readability", "error", err)
		return
	}

	pageURL, err := url.Parse(doc.SourceURL)
	if err != nil || pageURL.Host == "" {
		pageURL, _ = url.Parse("http://localhost/")
	}

	rp := readability.NewParser()
	article, err := rp.Parse(&buf, pageURL)
	if err != nil {
		e.logger.Debug("readability failed", "url", doc.SourceURL, "error", err)
		return
	}

	if doc.Title == "" {
		doc.Title = normalizeText(article.Title)
	}
	doc.Meta.Excerpt = normalizeText(article.Excerpt)
	doc.Meta.Byline = normalizeText(article.Byline)
	doc.Meta.SiteName = normalizeText(article.SiteName)
}

func (e *Extractor) enrichText(doc *models.ExtractedDocument) {
	doc.Meta.Language, doc.Meta.LanguageConfidence = e.lang.detect(doc.Text)

	if doc.SourceURL != "" {
		c := detector.Classify(doc.SourceURL)
		doc.Meta.SourceKind = c.Kind
		doc.Meta.SourceCategory = c.DomainType
	}
}
