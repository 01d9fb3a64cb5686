package models

import (
	"strings"
	"time"
)

// ExtractedDocument is the plain-text representation of a single page or
// selection, ready to be handed to the synthesizer.
type ExtractedDocument struct {
	Text         string `json:"text" yaml:"text"`
	SourceURL    string `json:"source_url" yaml:"source_url"`
	Title        string `json:"title" yaml:"title"`
	WasTruncated bool   `json:"was_truncated" yaml:"was_truncated"`
	IsSelection  bool   `json:"is_selection" yaml:"is_selection"`

	Meta DocumentMeta `json:"meta" yaml:"meta"`
}

// DocumentMeta holds enrichment signals computed alongside the text.
type DocumentMeta struct {
	CharacterCount int `json:"character_count" yaml:"character_count"`
	WordCount      int `json:"word_count" yaml:"word_count"`

	Language           string  `json:"language,omitempty" yaml:"language,omitempty"` // ISO-639-1 if possible (e.g. "en")
	LanguageConfidence float64 `json:"language_confidence,omitempty" yaml:"language_confidence,omitempty"`

	// From go-readability
	Excerpt  string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Byline   string `json:"byline,omitempty" yaml:"byline,omitempty"`
	SiteName string `json:"site_name,omitempty" yaml:"site_name,omitempty"`

	// From pkg/detector
	SourceKind     string `json:"source_kind,omitempty" yaml:"source_kind,omitempty"`
	SourceCategory string `json:"source_category,omitempty" yaml:"source_category,omitempty"`

	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// Paragraphs splits the document text on blank lines.
func (d *ExtractedDocument) Paragraphs() []string {
	var out []string
	for _, p := range strings.Split(d.Text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
