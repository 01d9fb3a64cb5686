package synth

import (
	"regexp"
	"strings"
)

// DefinitionPattern captures a term in group 1 and its definition in group 2.
type DefinitionPattern struct {
	Name   string
	Regexp *regexp.Regexp
}

// DefinitionPatterns are tried in order against every sentence. Each match
// that passes the length rules yields a definition.
var DefinitionPatterns = []DefinitionPattern{
	{Name: "is", Regexp: regexp.MustCompile(`(?i)^(.+?)\s+is\s+(.+?)$`)},
	{Name: "refers-to", Regexp: regexp.MustCompile(`(?i)^(.+?)\s+refers?\s+to\s+(.+?)$`)},
	{Name: "colon", Regexp: regexp.MustCompile(`^(.+?)\s*:\s+(.+?)$`)},
}

const (
	minTermLen       = 3  // inclusive
	maxTermLen       = 50 // exclusive
	minDefinitionLen = 10 // exclusive
	maxConcepts      = 20
	minConceptLen    = 3 // exclusive
)

// conceptPhrase matches one or two capitalized words.
var conceptPhrase = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)

// ConceptStopwords are capitalized words that are never concepts on their own.
var ConceptStopwords = map[string]struct{}{
	"The":  {},
	"And":  {},
	"This": {},
	"That": {},
	"With": {},
	"From": {},
	"For":  {},
}

// Definition is a term and what the text says it is.
type Definition struct {
	Term       string
	Definition string
	Pattern    string
}

// ExtractDefinitions applies DefinitionPatterns to each sentence. Terms are
// de-duplicated case-insensitively, first seen wins.
func ExtractDefinitions(sentences []string) []Definition {
	var out []Definition
	seen := make(map[string]struct{})
	for _, sentence := range sentences {
		for _, p := range DefinitionPatterns {
			m := p.Regexp.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			term := capitalize(strings.TrimSpace(m[1]))
			def := strings.TrimSuffix(strings.TrimSpace(m[2]), ".")
			if len(term) < minTermLen || len(term) >= maxTermLen || len(def) <= minDefinitionLen {
				continue
			}
			key := strings.ToLower(term)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, Definition{Term: term, Definition: def, Pattern: p.Name})
		}
	}
	return out
}

// ExtractConcepts returns up to 20 distinct capitalized phrases in order of
// first appearance.
func ExtractConcepts(text string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, phrase := range conceptPhrase.FindAllString(text, -1) {
		if _, stop := ConceptStopwords[phrase]; stop || len(phrase) <= minConceptLen {
			continue
		}
		if _, dup := seen[phrase]; dup {
			continue
		}
		seen[phrase] = struct{}{}
		out = append(out, phrase)
		if len(out) == maxConcepts {
			break
		}
	}
	return out
}

// conceptAnswer is the first sentence mentioning concept, or a placeholder.
func conceptAnswer(sentences []string, concept string) string {
	needle := strings.ToLower(concept)
	for _, s := range sentences {
		if strings.Contains(strings.ToLower(s), needle) {
			return strings.TrimSuffix(s, ".") + "."
		}
	}
	return concept + " is an important concept in this material."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
