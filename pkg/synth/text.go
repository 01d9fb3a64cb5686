package synth

import (
	"regexp"
	"strings"
)

const (
	maxSentences       = 100
	minSentenceLen     = 10 // exclusive
	minParagraphLen    = 20 // exclusive
	minTopicSentence   = 30 // inclusive
	maxTopicSentence   = 300
	sentenceTerminator = `[.!?]+`
)

var (
	disallowedChars = regexp.MustCompile(`[^\w\s.!?:;,'-]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	terminators     = regexp.MustCompile(sentenceTerminator)
	blankLines      = regexp.MustCompile(`\n\s*\n`)
)

// Sanitize strips characters outside the allow-list, then collapses
// whitespace and trims. Stripping first keeps the result stable under
// repeated application.
func Sanitize(text string) string {
	text = disallowedChars.ReplaceAllString(text, "")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Sentences splits sanitized text on terminator runs and keeps the first 100
// pieces longer than 10 characters.
func Sentences(text string) []string {
	var out []string
	for _, s := range terminators.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) <= minSentenceLen {
			continue
		}
		out = append(out, s)
		if len(out) == maxSentences {
			break
		}
	}
	return out
}

// Paragraphs splits raw text on blank lines, sanitizes each piece and keeps
// those longer than 20 characters.
func Paragraphs(raw string) []string {
	var out []string
	for _, p := range blankLines.Split(raw, -1) {
		p = Sanitize(p)
		if len(p) > minParagraphLen {
			out = append(out, p)
		}
	}
	return out
}

// TopicSentences keeps sentences whose length is within [30, 300].
func TopicSentences(sentences []string) []string {
	var out []string
	for _, s := range sentences {
		if len(s) >= minTopicSentence && len(s) <= maxTopicSentence {
			out = append(out, s)
		}
	}
	return out
}

// splitTerminated re-splits text on terminators, dropping empty pieces.
func splitTerminated(text string) []string {
	var out []string
	for _, s := range terminators.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
