package llm

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errNoJSON = errors.New("no JSON found in response")

// ExtractJSON returns the JSON payload of a model response. It accepts raw
// JSON, a fenced code block, or the first balanced object or array embedded
// in prose. Anything else is an error.
func ExtractJSON(s string) (string, error) {
	s = strings.TrimSpace(stripCodeFence(strings.TrimSpace(s)))
	if s == "" {
		return "", errNoJSON
	}
	if gjson.Valid(s) && (s[0] == '{' || s[0] == '[') {
		return s, nil
	}

	for start := 0; start < len(s); start++ {
		if s[start] != '{' && s[start] != '[' {
			continue
		}
		end := balancedEnd(s, start)
		if end < 0 {
			continue
		}
		if candidate := s[start : end+1]; gjson.Valid(candidate) {
			return candidate, nil
		}
	}
	return "", errNoJSON
}

// balancedEnd returns the index closing the bracket at s[start], skipping
// brackets inside JSON strings, or -1.
func balancedEnd(s string, start int) int {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "```"); i >= 0 {
			if j := strings.Index(s[i+3:], "```"); j >= 0 {
				s = s[i : i+3+j+3]
			}
		}
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
