package extractor

import "strings"

// Size limits applied while walking, in characters of whitespace-normalized text.
const (
	maxBlockChars = 5000
	maxTextChars  = 1000
)

// noiseTags are dropped together with their subtree.
var noiseTags = map[string]struct{}{
	"script":   {},
	"style":    {},
	"nav":      {},
	"noscript": {},
}

// noiseClasses mark an element as noise when one of its class tokens equals
// an entry, or is a hyphen/underscore compound with an entry as a segment
// ("sidebar-left", "ad_slot"). "header" and "shadow" are not noise.
var noiseClasses = map[string]struct{}{
	"ad":            {},
	"advertisement": {},
	"sidebar":       {},
	"widget":        {},
}

var headingTags = map[string]struct{}{
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
}

// rootSelectors is the order in which the walk root is chosen.
var rootSelectors = []string{"article", "main", "[role=main]", "body"}

func isNoiseClass(class string) bool {
	for _, token := range strings.Fields(strings.ToLower(class)) {
		if _, ok := noiseClasses[token]; ok {
			return true
		}
		segments := strings.FieldsFunc(token, func(r rune) bool { return r == '-' || r == '_' })
		if len(segments) < 2 {
			continue
		}
		for _, seg := range segments {
			if _, ok := noiseClasses[seg]; ok {
				return true
			}
		}
	}
	return false
}
