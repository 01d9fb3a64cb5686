// Package analytics computes word statistics over extracted text.
package analytics

import (
	"sort"
	"strings"
	"unicode"
)

// MinKeywordLength is the shortest token counted as a keyword.
const MinKeywordLength = 3

type Analytics struct{}

// stopwords are ignored in frequency analysis. Function words first, then
// words that are common in study material without being about anything.
var stopwords = toSet(`
a about above across after afterwards again against all almost alone along already also although always am among amongst amount an and another any anyhow anyone anything anyway anywhere are aren't around as at
back be became because become becomes becoming been before beforehand behind being below beside besides between beyond both but by
can can't cannot could couldn't
did didn't do does doesn't doing don't done down during
each either else elsewhere enough entirely especially etc even ever every everyone everything everywhere
few for former formerly from further
had hadn't has hasn't have haven't having he he'd he'll he's hence her here hereafter hereby herein here's hereupon hers herself him himself his how however
i i'd i'll i'm i've if in indeed into is isn't it it's its itself
just keep
last latter latterly least less let let's like likely
made make many may maybe me meanwhile might mine more moreover most mostly much must mustn't my myself
neither never nevertheless next no nobody none noone nor not nothing now nowhere
of off often on once one only onto or other others otherwise our ours ourselves out over own
part per perhaps please put
rather re same see seem seemed seeming seems several she she'd she'll she's should shouldn't since so some somehow someone something sometime sometimes somewhere still such
take than that that's the their theirs them themselves then thence there thereafter thereby therefore therein there's thereupon these they they'd they'll they're they've this those through throughout thru thus to together too toward towards
under until up upon us use used using
very via
was wasn't we we'd we'll we're we've well were weren't what whatever what's when whence whenever where whereafter whereas whereby wherein where's whereupon wherever whether which while whither who who'd whoever who'll who's whose why will with within without won't would wouldn't
yet you you'd you'll you're you've your yours yourself yourselves
click button link menu page pages website site home search loading
example examples also include includes including called known important different various following
`)

func toSet(words string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(words) {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is ignored by WordFrequency.
func IsStopword(word string) bool {
	_, ok := stopwords[strings.ToLower(word)]
	return ok
}

// WordFrequency counts lowercased words, trimming punctuation at both ends
// and skipping stopwords, numbers and tokens shorter than MinKeywordLength.
func (a *Analytics) WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(word)) < MinKeywordLength || IsStopword(word) || isNumber(word) {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

type WordCount struct {
	Word  string
	Count int
}

// Rank orders counts by frequency, then alphabetically, so equal inputs
// always rank the same.
func Rank(frequencies map[string]int) []WordCount {
	counts := make([]WordCount, 0, len(frequencies))
	for k, v := range frequencies {
		counts = append(counts, WordCount{k, v})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})
	return counts
}

// TopNWords returns the n most frequent keywords of text.
func (a *Analytics) TopNWords(text string, n int) []string {
	ranked := Rank(a.WordFrequency(text))
	if n < len(ranked) {
		ranked = ranked[:max(n, 0)]
	}
	topN := make([]string, len(ranked))
	for i, wc := range ranked {
		topN[i] = wc.Word
	}
	return topN
}

func isNumber(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
