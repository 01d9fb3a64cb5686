// Package mapreduce aggregates keyword counts across many texts or study
// sets.
package mapreduce

import (
	"context"
	"fmt"
	"strings"

	"github.com/dtnitsch/studybot/pkg/analytics"
	"golang.org/x/sync/errgroup"
)

// Map counts the keywords of one study set. Case is folded and repeats
// within the set count once.
func Map(keywords []string) map[string]int {
	counts := make(map[string]int, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		counts[kw] = 1
	}
	return counts
}

// MapAll runs Map over lists with at most workers goroutines. Results keep
// the order of lists.
func MapAll(ctx context.Context, lists [][]string, workers int) ([]map[string]int, error) {
	out := make([]map[string]int, len(lists))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, list := range lists {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = Map(list)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Reduce aggregates a slice of word frequency maps into a single map.
func Reduce(intermediate []map[string]int) map[string]int {
	finalResults := make(map[string]int)

	for _, counts := range intermediate {
		for word, count := range counts {
			finalResults[word] += count
		}
	}

	return finalResults
}

// CountKeywords counts in how many sets each keyword appears.
func CountKeywords(ctx context.Context, lists [][]string, workers int) (map[string]int, error) {
	mapped, err := MapAll(ctx, lists, workers)
	if err != nil {
		return nil, fmt.Errorf("failed to count keywords: %w", err)
	}
	return Reduce(mapped), nil
}

// isValidKeyword filters malformed tokens: trailing ":" or "=", unmatched
// brackets and unmatched quotes.
func isValidKeyword(word string) bool {
	if strings.HasSuffix(word, ":") || strings.HasSuffix(word, "=") {
		return false
	}
	for _, pair := range [][2]string{{"(", ")"}, {"[", "]"}, {"{", "}"}} {
		if strings.Contains(word, pair[0]) && !strings.Contains(word, pair[1]) {
			return false
		}
	}
	return strings.Count(word, `"`)%2 == 0 && strings.Count(word, "'")%2 == 0
}

// TopKeywords returns the top n keywords from aggregated counts, most
// frequent first.
func TopKeywords(wordCounts map[string]int, n int) []string {
	var out []string
	for _, wc := range analytics.Rank(wordCounts) {
		if len(out) >= n {
			break
		}
		if isValidKeyword(wc.Word) {
			out = append(out, wc.Word)
		}
	}
	return out
}

// FormatCounts renders keywords as "word:count", e.g. "osmosis:3".
func FormatCounts(wordCounts map[string]int, keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = fmt.Sprintf("%s:%d", kw, wordCounts[kw])
	}
	return out
}
