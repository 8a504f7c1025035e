// Package aggregate computes derived signals over a selected document set.
// Everything here is pure: no I/O, no external calls.
package aggregate

import (
	"sort"
	"strings"

	"github.com/brandbrief/brandbrief/internal/store"
)

// DefaultContentBudget is the per-document character budget for the content
// sample when config does not override it.
const DefaultContentBudget = 1000

// contentSeparator delimits per-document snippets in the content sample.
const contentSeparator = "\n\n---\n\n"

// KeywordCount is one entry of the keyword frequency ranking.
type KeywordCount struct {
	Tag   string
	Count int
}

// Signals holds everything the composer is allowed to see. Raw per-document
// sentiment and tag fields are never passed to generation directly.
type Signals struct {
	SentimentCounts map[string]int
	TopKeywords     []KeywordCount
	TopEngaged      []store.Document
	ContentSample   string
}

// Compute derives all signals from the document set. contentBudget is the
// per-document character cap for the content sample; zero means
// DefaultContentBudget.
func Compute(docs []store.Document, contentBudget int) Signals {
	if contentBudget <= 0 {
		contentBudget = DefaultContentBudget
	}
	return Signals{
		SentimentCounts: SentimentCounts(docs),
		TopKeywords:     TopKeywords(docs, 10),
		TopEngaged:      TopEngaged(docs, 5),
		ContentSample:   ContentSample(docs, contentBudget),
	}
}

// SentimentCounts accumulates one label per document that resolves one.
// Labels are counted exactly as stored, with no normalization.
func SentimentCounts(docs []store.Document) map[string]int {
	counts := make(map[string]int)
	for _, d := range docs {
		if label, ok := d.Sentiment.Label(); ok {
			counts[label]++
		}
	}
	return counts
}

// TopKeywords flattens all tag sequences into one bag and returns the n
// highest-frequency tags. Ties keep the order tags were first encountered.
func TopKeywords(docs []store.Document, n int) []KeywordCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order int

	for _, d := range docs {
		for _, tag := range d.Tags {
			if _, seen := counts[tag]; !seen {
				firstSeen[tag] = order
				order++
			}
			counts[tag]++
		}
	}

	ranked := make([]KeywordCount, 0, len(counts))
	for tag, count := range counts {
		ranked = append(ranked, KeywordCount{Tag: tag, Count: count})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Tag] < firstSeen[ranked[j].Tag]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopEngaged returns up to k documents sorted descending by
// (upvotes, comments). Documents missing either value are excluded.
func TopEngaged(docs []store.Document, k int) []store.Document {
	var eligible []store.Document
	for _, d := range docs {
		if d.Upvotes != nil && d.Comments != nil {
			eligible = append(eligible, d)
		}
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if *eligible[i].Upvotes != *eligible[j].Upvotes {
			return *eligible[i].Upvotes > *eligible[j].Upvotes
		}
		return *eligible[i].Comments > *eligible[j].Comments
	})

	if len(eligible) > k {
		eligible = eligible[:k]
	}
	return eligible
}

// ContentSample joins per-document content prefixes, in original document
// order, with a visible separator. Absent content contributes an empty
// snippet.
func ContentSample(docs []store.Document, budget int) string {
	snippets := make([]string, 0, len(docs))
	for _, d := range docs {
		snippets = append(snippets, truncateRunes(d.Content, budget))
	}
	return strings.Join(snippets, contentSeparator)
}

// truncateRunes returns the first n characters of s, never splitting a
// multibyte rune.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
