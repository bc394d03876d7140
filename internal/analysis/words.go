package analysis

import (
	"sort"
	"strings"

	"github.com/KaramelBytes/empsent-cli/internal/feedback"
)

// TermCount is a token and its number of occurrences.
type TermCount struct {
	Term  string
	Count int
}

// WordCounts is the term frequency table of one text column.
type WordCounts struct {
	Field  feedback.Column
	Tokens int
	Terms  []TermCount // count desc, then term asc
}

// Count returns the occurrences of term, compared case-insensitively.
func (w *WordCounts) Count(term string) int {
	t := strings.ToLower(term)
	for _, tc := range w.Terms {
		if tc.Term == t {
			return tc.Count
		}
	}
	return 0
}

// Top returns up to n most frequent terms.
func (w *WordCounts) Top(n int) []TermCount {
	if n < 0 || n > len(w.Terms) {
		n = len(w.Terms)
	}
	return w.Terms[:n]
}

// WordFrequency lowercases and joins every value of a text column, splits on
// whitespace and counts the tokens. Punctuation is kept as part of a token.
func WordFrequency(recs []feedback.Record, field feedback.Column) (*WordCounts, error) {
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	if !feedback.IsText(field) {
		return nil, &ColumnError{Column: field, Want: "free text"}
	}
	parts := make([]string, 0, len(recs))
	for _, r := range recs {
		s, _ := r.Text(field)
		parts = append(parts, s)
	}
	joined := strings.ToLower(strings.Join(parts, " "))

	counts := map[string]int{}
	tokens := strings.Fields(joined)
	for _, tok := range tokens {
		counts[tok]++
	}
	wc := &WordCounts{Field: field, Tokens: len(tokens), Terms: make([]TermCount, 0, len(counts))}
	for k, v := range counts {
		wc.Terms = append(wc.Terms, TermCount{Term: k, Count: v})
	}
	sort.Slice(wc.Terms, func(i, j int) bool {
		if wc.Terms[i].Count == wc.Terms[j].Count {
			return wc.Terms[i].Term < wc.Terms[j].Term
		}
		return wc.Terms[i].Count > wc.Terms[j].Count
	})
	return wc, nil
}
