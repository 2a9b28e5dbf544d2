package book

import (
	"iter"
	"slices"
	"strings"
)

// Filter is a projection over a listed sequence of books.
type Filter struct {
	// Query matches title, author or isbn, case-insensitively.
	Query string
	// Category, when set, must equal the book's category exactly.
	Category string
}

// Match reports whether b passes the filter.
func (f Filter) Match(b Book) bool {
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), q) ||
		strings.Contains(strings.ToLower(b.Author), q) ||
		strings.Contains(strings.ToLower(b.ISBN), q)
}

// Apply collects the books of seq that pass the filter, keeping their order.
func (f Filter) Apply(seq iter.Seq2[Book, error]) ([]Book, error) {
	out := []Book{}
	for b, err := range seq {
		if err != nil {
			return nil, err
		}
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Categories returns the distinct non-empty categories of seq, sorted.
func Categories(seq iter.Seq2[Book, error]) ([]string, error) {
	seen := make(map[string]struct{})
	for b, err := range seq {
		if err != nil {
			return nil, err
		}
		if b.Category != "" {
			seen[b.Category] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	slices.Sort(out)
	return out, nil
}
