package student

import (
	"iter"
	"strings"
)

// Filter matches name or email case-insensitively.
type Filter struct {
	Query string
}

func (f Filter) Match(s Student) bool {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Email), q)
}

// Apply collects the students of seq that pass the filter, keeping their order.
func (f Filter) Apply(seq iter.Seq2[Student, error]) ([]Student, error) {
	out := []Student{}
	for s, err := range seq {
		if err != nil {
			return nil, err
		}
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out, nil
}
