package editor

import (
	"strings"

	"github.com/jonathan/strategy-report/internal/types"
)

// quadrantList returns the list for q, or a FieldError.
func quadrantList(s types.Swot, q types.SwotQuadrant) ([]types.SwotItem, error) {
	p := s.Quadrant(q)
	if p == nil {
		return nil, &FieldError{Field: "quadrant", Message: string(q)}
	}
	return *p, nil
}

// withQuadrant returns a copy of s with only quadrant q replaced.
func withQuadrant(s types.Swot, q types.SwotQuadrant, items []types.SwotItem) types.Swot {
	*s.Quadrant(q) = items
	return s
}

// AddSwotItem appends item to quadrant q. The other quadrants are shared with s.
func AddSwotItem(s types.Swot, q types.SwotQuadrant, item types.SwotItem) (types.Swot, error) {
	list, err := quadrantList(s, q)
	if err != nil {
		return s, err
	}
	item.Content = strings.TrimSpace(item.Content)
	if item.Content == "" {
		return s, &FieldError{Field: "content", Message: "must not be empty"}
	}
	next := make([]types.SwotItem, 0, len(list)+1)
	next = append(next, list...)
	next = append(next, item)
	return withQuadrant(s, q, next), nil
}

// UpdateSwotItem replaces the item at index i of quadrant q.
func UpdateSwotItem(s types.Swot, q types.SwotQuadrant, i int, item types.SwotItem) (types.Swot, error) {
	list, err := quadrantList(s, q)
	if err != nil {
		return s, err
	}
	if i < 0 || i >= len(list) {
		return s, &IndexError{List: string(q), Index: i, Len: len(list)}
	}
	next := append([]types.SwotItem{}, list...)
	next[i] = item
	return withQuadrant(s, q, next), nil
}

// DeleteSwotItem removes the item at index i of quadrant q. Removing the last
// item leaves an empty, non-nil list.
func DeleteSwotItem(s types.Swot, q types.SwotQuadrant, i int) (types.Swot, error) {
	list, err := quadrantList(s, q)
	if err != nil {
		return s, err
	}
	if i < 0 || i >= len(list) {
		return s, &IndexError{List: string(q), Index: i, Len: len(list)}
	}
	next := make([]types.SwotItem, 0, len(list)-1)
	next = append(next, list[:i]...)
	next = append(next, list[i+1:]...)
	return withQuadrant(s, q, next), nil
}

// EnsureSwot fills nil quadrants with empty lists.
func EnsureSwot(s *types.Swot) types.Swot {
	var out types.Swot
	if s != nil {
		out = *s
	}
	for _, q := range types.SwotQuadrants {
		if p := out.Quadrant(q); *p == nil {
			*p = []types.SwotItem{}
		}
	}
	return out
}
