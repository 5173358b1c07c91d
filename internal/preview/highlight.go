// Package preview builds the search-highlighted, truncated previews of notes
// shown in note lists.
package preview

import (
	"unicode"
	"unicode/utf8"
)

// Range is a half-open [Start, End) byte interval into a string. Bounds always
// fall on rune boundaries.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlighted pairs a string with the ranges of it matched by a query.
// Ranges are sorted, non-overlapping and within the bounds of Text.
type Highlighted struct {
	Text   string  `json:"text"`
	Ranges []Range `json:"ranges,omitempty"`
}

// Find returns the case-insensitive, non-overlapping occurrences of query in
// text, scanning left to right and stopping after max matches.
func Find(text, query string, max int) []Range {
	if text == "" || query == "" || max <= 0 {
		return nil
	}
	var out []Range
	for i := 0; i < len(text) && len(out) < max; {
		if end, ok := matchAt(text, i, query); ok {
			out = append(out, Range{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

// matchAt reports whether query matches text at byte offset i and returns
// the offset just past the match.
func matchAt(text string, i int, query string) (int, bool) {
	for _, qr := range query {
		if i >= len(text) {
			return 0, false
		}
		tr, size := utf8.DecodeRuneInString(text[i:])
		if !equalFold(tr, qr) {
			return 0, false
		}
		i += size
	}
	return i, true
}

// equalFold compares two runes under Unicode simple case folding.
func equalFold(a, b rune) bool {
	if a == b {
		return true
	}
	for r := unicode.SimpleFold(a); r != a; r = unicode.SimpleFold(r) {
		if r == b {
			return true
		}
	}
	return false
}
