package preview

import "unicode/utf8"

// Ellipsis is the marker prepended to text whose start was elided.
const Ellipsis = "…"

// Ellipsize elides the start of text when its first highlight lies threshold
// characters or more into it, so the highlight stays inside a preview that
// is truncated from the end. The kept text starts distance characters before
// the first highlight, or at the start of text when the highlight is closer.
// Ranges are shifted to match the returned text.
func Ellipsize(text string, highlights []Range, threshold, distance int) Highlighted {
	if len(highlights) == 0 {
		return Highlighted{Text: text, Ranges: highlights}
	}
	first := highlights[0].Start
	if utf8.RuneCountInString(text[:first]) < threshold {
		return Highlighted{Text: text, Ranges: highlights}
	}

	cut := runesBefore(text, first, distance)
	shift := len(Ellipsis) - cut
	ranges := make([]Range, 0, len(highlights))
	for _, h := range highlights {
		if h.End <= cut {
			continue
		}
		start := max(h.Start, cut)
		ranges = append(ranges, Range{Start: start + shift, End: h.End + shift})
	}
	return Highlighted{Text: Ellipsis + text[cut:], Ranges: ranges}
}

// runesBefore returns the byte offset n runes before offset i, clamped at 0.
func runesBefore(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}
