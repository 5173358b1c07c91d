// Package render draws note previews for a terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/preview"
)

const (
	ellipsis = "…"
	// boxFrame is the horizontal space taken by the box border and padding.
	boxFrame = 4
)

// Renderer renders preview items as bordered terminal cards.
type Renderer struct {
	Styles Styles
	// Width is the card width including its border. Lines are truncated to fit.
	Width int
	// MaxLines caps the content lines of text previews. Zero means no cap.
	MaxLines int
}

// New creates a renderer with the default styles.
func New(width, maxLines int) *Renderer {
	return &Renderer{Styles: DefaultStyles(), Width: width, MaxLines: maxLines}
}

// RenderAll renders items one below the other.
func (r *Renderer) RenderAll(items []preview.Item) string {
	cards := make([]string, len(items))
	for i, it := range items {
		cards[i] = r.Render(it)
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// Render renders a single preview item.
func (r *Renderer) Render(item preview.Item) string {
	h := item.Base()
	var lines []string
	if h.Title.Text != "" {
		lines = append(lines, r.highlighted(h.Title, r.Styles.Title))
	}

	switch it := item.(type) {
	case *preview.TextItem:
		lines = append(lines, r.textBody(it)...)
	case *preview.ListItem:
		lines = append(lines, r.listBody(it)...)
	default:
		panic(fmt.Sprintf("render: unknown preview item %T", item))
	}

	if footer := r.footer(h); footer != "" {
		lines = append(lines, footer)
	}

	box := r.Styles.Box
	if h.Pinned {
		box = r.Styles.PinnedBox
	}
	if r.Width > boxFrame {
		box = box.Width(r.Width - 2)
	}
	return box.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) textBody(it *preview.TextItem) []string {
	if !it.ContentVisible || it.Content.Text == "" {
		return nil
	}
	var out []string
	start := 0
	for i, line := range strings.Split(it.Content.Text, "\n") {
		if r.MaxLines > 0 && i >= r.MaxLines {
			break
		}
		end := start + len(line)
		seg := preview.Highlighted{Text: line, Ranges: shiftRanges(it.Content.Ranges, start, end)}
		out = append(out, r.highlighted(seg, r.Styles.Text))
		start = end + 1
	}
	return out
}

func (r *Renderer) listBody(it *preview.ListItem) []string {
	out := make([]string, 0, len(it.Items)+1)
	for i, item := range it.Items {
		box, style := "[ ] ", r.Styles.Text
		if it.ItemsChecked[i] {
			box, style = "[x] ", r.Styles.Checked
		}
		out = append(out, style.Render(box)+r.highlighted(item, style))
	}
	if it.OverflowCount > 0 {
		more := fmt.Sprintf("+%d more", it.OverflowCount)
		if it.OnlyCheckedInOverflow {
			more = fmt.Sprintf("+%d checked", it.OverflowCount)
		}
		out = append(out, r.Styles.Meta.Render(more))
	}
	return out
}

func (r *Renderer) footer(h *preview.Header) string {
	var parts []string
	if h.LabelsVisible {
		for _, l := range h.Labels {
			parts = append(parts, r.Styles.Label.Render(l.Name))
		}
	}
	if rc := h.Reminder; rc != nil {
		chip := "⏰ " + rc.Next.Local().Format("Mon Jan 2 15:04")
		if rc.Recurring {
			chip += " ↻"
		}
		style := r.Styles.Meta
		if rc.Done {
			style = r.Styles.Checked
		}
		parts = append(parts, style.Render(chip))
		if h.ShowMarkAsDone {
			parts = append(parts, r.Styles.Highlight.Render("due"))
		}
	}
	if h.Date != nil {
		parts = append(parts, r.Styles.Meta.Render(h.Date.Local().Format("2006-01-02")))
	}
	if h.Status != models.StatusActive && h.Status != "" {
		parts = append(parts, r.Styles.Meta.Render(string(h.Status)))
	}
	return r.truncate(strings.Join(parts, " "))
}

// highlighted styles the highlight ranges of h over base, then truncates
// the line to the card width.
func (r *Renderer) highlighted(h preview.Highlighted, base lipgloss.Style) string {
	return r.truncate(Highlight(h, base, r.Styles.Highlight))
}

func (r *Renderer) truncate(s string) string {
	if r.Width <= boxFrame {
		return s
	}
	return ansi.Truncate(s, r.Width-boxFrame, ellipsis)
}

// Highlight renders text with base, and its highlight ranges with hl.
// Ranges are byte offsets into h.Text, sorted and non-overlapping.
func Highlight(h preview.Highlighted, base, hl lipgloss.Style) string {
	var b strings.Builder
	pos := 0
	for _, rg := range h.Ranges {
		if rg.Start < pos || rg.End > len(h.Text) || rg.Start >= rg.End {
			continue
		}
		if rg.Start > pos {
			b.WriteString(base.Render(h.Text[pos:rg.Start]))
		}
		b.WriteString(hl.Render(h.Text[rg.Start:rg.End]))
		pos = rg.End
	}
	if pos < len(h.Text) {
		b.WriteString(base.Render(h.Text[pos:]))
	}
	return b.String()
}

// shiftRanges returns the ranges inside [start, end), relative to start.
// Ranges crossing a line boundary are clipped to it.
func shiftRanges(ranges []preview.Range, start, end int) []preview.Range {
	var out []preview.Range
	for _, rg := range ranges {
		s, e := max(rg.Start, start), min(rg.End, end)
		if s < e {
			out = append(out, preview.Range{Start: s - start, End: e - start})
		}
	}
	return out
}
