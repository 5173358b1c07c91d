package render

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Muted     = lipgloss.Color("#6B7280")
	Subtle    = lipgloss.Color("#4B5563")
	LabelBg   = lipgloss.Color("#374151")
	TextColor = lipgloss.Color("#F9FAFB")
	Border    = lipgloss.Color("#374151")
	Pinned    = lipgloss.Color("#7C3AED") // Purple
)

// Styles holds the styles of every preview part.
type Styles struct {
	Box       lipgloss.Style
	PinnedBox lipgloss.Style
	Title     lipgloss.Style
	Text      lipgloss.Style
	Highlight lipgloss.Style
	Checked   lipgloss.Style
	Label     lipgloss.Style
	Meta      lipgloss.Style
}

// DefaultStyles returns the dark theme styles.
func DefaultStyles() Styles {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	return Styles{
		Box:       box,
		PinnedBox: box.BorderForeground(Pinned),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(TextColor),
		Text:      lipgloss.NewStyle().Foreground(TextColor),
		Highlight: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#111827")).Background(Accent),
		Checked:   lipgloss.NewStyle().Strikethrough(true).Foreground(Muted),
		Label:     lipgloss.NewStyle().Foreground(TextColor).Background(LabelBg).Padding(0, 1),
		Meta:      lipgloss.NewStyle().Foreground(Subtle),
	}
}
