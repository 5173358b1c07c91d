// Package parser converts notes to and from Markdown files with YAML frontmatter.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

var (
	checkboxRe = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\]\s?(.*)$`)
	tagRe      = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	slugRe     = regexp.MustCompile(`[^a-z0-9]+`)
)

// frontmatter is the YAML header of a note file.
type frontmatter struct {
	Title    string            `yaml:"title,omitempty"`
	Kind     models.NoteKind   `yaml:"kind,omitempty"`
	Status   models.NoteStatus `yaml:"status,omitempty"`
	Pinned   bool              `yaml:"pinned,omitempty"`
	Labels   []string          `yaml:"labels,omitempty"`
	Tags     []string          `yaml:"tags,omitempty"`
	Added    time.Time         `yaml:"added,omitempty"`
	Modified time.Time         `yaml:"modified,omitempty"`
	Reminder *reminder         `yaml:"reminder,omitempty"`
}

type reminder struct {
	Start      time.Time `yaml:"start"`
	Recurrence string    `yaml:"recurrence,omitempty"`
	Next       time.Time `yaml:"next"`
	Count      int       `yaml:"count"`
	Done       bool      `yaml:"done,omitempty"`
}

// Result holds the output of parsing a note file. Dates missing from the
// file are left zero.
type Result struct {
	Note   models.Note
	Labels []string
}

// Parse reads a note from raw Markdown bytes. Without a "kind" field, a body
// made only of checkbox lines is a list note. Without a "title" field, the
// first H1 heading becomes the title and is removed from the body.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	title := fm.Title
	if title == "" {
		title, body = extractHeading(body)
	}
	n := models.Note{
		Title:            title,
		Kind:             fm.Kind,
		Status:           fm.Status,
		Pinned:           fm.Pinned,
		AddedDate:        fm.Added,
		LastModifiedDate: fm.Modified,
	}
	if n.Status == "" {
		n.Status = models.StatusActive
	}

	items, isList := parseItems(body)
	if n.Kind == "" {
		n.Kind = models.KindText
		if isList && len(items) > 0 {
			n.Kind = models.KindList
		}
	}
	switch n.Kind {
	case models.KindList:
		n.Items = items
	default:
		n.Content = strings.TrimSpace(body)
	}

	if r := fm.Reminder; r != nil {
		n.Reminder = &models.Reminder{Start: r.Start, Recurrence: r.Recurrence, Next: r.Next, Count: r.Count, Done: r.Done}
		if n.Reminder.Count == 0 {
			n.Reminder.Count = 1
		}
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}

	return &Result{Note: n, Labels: collectLabels(fm, n.Content)}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (frontmatter, string, error) {
	const delim = "---"
	var fm frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter, so everything is body.
		return fm, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return fm, "", fmt.Errorf("parser: %w: frontmatter: %v", apperr.ErrInvalid, err)
	}
	return fm, body, nil
}

// extractHeading returns the first H1 heading and the body without it.
func extractHeading(body string) (string, string) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			rest := append(lines[:i:i], lines[i+1:]...)
			return strings.TrimSpace(trimmed[2:]), strings.Join(rest, "\n")
		}
		break
	}
	return "", body
}

// parseItems reads checkbox lines. The second result reports whether every
// non-blank line of body is a checkbox.
func parseItems(body string) ([]models.ListItem, bool) {
	var items []models.ListItem
	all := true
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			all = false
			continue
		}
		items = append(items, models.ListItem{Content: strings.TrimSpace(m[2]), Checked: m[1] != " "})
	}
	return items, all
}

// collectLabels merges frontmatter labels and tags with inline #tags, deduplicated.
func collectLabels(fm frontmatter, content string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for _, l := range fm.Labels {
		add(l)
	}
	for _, l := range fm.Tags {
		add(l)
	}
	for _, m := range tagRe.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	return out
}

// Format renders a note with its label names as Markdown with YAML frontmatter.
func Format(n models.Note, labels []string) ([]byte, error) {
	fm := frontmatter{
		Title:    n.Title,
		Kind:     n.Kind,
		Status:   n.Status,
		Pinned:   n.Pinned,
		Labels:   labels,
		Added:    n.AddedDate.UTC(),
		Modified: n.LastModifiedDate.UTC(),
	}
	if r := n.Reminder; r != nil {
		fm.Reminder = &reminder{Start: r.Start.UTC(), Recurrence: r.Recurrence, Next: r.Next.UTC(), Count: r.Count, Done: r.Done}
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("parser: encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	switch n.Kind {
	case models.KindList:
		for _, it := range n.Items {
			mark := " "
			if it.Checked {
				mark = "x"
			}
			fmt.Fprintf(&buf, "- [%s] %s\n", mark, it.Content)
		}
	default:
		if n.Content != "" {
			buf.WriteString(n.Content)
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// FileName returns the export file name of a note: its zero-padded ID
// followed by a slug of its title.
func FileName(n models.Note) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(n.Title), "-"), "-")
	if len(slug) > 48 {
		slug = strings.TrimRight(slug[:48], "-")
	}
	if slug == "" {
		return fmt.Sprintf("%06d.md", n.ID)
	}
	return fmt.Sprintf("%06d-%s.md", n.ID, slug)
}
