package preview

import (
	"fmt"
	"slices"
	"strings"

	"github.com/starford/notes/internal/models"
)

const (
	// minListItems is the minimum number of items shown in a list preview
	// when checked items are moved to the bottom, even if they are checked.
	minListItems = 2

	maxHighlightsTitle    = 2
	maxHighlightsText     = 10
	maxHighlightsListItem = 2
	maxHighlightsList     = 10

	// Start ellipsis constants, in characters. They approximate what fits in
	// a preview and ignore font and screen size. Thresholds double in list layout.
	ellipsisThresholdTitle        = 20
	ellipsisDistanceTitle         = 10
	ellipsisThresholdItem         = 10
	ellipsisDistanceItem          = 4
	ellipsisThresholdContent      = 15 // per preview line after the first
	ellipsisThresholdContentFirst = 5
	ellipsisDistanceContent       = 20
)

// Builder creates preview items for notes.
type Builder struct {
	Prefs Preferences
	// Query highlights matches in created items. Empty highlights nothing.
	Query string
	// AppendIDToTitle appends the note ID to titles, for debugging.
	AppendIDToTitle bool
}

// Build creates the preview of note. labels are the note labels in display order.
func (b *Builder) Build(note models.Note, labels []models.Label, checked, showMarkAsDone bool) Item {
	switch note.Kind {
	case models.KindText:
		return b.buildText(note, b.header(note, labels, checked, showMarkAsDone))
	case models.KindList:
		return b.buildList(note, b.header(note, labels, checked, showMarkAsDone))
	default:
		panic(fmt.Sprintf("preview: unknown note kind %q", note.Kind))
	}
}

func (b *Builder) searching() bool {
	return b.Query != ""
}

func (b *Builder) header(note models.Note, labels []models.Label, checked, showMarkAsDone bool) Header {
	h := Header{
		ID:             note.ID,
		Kind:           note.Kind,
		Status:         note.Status,
		Pinned:         note.Pinned,
		Checked:        checked,
		ShowMarkAsDone: showMarkAsDone,
		Title:          b.title(note),
	}
	h.Labels, h.LabelsVisible = previewLabels(labels, b.Prefs.MaxLabelsShown)

	switch b.Prefs.ShownDateField {
	case DateAdded:
		d := note.AddedDate
		h.Date = &d
	case DateModified:
		d := note.LastModifiedDate
		h.Date = &d
	}

	if r := note.Reminder; r != nil {
		h.Reminder = &ReminderChip{Next: r.Next, Done: r.Done, Recurring: r.IsRecurring()}
	}
	return h
}

func (b *Builder) title(note models.Note) Highlighted {
	title := strings.TrimSpace(note.Title)
	h := Highlighted{Text: title}
	if b.searching() {
		h = Ellipsize(title, Find(title, b.Query, maxHighlightsTitle),
			b.threshold(ellipsisThresholdTitle), ellipsisDistanceTitle)
	}
	if b.AppendIDToTitle {
		// Appended at the end, so existing ranges stay valid.
		h.Text += fmt.Sprintf(" (%d)", note.ID)
	}
	return h
}

func (b *Builder) buildText(note models.Note, h Header) *TextItem {
	if note.Kind != models.KindText {
		panic(fmt.Sprintf("preview: text preview requested for %s note %d", note.Kind, note.ID))
	}
	item := &TextItem{Header: h, ContentVisible: b.Prefs.MaxPreviewLinesText > 0}
	if !item.ContentVisible {
		return item
	}

	content := strings.TrimSpace(note.Content)
	if !b.searching() {
		item.Content = Highlighted{Text: content}
		return item
	}
	threshold := b.threshold(ellipsisThresholdContent)*max(0, b.Prefs.MaxPreviewLinesText-1) +
		ellipsisThresholdContentFirst
	item.Content = Ellipsize(content, Find(content, b.Query, maxHighlightsText),
		threshold, ellipsisDistanceContent)
	return item
}

// buildList selects which items of a list note are shown:
//   - items keep their order, unless checked items are moved to the bottom;
//   - when searching, unhighlighted items are dropped so that as many
//     highlighted items as possible fit, without reordering;
//   - the number of items shown has a maximum and, when checked items are
//     moved to the bottom, a minimum.
func (b *Builder) buildList(note models.Note, h Header) *ListItem {
	if note.Kind != models.KindList {
		panic(fmt.Sprintf("preview: list preview requested for %s note %d", note.Kind, note.ID))
	}
	total := len(note.Items)
	items := slices.Clone(note.Items)
	if b.Prefs.MoveCheckedToBottom {
		slices.SortStableFunc(items, func(x, y models.ListItem) int {
			return boolRank(x.Checked) - boolRank(y.Checked)
		})
	}

	highlights := b.itemHighlights(items)
	count := b.itemCount(items, highlights)

	onlyCheckedInOverflow := true
	if b.searching() {
		items, highlights, onlyCheckedInOverflow = revealHighlights(items, highlights, count)
	}
	shown := min(count, len(items))
	for _, it := range items[shown:] {
		onlyCheckedInOverflow = onlyCheckedInOverflow && it.Checked
	}
	items = items[:shown]

	threshold := b.threshold(ellipsisThresholdItem)
	out := &ListItem{
		Header:                h,
		Items:                 make([]Highlighted, len(items)),
		ItemsChecked:          make([]bool, len(items)),
		OverflowCount:         total - len(items),
		OnlyCheckedInOverflow: onlyCheckedInOverflow,
	}
	for i, it := range items {
		var ranges []Range
		if highlights != nil {
			ranges = highlights[i]
		}
		out.Items[i] = Ellipsize(it.Content, ranges, threshold, ellipsisDistanceItem)
		out.ItemsChecked[i] = it.Checked
	}
	return out
}

// itemHighlights finds highlights in every item under a budget shared by the
// whole note, consumed in item order. It returns nil when not searching.
func (b *Builder) itemHighlights(items []models.ListItem) [][]Range {
	if !b.searching() {
		return nil
	}
	budget := maxHighlightsList
	out := make([][]Range, len(items))
	for i, it := range items {
		out[i] = Find(it.Content, b.Query, min(budget, maxHighlightsListItem))
		budget -= len(out[i])
	}
	return out
}

// itemCount returns the number of items to show.
func (b *Builder) itemCount(items []models.ListItem, highlights [][]Range) int {
	limit := b.Prefs.MaxPreviewItemsList
	if !b.Prefs.MoveCheckedToBottom {
		return min(limit, len(items))
	}
	count := slices.IndexFunc(items, func(it models.ListItem) bool { return it.Checked })
	if count == -1 {
		count = len(items)
	}
	// Checked items with highlights are shown as well.
	for i, it := range items {
		if it.Checked && highlights != nil && len(highlights[i]) > 0 {
			count++
		}
	}
	if count < minListItems && count < limit {
		// Too few unchecked items, fill with checked ones.
		count = min(len(items), minListItems)
	}
	return min(limit, count)
}

// revealHighlights drops unhighlighted items, earliest first, as long as the
// slots left in the first count items are not more than the highlighted items
// still to come. Highlighted items are always kept and order is preserved.
// It also reports whether every dropped item was checked.
func revealHighlights(items []models.ListItem, highlights [][]Range, count int) ([]models.ListItem, [][]Range, bool) {
	pending := 0
	for _, h := range highlights {
		if len(h) > 0 {
			pending++
		}
	}
	keptItems := make([]models.ListItem, 0, len(items))
	keptHighlights := make([][]Range, 0, len(items))
	onlyChecked := true
	for i, it := range items {
		if len(highlights[i]) > 0 {
			pending--
		} else if count-len(keptItems) <= pending {
			onlyChecked = onlyChecked && it.Checked
			continue
		}
		keptItems = append(keptItems, it)
		keptHighlights = append(keptHighlights, highlights[i])
	}
	return keptItems, keptHighlights, onlyChecked
}

// threshold doubles an ellipsis threshold in list layout, where previews are wider.
func (b *Builder) threshold(t int) int {
	if b.Prefs.Layout == LayoutGrid {
		return t
	}
	return t * 2
}

// previewLabels limits labels to max, replacing the rest with a "+N" label.
func previewLabels(labels []models.Label, max int) ([]models.Label, bool) {
	if max <= 0 || len(labels) == 0 {
		return nil, false
	}
	if len(labels) <= max {
		return slices.Clone(labels), true
	}
	out := make([]models.Label, 0, max+1)
	out = append(out, labels[:max]...)
	out = append(out, models.Label{ID: models.NoID, Name: fmt.Sprintf("+%d", len(labels)-max)})
	return out, true
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
