package preview

import (
	"time"

	"github.com/starford/notes/internal/models"
)

// Item is a render-ready note preview: either *TextItem or *ListItem.
// Items are rebuilt whenever the note, query or preferences change and are
// never mutated afterwards.
type Item interface {
	// Base returns the fields shared by every preview kind.
	Base() *Header
	isItem()
}

// Header holds the preview fields common to all note kinds.
type Header struct {
	ID             int64             `json:"id"`
	Kind           models.NoteKind   `json:"kind"`
	Status         models.NoteStatus `json:"status"`
	Pinned         bool              `json:"pinned"`
	Checked        bool              `json:"checked"`
	ShowMarkAsDone bool              `json:"show_mark_as_done"`
	Title          Highlighted       `json:"title"`
	Labels         []models.Label    `json:"labels,omitempty"`
	LabelsVisible  bool              `json:"labels_visible"`
	Date           *time.Time        `json:"date,omitempty"`
	Reminder       *ReminderChip     `json:"reminder,omitempty"`
}

// ReminderChip summarizes a note reminder for display.
type ReminderChip struct {
	Next      time.Time `json:"next"`
	Done      bool      `json:"done"`
	Recurring bool      `json:"recurring"`
}

// TextItem is the preview of a text note.
type TextItem struct {
	Header
	Content        Highlighted `json:"content"`
	ContentVisible bool        `json:"content_visible"`
}

// ListItem is the preview of a list note. Items and ItemsChecked are parallel.
type ListItem struct {
	Header
	Items        []Highlighted `json:"items"`
	ItemsChecked []bool        `json:"items_checked"`
	// OverflowCount is the number of note items not shown.
	OverflowCount int `json:"overflow_count"`
	// OnlyCheckedInOverflow reports whether every hidden item is checked.
	OnlyCheckedInOverflow bool `json:"only_checked_in_overflow"`
}

func (i *TextItem) Base() *Header { return &i.Header }
func (i *ListItem) Base() *Header { return &i.Header }

func (*TextItem) isItem() {}
func (*ListItem) isItem() {}
