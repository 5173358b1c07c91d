// Package models defines the domain types for notes.
package models

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notes/internal/apperr"
)

// NoteKind is the kind of body a note carries.
type NoteKind string

const (
	KindText NoteKind = "text"
	KindList NoteKind = "list"
)

// NoteStatus is the lifecycle state of a note.
type NoteStatus string

const (
	StatusActive   NoteStatus = "active"
	StatusArchived NoteStatus = "archived"
	StatusDeleted  NoteStatus = "deleted" // in trash, purged automatically after a delay
)

// Valid reports whether s is a known status.
func (s NoteStatus) Valid() bool {
	switch s {
	case StatusActive, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// NoID marks an entity that has not been persisted yet.
const NoID int64 = 0

// ListItem is one checklist entry of a list note.
type ListItem struct {
	Content string `json:"content"`
	Checked bool   `json:"checked"`
}

// Note is a snapshot of a stored note.
type Note struct {
	ID               int64      `json:"id"`
	Kind             NoteKind   `json:"kind"`
	Title            string     `json:"title"`
	Content          string     `json:"content,omitempty"`
	Items            []ListItem `json:"items,omitempty"`
	Status           NoteStatus `json:"status"`
	Pinned           bool       `json:"pinned"`
	AddedDate        time.Time  `json:"added_date"`
	LastModifiedDate time.Time  `json:"last_modified_date"`
	Reminder         *Reminder  `json:"reminder,omitempty"`
}

// Validate checks that the note kind and body agree and that enums are known.
func (n *Note) Validate() error {
	err := validation.ValidateStruct(n,
		validation.Field(&n.Kind, validation.Required, validation.In(KindText, KindList)),
		validation.Field(&n.Status, validation.Required, validation.In(StatusActive, StatusArchived, StatusDeleted)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
	}
	if n.Kind == KindText && len(n.Items) > 0 {
		return fmt.Errorf("%w: text note cannot have list items", apperr.ErrInvalid)
	}
	if n.Kind == KindList && n.Content != "" {
		return fmt.Errorf("%w: list note content must be given as items", apperr.ErrInvalid)
	}
	if n.Pinned && n.Status == StatusDeleted {
		return fmt.Errorf("%w: deleted note cannot be pinned", apperr.ErrInvalid)
	}
	if n.Reminder != nil {
		if err := n.Reminder.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Normalize trims the title and every list item in place.
func (n *Note) Normalize() {
	n.Title = strings.TrimSpace(n.Title)
	for i := range n.Items {
		n.Items[i].Content = strings.TrimSpace(n.Items[i].Content)
	}
}

// Clone returns a deep copy so callers can mutate items freely.
func (n Note) Clone() Note {
	if n.Items != nil {
		n.Items = append([]ListItem(nil), n.Items...)
	}
	if n.Reminder != nil {
		r := *n.Reminder
		n.Reminder = &r
	}
	return n
}

// WithStatus returns a copy of the note moved to status, applying the
// transition rules: trashed notes lose their pin and reminder.
func (n Note) WithStatus(status NoteStatus, now time.Time) Note {
	c := n.Clone()
	c.Status = status
	c.LastModifiedDate = now
	if status == StatusDeleted {
		c.Pinned = false
		c.Reminder = nil
	}
	return c
}

// Label is a user-defined tag attached to notes.
type Label struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Validate checks the label name.
func (l *Label) Validate() error {
	return validation.ValidateStruct(l,
		validation.Field(&l.Name, validation.Required, validation.Length(1, 64)),
	)
}

// NoteWithLabels pairs a note with its labels, in label name order.
type NoteWithLabels struct {
	Note   Note    `json:"note"`
	Labels []Label `json:"labels"`
}
