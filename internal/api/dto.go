package api

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
	"github.com/starford/notes/internal/preview"
	"github.com/starford/notes/internal/store"
)

// NoteRequest is the request body for creating or replacing a note.
type NoteRequest struct {
	Kind     models.NoteKind   `json:"kind" example:"list" validate:"required"`
	Title    string            `json:"title" example:"Groceries"`
	Content  string            `json:"content,omitempty"`
	Items    []models.ListItem `json:"items,omitempty"`
	Pinned   bool              `json:"pinned"`
	LabelIDs []int64           `json:"label_ids,omitempty"`
}

func (r *NoteRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required, validation.In(models.KindText, models.KindList)),
		validation.Field(&r.Title, validation.Length(0, 1000)),
	)
}

func (r *NoteRequest) input() noteservice.NoteInput {
	return noteservice.NoteInput{
		Kind:     r.Kind,
		Title:    r.Title,
		Content:  r.Content,
		Items:    r.Items,
		Pinned:   r.Pinned,
		LabelIDs: r.LabelIDs,
	}
}

// ReminderRequest sets the reminder of a note.
type ReminderRequest struct {
	Start      time.Time `json:"start" validate:"required"`
	Recurrence string    `json:"recurrence,omitempty" example:"FREQ=WEEKLY;BYDAY=MO"`
}

func (r *ReminderRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Start, validation.Required),
	)
}

// PostponeRequest moves a one-time reminder.
type PostponeRequest struct {
	To time.Time `json:"to" validate:"required"`
}

func (r *PostponeRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.To, validation.Required),
	)
}

// LabelsRequest replaces the labels of a note.
type LabelsRequest struct {
	LabelIDs []int64 `json:"label_ids"`
}

func (r *LabelsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LabelIDs, validation.Each(validation.Min(int64(1)))),
	)
}

// LabelRequest creates or renames a label.
type LabelRequest struct {
	Name   string `json:"name" example:"work" validate:"required"`
	Hidden bool   `json:"hidden"`
}

func (r *LabelRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 64)),
	)
}

// PreferencesRequest replaces the display preferences.
type PreferencesRequest struct {
	preview.Preferences
}

func (r *PreferencesRequest) Validate() error {
	return r.Preferences.Validate()
}

// NoteResponse is a note with its labels and version tag.
type NoteResponse struct {
	Note    models.Note    `json:"note"`
	Labels  []models.Label `json:"labels"`
	Version string         `json:"version"`
}

func noteResponse(n models.NoteWithLabels) NoteResponse {
	labels := n.Labels
	if labels == nil {
		labels = []models.Label{}
	}
	return NoteResponse{Note: n.Note, Labels: labels, Version: noteservice.Version(n.Note)}
}

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteResponse `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []store.SearchResult `json:"results" validate:"required"`
}

// PreviewDTO tags a preview item with its kind. Exactly one of Text and List is set.
type PreviewDTO struct {
	Type string            `json:"type" example:"list" validate:"required"`
	Text *preview.TextItem `json:"text,omitempty"`
	List *preview.ListItem `json:"list,omitempty"`
}

func previewDTO(item preview.Item) PreviewDTO {
	switch it := item.(type) {
	case *preview.TextItem:
		return PreviewDTO{Type: string(models.KindText), Text: it}
	case *preview.ListItem:
		return PreviewDTO{Type: string(models.KindList), List: it}
	default:
		panic(fmt.Sprintf("api: unknown preview item %T", item))
	}
}

// PreviewListResponse wraps preview items.
type PreviewListResponse struct {
	Previews []PreviewDTO `json:"previews" validate:"required"`
}

// StatusChangeResponse lists the notes whose status changed.
type StatusChangeResponse struct {
	Notes []models.Note `json:"notes" validate:"required"`
}

// CountResponse reports how many notes an operation removed.
type CountResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}
