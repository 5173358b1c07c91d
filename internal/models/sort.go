package models

import validation "github.com/go-ozzo/ozzo-validation/v4"

// SortField selects the note attribute lists are ordered by.
type SortField string

const (
	SortAdded    SortField = "added"
	SortModified SortField = "modified"
	SortTitle    SortField = "title"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSettings controls note list ordering. Pinned notes always come first.
type SortSettings struct {
	Field     SortField     `yaml:"field" json:"field"`
	Direction SortDirection `yaml:"direction" json:"direction"`
}

// DefaultSortSettings orders by last modification, newest first.
func DefaultSortSettings() SortSettings {
	return SortSettings{Field: SortModified, Direction: SortDesc}
}

// Validate validates the sort settings.
func (s *SortSettings) Validate() error {
	return validation.ValidateStruct(s,
		validation.Field(&s.Field, validation.Required, validation.In(SortAdded, SortModified, SortTitle)),
		validation.Field(&s.Direction, validation.Required, validation.In(SortAsc, SortDesc)),
	)
}
