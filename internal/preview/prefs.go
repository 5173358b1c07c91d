package preview

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// Layout is the arrangement of the note list.
type Layout string

const (
	LayoutList Layout = "list"
	LayoutGrid Layout = "grid"
)

// DateField selects which note date is shown in a preview.
type DateField string

const (
	DateAdded    DateField = "added"
	DateModified DateField = "modified"
	DateNone     DateField = "none"
)

// Preferences are the user display settings that shape previews.
type Preferences struct {
	MaxPreviewLinesText int                 `yaml:"max_preview_lines_text" json:"max_preview_lines_text"`
	MaxPreviewItemsList int                 `yaml:"max_preview_items_list" json:"max_preview_items_list"`
	MoveCheckedToBottom bool                `yaml:"move_checked_to_bottom" json:"move_checked_to_bottom"`
	MaxLabelsShown      int                 `yaml:"max_labels_shown" json:"max_labels_shown"`
	Layout              Layout              `yaml:"layout" json:"layout"`
	ShownDateField      DateField           `yaml:"shown_date_field" json:"shown_date_field"`
	Sort                models.SortSettings `yaml:"sort" json:"sort"`
}

// DefaultPreferences returns the preferences of a fresh installation.
func DefaultPreferences() Preferences {
	return Preferences{
		MaxPreviewLinesText: 5,
		MaxPreviewItemsList: 5,
		MaxLabelsShown:      3,
		Layout:              LayoutList,
		ShownDateField:      DateNone,
		Sort:                models.DefaultSortSettings(),
	}
}

// Validate validates the preferences. Maximum counts must not be negative.
func (p *Preferences) Validate() error {
	err := validation.ValidateStruct(p,
		validation.Field(&p.MaxPreviewLinesText, validation.Min(0)),
		validation.Field(&p.MaxPreviewItemsList, validation.Min(0)),
		validation.Field(&p.MaxLabelsShown, validation.Min(0)),
		validation.Field(&p.Layout, validation.Required, validation.In(LayoutList, LayoutGrid)),
		validation.Field(&p.ShownDateField, validation.Required, validation.In(DateAdded, DateModified, DateNone)),
	)
	if err == nil {
		err = p.Sort.Validate()
	}
	if err != nil {
		return fmt.Errorf("%w: preferences: %v", apperr.ErrInvalid, err)
	}
	return nil
}
