package models

import (
	"fmt"
	"time"

	"github.com/starford/notes/internal/apperr"
)

// RecurrenceFinder finds occurrences of a recurrence rule. It is the oracle
// the reminder logic delegates to; rule evaluation lives elsewhere.
type RecurrenceFinder interface {
	// First returns the first occurrence of rule at or after start.
	First(rule string, start time.Time) (first time.Time, ok bool, err error)
	// Next returns the first occurrence of rule (anchored at start) strictly
	// after the given time. ok is false when the recurrence has no more events.
	Next(rule string, start, after time.Time) (next time.Time, ok bool, err error)
}

// Reminder is the reminder attached to a note.
type Reminder struct {
	// Start is the time of the first occurrence.
	Start time.Time `json:"start"`
	// Recurrence is an RFC 5545 RRULE, empty for a one-time reminder.
	Recurrence string `json:"recurrence,omitempty"`
	// Next is the next occurrence. For one-time reminders it may be the time
	// the reminder was postponed to; once Done it keeps the last occurrence.
	Next time.Time `json:"next"`
	// Count is the number of occurrences as of Next. Always 1 when not recurring.
	Count int `json:"count"`
	// Done reports whether the last occurrence was marked as done.
	Done bool `json:"done"`
}

// NewReminder creates a reminder starting at start. Recurring reminders have
// their first occurrence resolved through finder.
func NewReminder(start time.Time, recurrence string, finder RecurrenceFinder) (Reminder, error) {
	next := start
	if recurrence != "" {
		found, ok, err := finder.First(recurrence, start)
		if err != nil {
			return Reminder{}, fmt.Errorf("%w: recurrence: %v", apperr.ErrInvalid, err)
		}
		if !ok {
			return Reminder{}, fmt.Errorf("%w: recurring reminder has no events", apperr.ErrInvalid)
		}
		next = found
	}
	r := Reminder{Start: start, Recurrence: recurrence, Next: next, Count: 1}
	return r, r.Validate()
}

// IsRecurring reports whether the reminder has a recurrence rule.
func (r Reminder) IsRecurring() bool {
	return r.Recurrence != ""
}

// Validate enforces the occurrence count invariants.
func (r Reminder) Validate() error {
	if r.Count <= 0 {
		return fmt.Errorf("%w: count must be greater than zero", apperr.ErrInvalid)
	}
	if !r.IsRecurring() && r.Count != 1 {
		return fmt.Errorf("%w: count should be 1 if non-recurring", apperr.ErrInvalid)
	}
	return nil
}

// FindNext returns the reminder advanced to its next occurrence, with Done
// cleared. Non-recurring and exhausted reminders are returned unchanged.
func (r Reminder) FindNext(finder RecurrenceFinder) (Reminder, error) {
	if !r.IsRecurring() {
		return r, nil
	}
	found, ok, err := finder.Next(r.Recurrence, r.Start, r.Next)
	if err != nil {
		return r, fmt.Errorf("models: find next occurrence: %w", err)
	}
	if !ok {
		return r, nil
	}
	r.Next = found
	r.Count++
	r.Done = false
	return r, nil
}

// Postpone moves a one-time reminder to a later time. Only Next changes.
func (r Reminder) Postpone(to time.Time) (Reminder, error) {
	switch {
	case r.IsRecurring():
		return r, fmt.Errorf("%w: cannot postpone recurring reminder", apperr.ErrInvalid)
	case r.Done:
		return r, fmt.Errorf("%w: cannot postpone reminder marked as done", apperr.ErrInvalid)
	case !to.After(r.Next):
		return r, fmt.Errorf("%w: postponed time must be after current time", apperr.ErrInvalid)
	}
	r.Next = to
	return r, nil
}

// MarkDone returns the reminder with its last occurrence marked as done.
func (r Reminder) MarkDone() Reminder {
	r.Done = true
	return r
}
