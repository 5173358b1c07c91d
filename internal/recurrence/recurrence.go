// Package recurrence evaluates RFC 5545 recurrence rules for reminders.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Finder resolves reminder occurrences with rrule-go. The zero value is ready to use.
type Finder struct{}

// First returns the first occurrence of rule at or after start.
func (Finder) First(rule string, start time.Time) (time.Time, bool, error) {
	r, err := parse(rule, start)
	if err != nil {
		return time.Time{}, false, err
	}
	t := r.After(start.Truncate(time.Second), true)
	return t, !t.IsZero(), nil
}

// Next returns the first occurrence of rule, anchored at start, strictly after after.
func (Finder) Next(rule string, start, after time.Time) (time.Time, bool, error) {
	r, err := parse(rule, start)
	if err != nil {
		return time.Time{}, false, err
	}
	t := r.After(after, false)
	return t, !t.IsZero(), nil
}

// Validate reports whether rule parses.
func Validate(rule string) error {
	_, err := parse(rule, time.Now())
	return err
}

func parse(rule string, start time.Time) (*rrule.RRule, error) {
	rule = strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
	opt, err := rrule.StrToROption(rule)
	if err != nil {
		return nil, fmt.Errorf("recurrence: parse %q: %w", rule, err)
	}
	opt.Dtstart = start.Truncate(time.Second)
	r, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("recurrence: build %q: %w", rule, err)
	}
	return r, nil
}
