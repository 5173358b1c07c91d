package models

import (
	"errors"
	"testing"
	"time"

	"github.com/starford/notes/internal/apperr"
)

// dailyFinder treats every rule as "daily, limit occurrences".
type dailyFinder struct {
	limit int
}

func (f dailyFinder) First(_ string, start time.Time) (time.Time, bool, error) {
	return start, true, nil
}

func (f dailyFinder) Next(_ string, start, after time.Time) (time.Time, bool, error) {
	next := start
	for i := 0; f.limit == 0 || i < f.limit; i++ {
		if next.After(after) {
			return next, true, nil
		}
		next = next.Add(24 * time.Hour)
	}
	return time.Time{}, false, nil
}

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewReminder_OneTime(t *testing.T) {
	r, err := NewReminder(t0, "", nil)
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	if !r.Next.Equal(t0) || r.Count != 1 || r.Done {
		t.Errorf("reminder = %+v", r)
	}
}

func TestNewReminder_Recurring(t *testing.T) {
	r, err := NewReminder(t0, "FREQ=DAILY", dailyFinder{})
	if err != nil {
		t.Fatalf("NewReminder: %v", err)
	}
	if !r.IsRecurring() || !r.Next.Equal(t0) {
		t.Errorf("reminder = %+v", r)
	}
}

func TestReminder_Validate(t *testing.T) {
	cases := []struct {
		name string
		r    Reminder
		ok   bool
	}{
		{"one-time", Reminder{Start: t0, Next: t0, Count: 1}, true},
		{"zero count", Reminder{Start: t0, Next: t0, Count: 0}, false},
		{"one-time count 2", Reminder{Start: t0, Next: t0, Count: 2}, false},
		{"recurring count 5", Reminder{Start: t0, Recurrence: "FREQ=DAILY", Next: t0, Count: 5}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.r.Validate()
			if (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tc.ok)
			}
			if err != nil && !errors.Is(err, apperr.ErrInvalid) {
				t.Errorf("error %v is not ErrInvalid", err)
			}
		})
	}
}

func TestReminder_Postpone(t *testing.T) {
	r, _ := NewReminder(t0, "", nil)

	if _, err := r.Postpone(t0.Add(-time.Hour)); err == nil {
		t.Error("postponing to the past should fail")
	}
	if _, err := r.Postpone(t0); err == nil {
		t.Error("postponing to the current next time should fail")
	}

	later := t0.Add(2 * time.Hour)
	p, err := r.Postpone(later)
	if err != nil {
		t.Fatalf("Postpone: %v", err)
	}
	if !p.Next.Equal(later) {
		t.Errorf("next = %v, want %v", p.Next, later)
	}
	if !p.Start.Equal(r.Start) || p.Count != r.Count || p.Done != r.Done {
		t.Errorf("postpone changed more than next: %+v", p)
	}
}

func TestReminder_PostponeRejected(t *testing.T) {
	recurring, _ := NewReminder(t0, "FREQ=DAILY", dailyFinder{})
	if _, err := recurring.Postpone(t0.Add(time.Hour)); err == nil {
		t.Error("recurring reminder should not be postponable")
	}
	done := Reminder{Start: t0, Next: t0, Count: 1}.MarkDone()
	if _, err := done.Postpone(t0.Add(time.Hour)); err == nil {
		t.Error("done reminder should not be postponable")
	}
}

func TestReminder_FindNext(t *testing.T) {
	r, _ := NewReminder(t0, "FREQ=DAILY;COUNT=2", dailyFinder{limit: 2})
	r = r.MarkDone()

	next, err := r.FindNext(dailyFinder{limit: 2})
	if err != nil {
		t.Fatalf("FindNext: %v", err)
	}
	if !next.Next.Equal(t0.Add(24*time.Hour)) || next.Count != 2 || next.Done {
		t.Errorf("next = %+v", next)
	}

	// Exhausted: unchanged.
	again, err := next.FindNext(dailyFinder{limit: 2})
	if err != nil {
		t.Fatalf("FindNext: %v", err)
	}
	if again != next {
		t.Errorf("exhausted reminder changed: %+v", again)
	}
}

func TestReminder_FindNextOneTime(t *testing.T) {
	r, _ := NewReminder(t0, "", nil)
	got, err := r.FindNext(dailyFinder{})
	if err != nil {
		t.Fatal(err)
	}
	if got != r {
		t.Errorf("one-time reminder changed: %+v", got)
	}
}

func TestNote_Validate(t *testing.T) {
	text := Note{Kind: KindText, Status: StatusActive, Items: []ListItem{{Content: "x"}}}
	if err := text.Validate(); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("text note with items: err = %v", err)
	}
	list := Note{Kind: KindList, Status: StatusActive, Items: []ListItem{{Content: "x"}}}
	if err := list.Validate(); err != nil {
		t.Errorf("list note: %v", err)
	}
	bad := Note{Kind: "drawing", Status: StatusActive}
	if err := bad.Validate(); err == nil {
		t.Error("unknown kind should fail")
	}
}

func TestNote_WithStatusTrashClearsPinAndReminder(t *testing.T) {
	r, _ := NewReminder(t0, "", nil)
	n := Note{Kind: KindText, Status: StatusActive, Pinned: true, Reminder: &r}
	d := n.WithStatus(StatusDeleted, t0)
	if d.Pinned || d.Reminder != nil || d.Status != StatusDeleted {
		t.Errorf("trashed note = %+v", d)
	}
	if !n.Pinned || n.Reminder == nil {
		t.Error("original note was mutated")
	}
}
