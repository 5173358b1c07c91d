package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/sse"
	"github.com/starford/notes/internal/store"
)

// ReminderFiredEvent is published when a reminder alarm goes off.
type ReminderFiredEvent struct {
	NoteID int64     `json:"note_id"`
	Title  string    `json:"title"`
	At     time.Time `json:"at"`
}

// SetReminder attaches a reminder to a note, replacing any previous one.
// recurrence is an RRULE, empty for a one-time reminder.
func (s *Service) SetReminder(ctx context.Context, id int64, start time.Time, recurrence string) (models.Note, error) {
	return s.updateReminder(ctx, id, func(n *models.Note) error {
		if n.Status == models.StatusDeleted {
			return fmt.Errorf("%w: deleted note cannot have a reminder", apperr.ErrInvalid)
		}
		r, err := models.NewReminder(start, recurrence, s.finder)
		if err != nil {
			return err
		}
		n.Reminder = &r
		return nil
	})
}

// RemoveReminder removes the reminder of a note.
func (s *Service) RemoveReminder(ctx context.Context, id int64) (models.Note, error) {
	return s.updateReminder(ctx, id, func(n *models.Note) error {
		n.Reminder = nil
		return nil
	})
}

// PostponeReminder moves a one-time reminder to a later time.
func (s *Service) PostponeReminder(ctx context.Context, id int64, to time.Time) (models.Note, error) {
	return s.updateReminder(ctx, id, func(n *models.Note) error {
		if n.Reminder == nil {
			return fmt.Errorf("%w: note has no reminder", apperr.ErrInvalid)
		}
		r, err := n.Reminder.Postpone(to)
		if err != nil {
			return err
		}
		n.Reminder = &r
		return nil
	})
}

// MarkReminderDone marks the last occurrence of a note reminder as done.
func (s *Service) MarkReminderDone(ctx context.Context, id int64) (models.Note, error) {
	return s.updateReminder(ctx, id, func(n *models.Note) error {
		if n.Reminder == nil {
			return fmt.Errorf("%w: note has no reminder", apperr.ErrInvalid)
		}
		r := n.Reminder.MarkDone()
		n.Reminder = &r
		return nil
	})
}

func (s *Service) updateReminder(ctx context.Context, id int64, fn func(n *models.Note) error) (models.Note, error) {
	ctx = context.WithoutCancel(ctx)
	n, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	if err := fn(&n); err != nil {
		return models.Note{}, fmt.Errorf("noteservice: note %d reminder: %w", id, err)
	}
	n.LastModifiedDate = s.now()
	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return models.Note{}, fmt.Errorf("noteservice: update reminder: %w", err)
	}
	s.alarms.SetAlarm(n)
	s.events.PublishNoteEvent(EventUpdated, id)
	return n, nil
}

// ReminderFired handles an alarm going off for a note: it publishes a
// reminder event and, for recurring reminders, advances the reminder to its
// next occurrence and schedules it.
func (s *Service) ReminderFired(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	n, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return fmt.Errorf("noteservice: reminder fired: %w", err)
	}
	r := n.Reminder
	if r == nil || r.Done || n.Status == models.StatusDeleted {
		return nil
	}
	s.logger.Info("reminder fired", slog.Int64("note_id", id), slog.Time("at", r.Next))
	s.events.Publish(sse.Event{Type: sse.EventReminderFired, Data: ReminderFiredEvent{NoteID: id, Title: n.Title, At: r.Next}})

	if !r.IsRecurring() {
		return nil
	}
	next, err := r.FindNext(s.finder)
	if err != nil {
		return fmt.Errorf("noteservice: reminder fired: %w", err)
	}
	if next.Count == r.Count {
		// Recurrence exhausted, nothing left to schedule.
		return nil
	}
	n.Reminder = &next
	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return fmt.Errorf("noteservice: reminder fired: %w", err)
	}
	s.alarms.SetAlarm(n)
	s.events.PublishNoteEvent(EventUpdated, id)
	return nil
}

// UpdateAllAlarms reschedules the alarms of every note with a reminder.
func (s *Service) UpdateAllAlarms(ctx context.Context) error {
	notes, err := s.repo.ListNotes(ctx, store.Filter{WithReminder: true})
	if err != nil {
		return fmt.Errorf("noteservice: update alarms: %w", err)
	}
	plain := make([]models.Note, len(notes))
	for i, n := range notes {
		plain[i] = n.Note
	}
	s.alarms.UpdateAll(plain)
	return nil
}
