package noteservice

import (
	"context"
	"fmt"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
)

// canTransition reports whether a note may move from one status to another.
// Deleted notes can only be restored to active.
func canTransition(from, to models.NoteStatus) bool {
	switch to {
	case models.StatusActive:
		return from == models.StatusArchived || from == models.StatusDeleted
	case models.StatusArchived:
		return from == models.StatusActive
	case models.StatusDeleted:
		return from == models.StatusActive || from == models.StatusArchived
	}
	return false
}

// SetStatus moves notes to status. Every note must allow the transition,
// otherwise nothing changes. Trashed notes lose their pin and reminder.
func (s *Service) SetStatus(ctx context.Context, ids []int64, status models.NoteStatus) ([]models.Note, error) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()
	notes := make([]models.Note, 0, len(ids))
	for _, id := range ids {
		n, err := s.repo.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}
		if !canTransition(n.Status, status) {
			return nil, fmt.Errorf("noteservice: note %d: %w: cannot move from %s to %s",
				id, apperr.ErrInvalid, n.Status, status)
		}
		notes = append(notes, n.WithStatus(status, now))
	}
	if err := s.repo.UpdateNotes(ctx, notes); err != nil {
		return nil, fmt.Errorf("noteservice: set status: %w", err)
	}
	for _, n := range notes {
		s.alarms.SetAlarm(n)
		s.events.PublishNoteEvent(EventUpdated, n.ID)
	}
	return notes, nil
}

// SetPinned pins or unpins a note. Deleted notes cannot be pinned.
func (s *Service) SetPinned(ctx context.Context, id int64, pinned bool) (models.Note, error) {
	ctx = context.WithoutCancel(ctx)
	n, err := s.repo.GetNote(ctx, id)
	if err != nil {
		return models.Note{}, err
	}
	n.Pinned = pinned
	n.LastModifiedDate = s.now()
	if err := n.Validate(); err != nil {
		return models.Note{}, err
	}
	if err := s.repo.UpdateNote(ctx, n); err != nil {
		return models.Note{}, fmt.Errorf("noteservice: set pinned: %w", err)
	}
	s.events.PublishNoteEvent(EventUpdated, id)
	return n, nil
}

// SetNoteLabels replaces the labels of a note.
func (s *Service) SetNoteLabels(ctx context.Context, id int64, labelIDs []int64) (models.NoteWithLabels, error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.SetNoteLabels(ctx, id, labelIDs); err != nil {
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: set labels: %w", err)
	}
	s.events.PublishNoteEvent(EventUpdated, id)
	return s.repo.GetNoteWithLabels(ctx, id)
}
