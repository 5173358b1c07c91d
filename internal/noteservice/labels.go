package noteservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/sse"
)

// ListLabels returns every label ordered by name.
func (s *Service) ListLabels(ctx context.Context) ([]models.Label, error) {
	return s.repo.ListLabels(ctx)
}

// CreateLabel creates a label. Names are trimmed and must be unique.
func (s *Service) CreateLabel(ctx context.Context, name string, hidden bool) (models.Label, error) {
	ctx = context.WithoutCancel(ctx)
	l := models.Label{Name: strings.TrimSpace(name), Hidden: hidden}
	if err := l.Validate(); err != nil {
		return models.Label{}, fmt.Errorf("noteservice: %w: label: %v", apperr.ErrInvalid, err)
	}
	id, err := s.repo.InsertLabel(ctx, l)
	if err != nil {
		return models.Label{}, fmt.Errorf("noteservice: create label: %w", err)
	}
	l.ID = id
	s.publishLabels()
	return l, nil
}

// UpdateLabel renames a label or changes its visibility.
func (s *Service) UpdateLabel(ctx context.Context, l models.Label) (models.Label, error) {
	ctx = context.WithoutCancel(ctx)
	l.Name = strings.TrimSpace(l.Name)
	if err := l.Validate(); err != nil {
		return models.Label{}, fmt.Errorf("noteservice: %w: label: %v", apperr.ErrInvalid, err)
	}
	if err := s.repo.UpdateLabel(ctx, l); err != nil {
		return models.Label{}, fmt.Errorf("noteservice: update label: %w", err)
	}
	s.publishLabels()
	return l, nil
}

// DeleteLabel deletes a label and removes it from every note.
func (s *Service) DeleteLabel(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.DeleteLabel(ctx, id); err != nil {
		return fmt.Errorf("noteservice: delete label: %w", err)
	}
	s.publishLabels()
	return nil
}

// labelIDs resolves label names to IDs, creating missing labels.
func (s *Service) labelIDs(ctx context.Context, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		l, err := s.repo.GetLabelByName(ctx, name)
		if err == nil {
			ids = append(ids, l.ID)
			continue
		}
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
		created, err := s.CreateLabel(ctx, name, false)
		if err != nil {
			return nil, err
		}
		ids = append(ids, created.ID)
	}
	return ids, nil
}

func (s *Service) publishLabels() {
	s.events.Publish(sse.Event{Type: sse.EventLabelsChanged, Data: map[string]any{}})
}
