package noteservice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/sse"
)

// EmptyTrash permanently deletes every note in the trash.
func (s *Service) EmptyTrash(ctx context.Context) (int64, error) {
	return s.deleteTrash(context.WithoutCancel(ctx), time.Time{})
}

// PurgeTrash permanently deletes notes that have been in the trash longer
// than the retention delay.
func (s *Service) PurgeTrash(ctx context.Context) (int64, error) {
	return s.deleteTrash(context.WithoutCancel(ctx), s.now().Add(-s.trashRetention))
}

func (s *Service) deleteTrash(ctx context.Context, before time.Time) (int64, error) {
	n, err := s.repo.DeleteNotesByStatus(ctx, models.StatusDeleted, before)
	if err != nil {
		return 0, fmt.Errorf("noteservice: delete trash: %w", err)
	}
	if n > 0 {
		s.events.Publish(sse.Event{Type: sse.EventTrashEmptied, Data: map[string]int64{"count": n}})
	}
	return n, nil
}

// RunTrashPurge purges the trash every interval until ctx is cancelled.
func (s *Service) RunTrashPurge(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if n, err := s.PurgeTrash(ctx); err != nil {
			s.logger.Warn("trash purge failed", slog.String("error", err.Error()))
		} else if n > 0 {
			s.logger.Info("trash purged", slog.Int64("count", n))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
