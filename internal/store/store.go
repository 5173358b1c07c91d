package store

import (
	"context"
	"time"

	"github.com/starford/notes/internal/models"
)

// Repository defines the note persistence operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Repository interface {
	InsertNote(ctx context.Context, n models.Note, labelIDs []int64) (int64, error)
	UpdateNote(ctx context.Context, n models.Note) error
	UpdateNotes(ctx context.Context, notes []models.Note) error
	ModifyNote(ctx context.Context, id int64, labelIDs []int64, fn func(n *models.Note) error) (models.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	DeleteNotes(ctx context.Context, ids []int64) (int64, error)
	DeleteNotesByStatus(ctx context.Context, status models.NoteStatus, before time.Time) (int64, error)
	GetNote(ctx context.Context, id int64) (models.Note, error)
	GetNoteWithLabels(ctx context.Context, id int64) (models.NoteWithLabels, error)
	LastCreatedNote(ctx context.Context) (models.Note, error)
	ListNotes(ctx context.Context, f Filter) ([]models.NoteWithLabels, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Clear(ctx context.Context) error

	InsertLabel(ctx context.Context, l models.Label) (int64, error)
	UpdateLabel(ctx context.Context, l models.Label) error
	DeleteLabel(ctx context.Context, id int64) error
	GetLabelByName(ctx context.Context, name string) (models.Label, error)
	ListLabels(ctx context.Context) ([]models.Label, error)
	SetNoteLabels(ctx context.Context, noteID int64, labelIDs []int64) error

	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)
