// Package noteservice implements note, label, reminder and preview operations
// over the note store. Mutating operations run detached from the caller's
// cancellation so that a disconnecting client never leaves a write half done.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/starford/notes/internal/apperr"
	"github.com/starford/notes/internal/checksum"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/preview"
	"github.com/starford/notes/internal/sse"
	"github.com/starford/notes/internal/store"
)

// Note event kinds passed to Notifier.PublishNoteEvent.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Notifier receives change notifications. *sse.Broker implements it.
type Notifier interface {
	PublishNoteEvent(kind string, id int64)
	Publish(event sse.Event)
}

// AlarmScheduler keeps reminder alarms in sync with notes. *alarm.Manager implements it.
type AlarmScheduler interface {
	SetAlarm(n models.Note)
	RemoveAlarm(noteID int64)
	UpdateAll(notes []models.Note)
}

// NoteInput holds the user-editable fields of a note.
type NoteInput struct {
	Kind    models.NoteKind   `json:"kind"`
	Title   string            `json:"title"`
	Content string            `json:"content,omitempty"`
	Items   []models.ListItem `json:"items,omitempty"`
	Pinned  bool              `json:"pinned"`
	// LabelIDs replaces the note labels. Nil leaves them unchanged on update.
	LabelIDs []int64 `json:"label_ids,omitempty"`
}

// Service coordinates the note store, reminder alarms and change events.
type Service struct {
	repo   store.Repository
	finder models.RecurrenceFinder
	prefs  atomic.Pointer[preview.Preferences]

	events          Notifier
	alarms          AlarmScheduler
	now             func() time.Time
	logger          *slog.Logger
	appendIDToTitle bool
	trashRetention  time.Duration
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets the change event sink.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.events = n }
}

// WithAlarms sets the reminder alarm scheduler.
func WithAlarms(a AlarmScheduler) Option {
	return func(s *Service) { s.alarms = a }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithAppendIDToTitle makes previews show note IDs after titles.
func WithAppendIDToTitle(v bool) Option {
	return func(s *Service) { s.appendIDToTitle = v }
}

// WithTrashRetention sets how long notes stay in the trash before PurgeTrash removes them.
func WithTrashRetention(d time.Duration) Option {
	return func(s *Service) { s.trashRetention = d }
}

// DefaultTrashRetention is how long deleted notes are kept.
const DefaultTrashRetention = 7 * 24 * time.Hour

// NewService creates a new note service.
func NewService(repo store.Repository, finder models.RecurrenceFinder, prefs preview.Preferences, opts ...Option) *Service {
	s := &Service{
		repo:           repo,
		finder:         finder,
		events:         nopNotifier{},
		alarms:         nopAlarms{},
		now:            time.Now,
		logger:         slog.Default(),
		trashRetention: DefaultTrashRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.prefs.Store(&prefs)
	return s
}

// Version returns the version tag of a note, used for If-Match checks.
func Version(n models.Note) string {
	return checksum.Of(n)
}

// GetNote returns a note with its labels.
func (s *Service) GetNote(ctx context.Context, id int64) (models.NoteWithLabels, error) {
	return s.repo.GetNoteWithLabels(ctx, id)
}

// CreateNote creates an active note.
func (s *Service) CreateNote(ctx context.Context, in NoteInput) (models.NoteWithLabels, error) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()
	n := models.Note{
		Kind:             in.Kind,
		Title:            in.Title,
		Content:          in.Content,
		Items:            in.Items,
		Status:           models.StatusActive,
		Pinned:           in.Pinned,
		AddedDate:        now,
		LastModifiedDate: now,
	}
	n.Normalize()
	if err := n.Validate(); err != nil {
		return models.NoteWithLabels{}, err
	}
	id, err := s.repo.InsertNote(ctx, n, in.LabelIDs)
	if err != nil {
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: create note: %w", err)
	}
	s.events.PublishNoteEvent(EventCreated, id)
	return s.repo.GetNoteWithLabels(ctx, id)
}

// UpdateNote replaces the editable fields of a note. A non-empty ifMatch
// must equal the current version of the note. The version check and the
// writes happen in one transaction.
func (s *Service) UpdateNote(ctx context.Context, id int64, in NoteInput, ifMatch string) (models.NoteWithLabels, error) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()
	_, err := s.repo.ModifyNote(ctx, id, in.LabelIDs, func(n *models.Note) error {
		if ifMatch != "" && ifMatch != Version(*n) {
			return fmt.Errorf("noteservice: note %d changed: %w", id, apperr.ErrConflict)
		}
		n.Kind, n.Title, n.Content, n.Items, n.Pinned = in.Kind, in.Title, in.Content, in.Items, in.Pinned
		n.LastModifiedDate = now
		n.Normalize()
		return n.Validate()
	})
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrInvalid) || errors.Is(err, apperr.ErrNotFound) {
			return models.NoteWithLabels{}, err
		}
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: update note: %w", err)
	}
	s.events.PublishNoteEvent(EventUpdated, id)
	return s.repo.GetNoteWithLabels(ctx, id)
}

// DeleteNote removes a note permanently.
func (s *Service) DeleteNote(ctx context.Context, id int64) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.DeleteNote(ctx, id); err != nil {
		return fmt.Errorf("noteservice: delete note: %w", err)
	}
	s.alarms.RemoveAlarm(id)
	s.events.PublishNoteEvent(EventDeleted, id)
	return nil
}

// ListOptions selects notes for ListNotes and Previews.
type ListOptions struct {
	Status       models.NoteStatus
	LabelID      int64
	Query        string
	WithReminder bool
	Limit        int
}

// ListNotes returns notes ordered by the sort preference, pinned notes first.
// Active notes carrying a hidden label are left out unless a label is selected.
func (s *Service) ListNotes(ctx context.Context, opts ListOptions) ([]models.NoteWithLabels, error) {
	return s.listNotes(ctx, opts, s.Preferences().Sort)
}

func (s *Service) listNotes(ctx context.Context, opts ListOptions, sort models.SortSettings) ([]models.NoteWithLabels, error) {
	notes, err := s.repo.ListNotes(ctx, store.Filter{
		Status:       opts.Status,
		LabelID:      opts.LabelID,
		Query:        opts.Query,
		WithReminder: opts.WithReminder,
		Sort:         sort,
		Limit:        opts.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("noteservice: list notes: %w", err)
	}
	if opts.Status != models.StatusActive || opts.LabelID != models.NoID {
		return notes, nil
	}
	out := notes[:0]
	for _, n := range notes {
		if !hasHiddenLabel(n.Labels) {
			out = append(out, n)
		}
	}
	return out, nil
}

func hasHiddenLabel(labels []models.Label) bool {
	for _, l := range labels {
		if l.Hidden {
			return true
		}
	}
	return false
}

// Search delegates full-text search to the store.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]store.SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("noteservice: %w: query is required", apperr.ErrInvalid)
	}
	return s.repo.Search(ctx, query, limit)
}

// Clear deletes all notes and labels.
func (s *Service) Clear(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("noteservice: clear: %w", err)
	}
	s.alarms.UpdateAll(nil)
	s.events.Publish(sse.Event{Type: sse.EventNotesCleared, Data: map[string]any{}})
	return nil
}

// Ready checks that the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

type nopNotifier struct{}

func (nopNotifier) PublishNoteEvent(string, int64) {}
func (nopNotifier) Publish(sse.Event) {}

type nopAlarms struct{}

func (nopAlarms) SetAlarm(models.Note) {}
func (nopAlarms) RemoveAlarm(int64) {}
func (nopAlarms) UpdateAll([]models.Note) {}
