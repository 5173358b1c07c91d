package noteservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/parser"
	"github.com/starford/notes/internal/storage"
	"github.com/starford/notes/internal/store"
)

// Export writes every note as a Markdown file into dir and returns how many
// were written. Files are named after the note ID and title.
func (s *Service) Export(ctx context.Context, dir storage.Provider) (int, error) {
	notes, err := s.repo.ListNotes(ctx, store.Filter{Sort: models.SortSettings{Field: models.SortAdded, Direction: models.SortAsc}})
	if err != nil {
		return 0, fmt.Errorf("noteservice: export: %w", err)
	}
	for i, n := range notes {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		names := make([]string, len(n.Labels))
		for j, l := range n.Labels {
			names[j] = l.Name
		}
		data, err := parser.Format(n.Note, names)
		if err != nil {
			return i, err
		}
		if err := dir.Write(parser.FileName(n.Note), data); err != nil {
			return i, fmt.Errorf("noteservice: export note %d: %w", n.Note.ID, err)
		}
	}
	return len(notes), nil
}

// ImportFile creates a note from a Markdown file in dir.
func (s *Service) ImportFile(ctx context.Context, dir storage.Provider, file string) (models.NoteWithLabels, error) {
	data, err := dir.Read(file)
	if err != nil {
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: import %s: %w", file, err)
	}
	n, err := s.ImportMarkdown(ctx, data)
	if err != nil {
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: import %s: %w", file, err)
	}
	s.logger.Debug("note imported", slog.String("file", file), slog.Int64("note_id", n.Note.ID))
	return n, nil
}

// ImportMarkdown creates a note from Markdown with YAML frontmatter. Labels
// named in the frontmatter are created when missing. Missing dates are set to now.
func (s *Service) ImportMarkdown(ctx context.Context, data []byte) (models.NoteWithLabels, error) {
	ctx = context.WithoutCancel(ctx)
	res, err := parser.Parse(data)
	if err != nil {
		return models.NoteWithLabels{}, err
	}
	n := res.Note
	now := s.now()
	if n.AddedDate.IsZero() {
		n.AddedDate = now
	}
	if n.LastModifiedDate.IsZero() {
		n.LastModifiedDate = n.AddedDate
	}
	n.Normalize()
	if err := n.Validate(); err != nil {
		return models.NoteWithLabels{}, err
	}

	labelIDs, err := s.labelIDs(ctx, res.Labels)
	if err != nil {
		return models.NoteWithLabels{}, err
	}
	id, err := s.repo.InsertNote(ctx, n, labelIDs)
	if err != nil {
		return models.NoteWithLabels{}, fmt.Errorf("noteservice: insert note: %w", err)
	}
	n.ID = id
	s.alarms.SetAlarm(n)
	s.events.PublishNoteEvent(EventCreated, id)
	return s.repo.GetNoteWithLabels(ctx, id)
}

// ImportDir imports every Markdown file directly in dir. Files that fail to
// import are logged and skipped.
func (s *Service) ImportDir(ctx context.Context, dir storage.Provider) (int, error) {
	files, err := dir.List("")
	if err != nil {
		return 0, fmt.Errorf("noteservice: import: %w", err)
	}
	count := 0
	for _, f := range files {
		if _, err := s.ImportFile(ctx, dir, f.Path); err != nil {
			s.logger.Warn("import failed", slog.String("file", f.Path), slog.String("error", err.Error()))
			continue
		}
		count++
	}
	return count, nil
}
