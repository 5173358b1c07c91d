// Package importer watches an inbox directory and imports the Markdown notes
// dropped into it.
package importer

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/storage"
)

const (
	// ImportedDir and FailedDir are the inbox subdirectories processed files
	// are moved to.
	ImportedDir = "imported"
	FailedDir   = "failed"

	// DefaultSettle is how long the inbox must stay quiet before it is swept,
	// so that files still being written are not imported half-way.
	DefaultSettle = 300 * time.Millisecond
)

// Importer creates a note from a file in dir.
type Importer interface {
	ImportFile(ctx context.Context, dir storage.Provider, file string) (models.NoteWithLabels, error)
}

// EventCallback is called after each processed file. err is nil when the
// file was imported.
type EventCallback func(file string, noteID int64, err error)

// Inbox imports Markdown files dropped into a directory.
type Inbox struct {
	svc    Importer
	dir    storage.Provider
	logger *slog.Logger
	settle time.Duration
	cb     EventCallback
}

// New creates an inbox over dir. settle <= 0 uses DefaultSettle; cb may be nil.
func New(svc Importer, dir storage.Provider, logger *slog.Logger, settle time.Duration, cb EventCallback) *Inbox {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Inbox{svc: svc, dir: dir, logger: logger, settle: settle, cb: cb}
}

// Watch sweeps the inbox once, then watches it with fsnotify and sweeps again
// whenever Markdown files are created or written, until ctx is cancelled.
// Only the inbox root is watched, so processed files are never seen twice.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(in.dir.Root()); err != nil {
		return err
	}
	in.logger.Info("inbox: started", slog.String("root", in.dir.Root()))
	in.Sweep(ctx)

	// sweepTimer debounces bursts of write events.
	var sweepTimer *time.Timer
	var sweepCh <-chan time.Time

	scheduleSweep := func() {
		if sweepTimer == nil {
			sweepTimer = time.NewTimer(in.settle)
			sweepCh = sweepTimer.C
		} else {
			sweepTimer.Reset(in.settle)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if sweepTimer != nil {
				sweepTimer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-sweepCh:
			in.Sweep(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !storage.IsMarkdown(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				scheduleSweep()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

// Sweep imports every Markdown file in the inbox root. Imported files move
// to ImportedDir, files that fail to import move to FailedDir. It returns the
// number of notes imported.
func (in *Inbox) Sweep(ctx context.Context) int {
	files, err := in.dir.List("")
	if err != nil {
		in.logger.Warn("inbox: list failed", slog.String("error", err.Error()))
		return 0
	}
	imported := 0
	for _, f := range files {
		if ctx.Err() != nil {
			break
		}
		n, importErr := in.svc.ImportFile(ctx, in.dir, f.Path)
		target := path.Join(ImportedDir, f.Path)
		if importErr != nil {
			target = path.Join(FailedDir, f.Path)
			in.logger.Warn("inbox: import failed", slog.String("file", f.Path), slog.String("error", importErr.Error()))
		} else {
			imported++
			in.logger.Info("inbox: imported", slog.String("file", f.Path), slog.Int64("note_id", n.Note.ID))
		}
		if err := in.dir.Move(f.Path, uniquePath(in.dir, target)); err != nil {
			in.logger.Error("inbox: move failed", slog.String("file", f.Path), slog.String("error", err.Error()))
		}
		if in.cb != nil {
			in.cb(f.Path, n.Note.ID, importErr)
		}
	}
	return imported
}

// uniquePath appends a timestamp to target when a file with that name was
// already processed.
func uniquePath(dir storage.Provider, target string) string {
	if _, err := dir.Read(target); err != nil {
		return target
	}
	ext := path.Ext(target)
	return strings.TrimSuffix(target, ext) + "-" + time.Now().Format("20060102T150405.000000000") + ext
}
