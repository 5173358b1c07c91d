package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/starford/notes/internal/mcpserver"
	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
	"github.com/starford/notes/internal/render"
	"github.com/starford/notes/internal/storage"
)

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	if err := rt.open(ctx); err != nil {
		return err
	}
	defer rt.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, rt.version).ServeStdio()
}

// PreviewOptions selects and lays out the notes printed by Preview. A blank
// Query selects without highlighting.
type PreviewOptions struct {
	Status models.NoteStatus
	Query  string
	Width  int
}

// Preview prints the previews of the selected notes to w.
func Preview(ctx context.Context, w io.Writer, p PreviewOptions, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	if err := rt.open(ctx); err != nil {
		return err
	}
	defer rt.Close()

	query := strings.TrimSpace(p.Query)
	items, err := rt.svc.Previews(ctx, noteservice.ListOptions{Status: p.Status, Query: query})
	if err != nil {
		return fmt.Errorf("previews: %w", err)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no notes")
		return err
	}
	r := render.New(p.Width, rt.svc.Preferences().MaxPreviewLinesText)
	_, err = fmt.Fprintln(w, r.RenderAll(items))
	return err
}

// Export writes every note into dir as Markdown and returns how many were written.
func Export(ctx context.Context, dir string, opts ...Option) (int, error) {
	rt, err := setup(opts)
	if err != nil {
		return 0, err
	}
	if err := rt.open(ctx); err != nil {
		return 0, err
	}
	defer rt.Close()

	out, err := storage.NewFS(dir)
	if err != nil {
		return 0, fmt.Errorf("export dir: %w", err)
	}
	n, err := rt.svc.Export(ctx, out)
	if err != nil {
		return n, err
	}
	rt.logger.Info("notes exported", slog.Int("count", n), slog.String("dir", dir))
	return n, nil
}

// Import creates notes from the Markdown files in dir and returns how many were imported.
func Import(ctx context.Context, dir string, opts ...Option) (int, error) {
	rt, err := setup(opts)
	if err != nil {
		return 0, err
	}
	if err := rt.open(ctx); err != nil {
		return 0, err
	}
	defer rt.Close()

	in, err := storage.NewFS(dir)
	if err != nil {
		return 0, fmt.Errorf("import dir: %w", err)
	}
	n, err := rt.svc.ImportDir(ctx, in)
	if err != nil {
		return n, err
	}
	rt.logger.Info("notes imported", slog.Int("count", n), slog.String("dir", dir))
	return n, nil
}

// Clear deletes every note and label.
func Clear(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts)
	if err != nil {
		return err
	}
	if err := rt.open(ctx); err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.svc.Clear(ctx); err != nil {
		return err
	}
	rt.logger.Info("all notes and labels deleted")
	return nil
}
