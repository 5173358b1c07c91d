// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes note tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
	"github.com/starford/notes/internal/parser"
)

// Server wraps the MCP server with note tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all note tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notes",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note titles, text and list items."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes with a given status, pinned notes first."),
		mcp.WithString("status", mcp.Description("active (default), archived or deleted"),
			mcp.Enum(string(models.StatusActive), string(models.StatusArchived), string(models.StatusDeleted))),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read a note as Markdown with YAML frontmatter."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note ID")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Create a note from Markdown. Content MUST follow the note format "+
			"contract, available as the "+NoteFormatURI+" resource."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown note following the note format contract")),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("set_note_status",
		mcp.WithDescription("Archive, unarchive, trash or restore a note."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Note ID")),
		mcp.WithString("status", mcp.Required(), mcp.Description("Target status"),
			mcp.Enum(string(models.StatusActive), string(models.StatusArchived), string(models.StatusDeleted))),
	), s.setNoteStatus)

	// Resource: note format contract.
	s.mcp.AddResource(
		mcp.NewResource(NoteFormatURI, "Note Format Contract",
			mcp.WithResourceDescription("Markdown note format accepted by create_note."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// noteSummary is a list_notes entry.
type noteSummary struct {
	ID     int64             `json:"id"`
	Kind   models.NoteKind   `json:"kind"`
	Title  string            `json:"title"`
	Status models.NoteStatus `json:"status"`
	Pinned bool              `json:"pinned,omitempty"`
	Labels []string          `json:"labels,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func labelNames(labels []models.Label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := models.NoteStatus(req.GetString("status", string(models.StatusActive)))
	notes, err := s.svc.ListNotes(ctx, noteservice.ListOptions{Status: status})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]noteSummary, len(notes))
	for i, n := range notes {
		out[i] = noteSummary{
			ID:     n.Note.ID,
			Kind:   n.Note.Kind,
			Title:  n.Note.Title,
			Status: n.Note.Status,
			Pinned: n.Note.Pinned,
			Labels: labelNames(n.Labels),
		}
	}
	return jsonResult(out)
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.GetNote(ctx, int64(id))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %d", id)), nil
	}
	data, err := parser.Format(n.Note, labelNames(n.Labels))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.svc.ImportMarkdown(ctx, []byte(markdown))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %d", n.Note.ID)), nil
}

func (s *Server) setNoteStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status, err := req.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.SetStatus(ctx, []int64{int64(id)}, models.NoteStatus(status)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("note %d: %s", id, status)), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      NoteFormatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
