package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathID extracts a positive integer URL parameter, answering 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid "+name))
		return 0, false
	}
	return id, true
}

// listOptions parses the status, label, q, reminder and limit query parameters.
// Status defaults to active.
func listOptions(w http.ResponseWriter, r *http.Request) (noteservice.ListOptions, bool) {
	q := r.URL.Query()
	opts := noteservice.ListOptions{
		Status:       models.NoteStatus(q.Get("status")),
		Query:        strings.TrimSpace(q.Get("q")),
		WithReminder: q.Get("reminder") == "true",
	}
	if opts.Status == "" {
		opts.Status = models.StatusActive
	}
	if !opts.Status.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid status"))
		return opts, false
	}
	if v := q.Get("label"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid label"))
			return opts, false
		}
		opts.LabelID = id
	}
	opts.Limit, _ = strconv.Atoi(q.Get("limit"))
	return opts, true
}

// writeNote answers with a note and its version as ETag.
func writeNote(w http.ResponseWriter, status int, n models.NoteWithLabels) {
	resp := noteResponse(n)
	w.Header().Set("ETag", strconv.Quote(resp.Version))
	writeJSON(w, status, resp)
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes with optional filtering
//	@Tags			notes
//	@Produce		json
//	@Param			status		query		string	false	"Note status"	Enums(active, archived, deleted)
//	@Param			label		query		int		false	"Filter by label ID"
//	@Param			q			query		string	false	"Filter by text"
//	@Param			reminder	query		bool	false	"Only notes with a reminder"
//	@Param			limit		query		int		false	"Page size"
//	@Success		200			{object}	NoteListResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	notes, err := h.svc.ListNotes(r.Context(), opts)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	resp := NoteListResponse{Notes: make([]NoteResponse, len(notes)), Total: len(notes)}
	for i, n := range notes {
		resp.Notes[i] = noteResponse(n)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note ID"
//	@Success		200	{object}	NoteResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	n, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeNote(w, http.StatusOK, n)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Create a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note to create"
//	@Success		201		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	n, err := h.svc.CreateNote(r.Context(), req.input())
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeNote(w, http.StatusCreated, n)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Replace a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id			path		int			true	"Note ID"
//	@Param			If-Match	header		string		false	"Version from a previous ETag"
//	@Param			body		body		NoteRequest	true	"Updated note"
//	@Success		200			{object}	NoteResponse
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req NoteRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	n, err := h.svc.UpdateNote(r.Context(), id, req.input(), ifMatch)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeNote(w, http.StatusOK, n)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note forever
//	@Tags			notes
//	@Param			id	path	int	true	"Note ID"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteNote(r.Context(), id); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetStatus returns the handler of POST /api/notes/{id}/{archive,unarchive,trash,restore}.
//
//	@Summary		Move a note to another status
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		int	true	"Note ID"
//	@Success		200	{object}	StatusChangeResponse
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/archive [post]
func (h *Handler) SetStatus(status models.NoteStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		notes, err := h.svc.SetStatus(r.Context(), []int64{id}, status)
		if err != nil {
			writeError(w, "set status", err)
			return
		}
		writeJSON(w, http.StatusOK, StatusChangeResponse{Notes: notes})
	}
}

// SetPinned returns the handler of POST /api/notes/{id}/{pin,unpin}.
func (h *Handler) SetPinned(pinned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if _, err := h.svc.SetPinned(r.Context(), id, pinned); err != nil {
			writeError(w, "set pinned", err)
			return
		}
		h.writeCurrent(w, r, id)
	}
}

// writeCurrent answers with the stored state of a note after a change.
func (h *Handler) writeCurrent(w http.ResponseWriter, r *http.Request, id int64) {
	n, err := h.svc.GetNote(r.Context(), id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeNote(w, http.StatusOK, n)
}

// EmptyTrash handles DELETE /api/trash.
//
//	@Summary		Delete every note in the trash
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	CountResponse
//	@Security		BearerAuth
//	@Router			/trash [delete]
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.EmptyTrash(r.Context())
	if err != nil {
		writeError(w, "empty trash", err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Deleted: n})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Previews handles GET /api/previews.
//
//	@Summary		Render-ready note previews, highlighting q
//	@Tags			previews
//	@Produce		json
//	@Param			status	query		string	false	"Note status"	Enums(active, archived, deleted)
//	@Param			label	query		int		false	"Filter by label ID"
//	@Param			q		query		string	false	"Search query to highlight"
//	@Success		200		{object}	PreviewListResponse
//	@Security		BearerAuth
//	@Router			/previews [get]
func (h *Handler) Previews(w http.ResponseWriter, r *http.Request) {
	opts, ok := listOptions(w, r)
	if !ok {
		return
	}
	items, err := h.svc.Previews(r.Context(), opts)
	if err != nil {
		writeError(w, "previews", err)
		return
	}
	resp := PreviewListResponse{Previews: make([]PreviewDTO, len(items))}
	for i, it := range items {
		resp.Previews[i] = previewDTO(it)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPreferences handles GET /api/preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Preferences())
}

// PutPreferences handles PUT /api/preferences.
//
//	@Summary		Replace the display preferences
//	@Tags			previews
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PreferencesRequest	true	"Preferences"
//	@Success		200		{object}	preview.Preferences
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/preferences [put]
func (h *Handler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	var req PreferencesRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	p, err := h.svc.SetPreferences(r.Context(), req.Preferences)
	if err != nil {
		writeError(w, "set preferences", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
