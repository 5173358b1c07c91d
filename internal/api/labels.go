package api

import (
	"net/http"

	"github.com/starford/notes/internal/models"
)

// ListLabels handles GET /api/labels.
func (h *Handler) ListLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.ListLabels(r.Context())
	if err != nil {
		writeError(w, "list labels", err)
		return
	}
	if labels == nil {
		labels = []models.Label{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": labels})
}

// CreateLabel handles POST /api/labels.
//
//	@Summary		Create a label
//	@Tags			labels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LabelRequest	true	"Label"
//	@Success		201		{object}	models.Label
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/labels [post]
func (h *Handler) CreateLabel(w http.ResponseWriter, r *http.Request) {
	var req LabelRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	l, err := h.svc.CreateLabel(r.Context(), req.Name, req.Hidden)
	if err != nil {
		writeError(w, "create label", err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// UpdateLabel handles PUT /api/labels/{id}.
func (h *Handler) UpdateLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req LabelRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	l, err := h.svc.UpdateLabel(r.Context(), models.Label{ID: id, Name: req.Name, Hidden: req.Hidden})
	if err != nil {
		writeError(w, "update label", err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// DeleteLabel handles DELETE /api/labels/{id}.
func (h *Handler) DeleteLabel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLabel(r.Context(), id); err != nil {
		writeError(w, "delete label", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetNoteLabels handles PUT /api/notes/{id}/labels.
//
//	@Summary		Replace the labels of a note
//	@Tags			labels
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Note ID"
//	@Param			body	body		LabelsRequest	true	"Label IDs"
//	@Success		200		{object}	NoteResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/labels [put]
func (h *Handler) SetNoteLabels(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req LabelsRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	n, err := h.svc.SetNoteLabels(r.Context(), id, req.LabelIDs)
	if err != nil {
		writeError(w, "set note labels", err)
		return
	}
	writeNote(w, http.StatusOK, n)
}
