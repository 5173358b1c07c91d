package api

import (
	"net/http"
)

// SetReminder handles PUT /api/notes/{id}/reminder.
//
//	@Summary		Set or replace the reminder of a note
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Note ID"
//	@Param			body	body		ReminderRequest	true	"Reminder"
//	@Success		200		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/reminder [put]
func (h *Handler) SetReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ReminderRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if _, err := h.svc.SetReminder(r.Context(), id, req.Start, req.Recurrence); err != nil {
		writeError(w, "set reminder", err)
		return
	}
	h.writeCurrent(w, r, id)
}

// RemoveReminder handles DELETE /api/notes/{id}/reminder.
func (h *Handler) RemoveReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.svc.RemoveReminder(r.Context(), id); err != nil {
		writeError(w, "remove reminder", err)
		return
	}
	h.writeCurrent(w, r, id)
}

// PostponeReminder handles POST /api/notes/{id}/reminder/postpone.
//
//	@Summary		Postpone a one-time reminder
//	@Tags			reminders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Note ID"
//	@Param			body	body		PostponeRequest	true	"New time"
//	@Success		200		{object}	NoteResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/reminder/postpone [post]
func (h *Handler) PostponeReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req PostponeRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	if _, err := h.svc.PostponeReminder(r.Context(), id, req.To); err != nil {
		writeError(w, "postpone reminder", err)
		return
	}
	h.writeCurrent(w, r, id)
}

// MarkReminderDone handles POST /api/notes/{id}/reminder/done.
func (h *Handler) MarkReminderDone(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.svc.MarkReminderDone(r.Context(), id); err != nil {
		writeError(w, "mark reminder done", err)
		return
	}
	h.writeCurrent(w, r, id)
}
