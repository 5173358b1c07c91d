package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/noteservice"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	// AuthEnabled controls whether Bearer token auth is enforced.
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /events inside the auth group.
	Events http.Handler
	// Limiter, if non-nil, rate limits every route except /events.
	Limiter *rate.Limiter
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *noteservice.Service, opts RouterOptions) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(opts.Limiter))

		// Notes CRUD.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Route("/notes/{id}", func(r chi.Router) {
			r.Get("/", h.GetNote)
			r.Put("/", h.UpdateNote)
			r.Delete("/", h.DeleteNote)

			// Status transitions.
			r.Post("/archive", h.SetStatus(models.StatusArchived))
			r.Post("/unarchive", h.SetStatus(models.StatusActive))
			r.Post("/trash", h.SetStatus(models.StatusDeleted))
			r.Post("/restore", h.SetStatus(models.StatusActive))
			r.Post("/pin", h.SetPinned(true))
			r.Post("/unpin", h.SetPinned(false))

			// Reminder.
			r.Put("/reminder", h.SetReminder)
			r.Delete("/reminder", h.RemoveReminder)
			r.Post("/reminder/postpone", h.PostponeReminder)
			r.Post("/reminder/done", h.MarkReminderDone)

			r.Put("/labels", h.SetNoteLabels)
		})
		r.Delete("/trash", h.EmptyTrash)

		// Labels.
		r.Get("/labels", h.ListLabels)
		r.Post("/labels", h.CreateLabel)
		r.Put("/labels/{id}", h.UpdateLabel)
		r.Delete("/labels/{id}", h.DeleteLabel)

		// Search and previews.
		r.Get("/search", h.Search)
		r.Get("/previews", h.Previews)

		r.Get("/preferences", h.GetPreferences)
		r.Put("/preferences", h.PutPreferences)
	})

	// SSE endpoint (protected by same auth middleware).
	if opts.Events != nil {
		r.Get("/events", opts.Events.ServeHTTP)
	}

	return r
}
