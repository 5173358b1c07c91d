package noteservice

import (
	"context"
	"time"

	"github.com/starford/notes/internal/models"
	"github.com/starford/notes/internal/preview"
	"github.com/starford/notes/internal/sse"
)

// Preferences returns the current display preferences.
func (s *Service) Preferences() preview.Preferences {
	return *s.prefs.Load()
}

// SetPreferences validates and replaces the display preferences.
func (s *Service) SetPreferences(_ context.Context, p preview.Preferences) (preview.Preferences, error) {
	if err := p.Validate(); err != nil {
		return preview.Preferences{}, err
	}
	s.prefs.Store(&p)
	s.events.Publish(sse.Event{Type: sse.EventPreferencesChanged, Data: p})
	return p, nil
}

// Previews returns the render-ready previews of the notes selected by opts,
// highlighting opts.Query. Sorting and every preview use the same preferences
// snapshot, even when preferences change meanwhile.
func (s *Service) Previews(ctx context.Context, opts ListOptions) ([]preview.Item, error) {
	prefs := s.Preferences()
	notes, err := s.listNotes(ctx, opts, prefs.Sort)
	if err != nil {
		return nil, err
	}
	b := preview.Builder{
		Prefs:           prefs,
		Query:           opts.Query,
		AppendIDToTitle: s.appendIDToTitle,
	}
	now := s.now()
	items := make([]preview.Item, len(notes))
	for i, n := range notes {
		items[i] = b.Build(n.Note, n.Labels, false, showMarkAsDone(n.Note, now))
	}
	return items, nil
}

// showMarkAsDone reports whether a note reminder is due and not yet done.
func showMarkAsDone(n models.Note, now time.Time) bool {
	r := n.Reminder
	return r != nil && !r.Done && !r.Next.After(now)
}
