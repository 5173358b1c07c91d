// Package alarm schedules reminder alarms for notes.
package alarm

import (
	"log/slog"
	"sync"
	"time"

	"github.com/starford/notes/internal/models"
)

// Callback sets and cancels alarms. An alarm set for a note replaces the
// previous one; when it goes off the implementation notifies the application.
type Callback interface {
	AddAlarm(noteID int64, at time.Time)
	RemoveAlarm(noteID int64)
}

// Manager keeps alarms in sync with note reminders.
type Manager struct {
	cb     Callback
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	scheduled map[int64]time.Time
}

// NewManager creates an alarm manager over cb.
func NewManager(cb Callback, now func() time.Time, logger *slog.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cb: cb, now: now, logger: logger, scheduled: make(map[int64]time.Time)}
}

// pending reports whether a note has a reminder that should ring.
func pending(n models.Note) bool {
	return n.Reminder != nil && !n.Reminder.Done && n.Status != models.StatusDeleted
}

// SetAlarm schedules the alarm of a note reminder, or removes it when the
// note has no pending reminder. Reminders already due ring immediately.
func (m *Manager) SetAlarm(n models.Note) {
	if !pending(n) {
		m.RemoveAlarm(n.ID)
		return
	}
	at := n.Reminder.Next
	if now := m.now(); at.Before(now) {
		at = now
	}
	m.mu.Lock()
	m.scheduled[n.ID] = at
	m.mu.Unlock()
	m.cb.AddAlarm(n.ID, at)
	m.logger.Debug("alarm set", slog.Int64("note_id", n.ID), slog.Time("at", at))
}

// RemoveAlarm cancels the alarm of a note.
func (m *Manager) RemoveAlarm(noteID int64) {
	m.mu.Lock()
	delete(m.scheduled, noteID)
	m.mu.Unlock()
	m.cb.RemoveAlarm(noteID)
}

// UpdateAll replaces every scheduled alarm with the alarms of notes.
func (m *Manager) UpdateAll(notes []models.Note) {
	keep := make(map[int64]struct{}, len(notes))
	for _, n := range notes {
		if pending(n) {
			keep[n.ID] = struct{}{}
		}
	}
	m.mu.Lock()
	var stale []int64
	for id := range m.scheduled {
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.RemoveAlarm(id)
	}
	for _, n := range notes {
		m.SetAlarm(n)
	}
	m.logger.Info("alarms updated", slog.Int("count", len(keep)))
}

// Scheduled returns the time of the alarm set for a note.
func (m *Manager) Scheduled(noteID int64) (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	at, ok := m.scheduled[noteID]
	return at, ok
}

// Fired forgets the alarm of a note once it went off.
func (m *Manager) Fired(noteID int64) {
	m.mu.Lock()
	delete(m.scheduled, noteID)
	m.mu.Unlock()
}
