package alarm

import (
	"sync"
	"time"
)

// TimerCallback implements Callback with in-process timers. Alarms do not
// survive a restart; Manager.UpdateAll restores them on startup.
type TimerCallback struct {
	fire func(noteID int64)

	mu      sync.Mutex
	timers  map[int64]*time.Timer
	stopped bool
}

// NewTimerCallback creates a callback calling fire, on its own goroutine,
// when an alarm goes off.
func NewTimerCallback(fire func(noteID int64)) *TimerCallback {
	return &TimerCallback{fire: fire, timers: make(map[int64]*time.Timer)}
}

// AddAlarm sets the alarm of a note, replacing any previous one.
func (c *TimerCallback) AddAlarm(noteID int64, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if t, ok := c.timers[noteID]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(max(0, time.Until(at)), func() {
		c.mu.Lock()
		if c.timers[noteID] != t {
			// Replaced or removed after the timer fired.
			c.mu.Unlock()
			return
		}
		delete(c.timers, noteID)
		c.mu.Unlock()
		c.fire(noteID)
	})
	c.timers[noteID] = t
}

// RemoveAlarm cancels the alarm of a note.
func (c *TimerCallback) RemoveAlarm(noteID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[noteID]; ok {
		t.Stop()
		delete(c.timers, noteID)
	}
}

// Pending returns the number of alarms not yet fired.
func (c *TimerCallback) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Stop cancels every alarm. Later AddAlarm calls are ignored.
func (c *TimerCallback) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
