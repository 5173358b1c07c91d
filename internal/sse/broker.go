// Package sse implements a Server-Sent Events broker for real-time updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event types published besides per-note events.
const (
	EventNotesChanged       = "notes.changed"
	EventNotesCleared       = "notes.cleared"
	EventTrashEmptied       = "trash.emptied"
	EventReminderFired      = "reminder.fired"
	EventLabelsChanged      = "labels.changed"
	EventPreferencesChanged = "preferences.changed"
)

// DefaultKeepAlive is the interval between keep-alive comments on idle streams.
const DefaultKeepAlive = 25 * time.Second

// Event is a message broadcast to subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type noteEventReq struct {
	kind string
	id   int64
}

type subscription struct {
	ch chan []byte
	// types restricts delivered events. nil delivers everything.
	types map[string]bool
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the keep-alive interval of ServeHTTP streams. Zero disables it.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// Broker fans events out to subscribers.
//
// A single goroutine owns the subscriber set, the event sequence and the
// notes.changed throttle. Public methods talk to it over channels.
//
// Note events are forwarded as they come. Because previews depend on every note
// of a list, list views are told to refresh through notes.changed, sent at most
// once per throttle interval. A change that lands inside the interval is not lost:
// a trailing notes.changed goes out when the interval ends.
type Broker struct {
	listMin   time.Duration
	keepAlive time.Duration

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	noteEventCh   chan noteEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker. listThrottle is the minimum interval between two
// notes.changed events.
func NewBroker(listThrottle time.Duration, opts ...Option) *Broker {
	if listThrottle <= 0 {
		listThrottle = time.Second
	}

	b := &Broker{
		listMin:       listThrottle,
		keepAlive:     DefaultKeepAlive,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		noteEventCh:   make(chan noteEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]map[string]bool)
	var seq uint64

	var lastList time.Time
	var trailing *time.Timer
	var trailingC <-chan time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		msg := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		for ch, types := range clients {
			if types != nil && !types[event.Type] {
				continue
			}
			select {
			case ch <- msg:
			default:
				// Slow client, drop rather than stall every other subscriber.
			}
		}
	}

	listChanged := func() {
		now := time.Now()
		if wait := b.listMin - now.Sub(lastList); wait > 0 {
			if trailingC == nil {
				trailing = time.NewTimer(wait)
				trailingC = trailing.C
			}
			return
		}
		lastList = now
		broadcast(Event{Type: EventNotesChanged, Data: map[string]string{}})
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub.types

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case req := <-b.noteEventCh:
			switch req.kind {
			case "created", "updated", "deleted":
				broadcast(Event{Type: "note." + req.kind, Data: map[string]int64{"id": req.id}})
			}
			listChanged()

		case <-trailingC:
			trailing, trailingC = nil, nil
			lastList = time.Now()
			broadcast(Event{Type: EventNotesChanged, Data: map[string]string{}})

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every subscriber channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe registers a client receiving the given event types, or every event
// when types is empty. The returned channel is closed on Unsubscribe or Close.
func (b *Broker) Subscribe(types ...string) chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	sub := subscription{ch: ch}
	if len(types) > 0 {
		sub.types = make(map[string]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}

	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all interested clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishNoteEvent publishes note.<kind> for created, updated and deleted
// notes, followed by a throttled notes.changed.
func (b *Broker) PublishNoteEvent(kind string, id int64) {
	if b.closed.Load() {
		return
	}
	select {
	case b.noteEventCh <- noteEventReq{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to the client (GET /api/events). The optional
// types query parameter is a comma-separated list of event types to receive.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(parseTypes(r.URL.Query().Get("types"))...)
	defer b.Unsubscribe(ch)

	var tick <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		tick = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			_, _ = w.Write([]byte(": keep-alive\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

func parseTypes(v string) []string {
	var types []string
	for _, t := range strings.Split(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}
