// Package notify fans engine notifications out to subscribers. It is
// transport-agnostic: subscribers register, receive events via Send, and the
// engine publishes.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

// Kind names a notification.
type Kind string

const (
	// DismissPopover asks the UI to close its history popover.
	DismissPopover Kind = "dismiss-popover"
	// PermissionGranted is published once when the input permission is
	// first observed as granted after having been missing.
	PermissionGranted Kind = "permission-granted"
	// HotkeyActivated is published when the history hotkey fires.
	HotkeyActivated Kind = "hotkey-activated"
	// HistoryChanged is published after an insert, clear or truncation.
	HistoryChanged Kind = "history-changed"
	// StateChanged is published on every lifecycle state transition.
	StateChanged Kind = "state-changed"
)

// Event is a notification delivered to a subscriber.
type Event struct {
	Kind   Kind      `json:"kind"`
	Time   time.Time `json:"time"`
	Detail string    `json:"detail,omitempty"`
}

// Subscriber is anything that can receive events from the hub.
type Subscriber interface {
	ID() string
	// Send delivers an event. Must be non-blocking.
	Send(Event)
}

// Hub routes events to all registered subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]Subscriber
	now  func() time.Time
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]Subscriber), now: time.Now}
}

// Register adds a subscriber. Registering the same ID twice replaces it.
func (h *Hub) Register(s Subscriber) {
	h.mu.Lock()
	h.subs[s.ID()] = s
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber registered", "subscriber", s.ID(), "total", total)
}

// Unregister removes a subscriber. Unknown subscribers are ignored.
func (h *Hub) Unregister(s Subscriber) {
	h.mu.Lock()
	delete(h.subs, s.ID())
	total := len(h.subs)
	h.mu.Unlock()

	slog.Debug("subscriber unregistered", "subscriber", s.ID(), "total", total)
}

// Publish stamps and delivers an event to every subscriber.
func (h *Hub) Publish(kind Kind, detail string) {
	ev := Event{Kind: kind, Time: h.now(), Detail: detail}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	slog.Debug("notify", "kind", kind, "detail", detail, "subscribers", len(targets))
	for _, s := range targets {
		s.Send(ev)
	}
}

// Count returns the number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Chan is a Subscriber backed by a buffered channel. Events that do not fit
// are dropped.
type Chan struct {
	id string
	C  chan Event
}

// NewChan returns a channel subscriber with the given buffer size.
func NewChan(id string, buffer int) *Chan {
	return &Chan{id: id, C: make(chan Event, buffer)}
}

func (c *Chan) ID() string { return c.id }

func (c *Chan) Send(ev Event) {
	select {
	case c.C <- ev:
	default:
		slog.Warn("subscriber channel full, dropping", "subscriber", c.id, "kind", ev.Kind)
	}
}
