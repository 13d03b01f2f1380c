package notify

import (
	"context"
	"sync"
	"time"
)

// Event types published by the billing services
const (
	EventItemReady    = "item.ready"
	EventVoidRequest  = "void.requested"
	EventVoidDecision = "void.decided"
)

// RoleRecipient addresses everyone connected with the given role.
func RoleRecipient(role string) string {
	return "role:" + role
}

// Event is one notification for a POS client
type Event struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	SentAt  time.Time      `json:"sent_at"`
}

// Publisher delivers events without waiting on the recipient.
type Publisher interface {
	Publish(ctx context.Context, recipient string, ev Event)
}

// Hub is the in-process registry of live client connections, keyed by recipient id.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[chan Event]struct{}
	buffer  int
}

// NewHub creates a hub whose subscriber channels hold buffer events
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		clients: make(map[string]map[chan Event]struct{}),
		buffer:  buffer,
	}
}

// Register subscribes a connection to every given recipient id. The returned
// func unregisters it and must be called when the connection ends.
func (h *Hub) Register(recipients ...string) (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	for _, r := range recipients {
		set, ok := h.clients[r]
		if !ok {
			set = make(map[chan Event]struct{})
			h.clients[r] = set
		}
		set[ch] = struct{}{}
	}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			for _, r := range recipients {
				if set, ok := h.clients[r]; ok {
					delete(set, ch)
					if len(set) == 0 {
						delete(h.clients, r)
					}
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish hands ev to every connection registered for recipient. Full
// buffers drop the event.
func (h *Hub) Publish(_ context.Context, recipient string, ev Event) {
	if ev.SentAt.IsZero() {
		ev.SentAt = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.clients[recipient] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Connections returns the number of live connections for recipient
func (h *Hub) Connections(recipient string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[recipient])
}

// Multi fans one event out to several publishers.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, recipient string, ev Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, recipient, ev)
		}
	}
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, string, Event) {}
