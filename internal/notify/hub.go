// Package notify fans order change events out to in-process subscribers,
// primarily the SSE endpoint warehouse dashboards listen on.
package notify

import (
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/dto"
)

// EventType distinguishes newly created orders from mutated ones.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
)

// Event describes a single order change.
type Event struct {
	Type  EventType         `json:"event_type"`
	Order dto.OrderResponse `json:"order"`
	At    time.Time         `json:"at"`
}

// Hub is a broadcast channel registry. Publishing never blocks; a subscriber
// that cannot keep up has the event dropped rather than stalling mutations.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	logger *zap.Logger
}

// Module provides the hub to the Fx graph.
var Module = fx.Provide(NewHub)

// NewHub constructs an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[int]chan Event),
		logger: logger,
	}
}

// Subscribe registers a listener and returns its event channel together with
// an unsubscribe function. The channel is closed on unsubscribe.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if existing, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every live subscriber.
func (h *Hub) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, ch := range h.subs {
		select {
		case ch <- event:
		default:
			if h.logger != nil {
				h.logger.Warn("dropping order event for slow subscriber",
					zap.Int("subscriber", id),
					zap.String("event_type", string(event.Type)),
					zap.Int64("order_id", event.Order.ID),
				)
			}
		}
	}
}

// Subscribers reports the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
