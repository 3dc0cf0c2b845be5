// Package events provides the in-process event bus that carries chart and view
// updates from view controllers to connected browser streams.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	ChartCreated   EventType = "CHART_CREATED"
	ChartUpdated   EventType = "CHART_UPDATED"
	ChartDestroyed EventType = "CHART_DESTROYED"
	ViewRendered   EventType = "VIEW_RENDERED"
	ViewMounted    EventType = "VIEW_MOUNTED"
	ViewUnmounted  EventType = "VIEW_UNMOUNTED"
	ErrorOccurred  EventType = "ERROR_OCCURRED"
)

// AllScopes subscribes to events of every scope
const AllScopes = "*"

// DefaultBuffer is the per-subscriber channel capacity
const DefaultBuffer = 64

type subscriber struct {
	scope string
	ch    chan Event
}

// Bus fans events out to subscribers by scope (a view id).
// Publishing never blocks: a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.RWMutex
	subs   map[uint64]subscriber
	nextID uint64
	log    zerolog.Logger
}

// NewBus creates a new event bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[uint64]subscriber),
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers for events of one scope (or AllScopes).
// The returned cancel func unsubscribes and closes the channel; it is safe to call twice.
func (b *Bus) Subscribe(scope string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, buffer)
	b.subs[id] = subscriber{scope: scope, ch: ch}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers data to every subscriber of scope and of AllScopes
func (b *Bus) Publish(scope string, data EventData) {
	event := Event{
		Type:      data.EventType(),
		Scope:     scope,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.scope != scope && sub.scope != AllScopes {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			b.log.Warn().
				Str("scope", scope).
				Str("event_type", string(event.Type)).
				Msg("Subscriber buffer full, dropping event")
		}
	}
}

// SubscriberCount returns the number of subscribers listening to scope directly
func (b *Bus) SubscriberCount(scope string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for _, sub := range b.subs {
		if sub.scope == scope {
			n++
		}
	}
	return n
}
