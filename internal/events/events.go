// Package events provides a typed in-process event bus. Modules publish
// lifecycle events (job submitted, results stored, backup completed) and
// listeners react without direct coupling between modules.
package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType identifies a class of event.
type EventType string

const (
	// JobSubmitted is emitted after a job is accepted by the estimation service.
	JobSubmitted EventType = "job_submitted"
	// JobStatusChanged is emitted on any remote status transition.
	JobStatusChanged EventType = "job_status_changed"
	// JobCompleted is emitted when a job reaches the succeeded state.
	JobCompleted EventType = "job_completed"
	// JobFailed is emitted when a job reaches the failed state.
	JobFailed EventType = "job_failed"
	// ResultsStored is emitted after result JSON is persisted to the ledger.
	ResultsStored EventType = "results_stored"
	// BackupCompleted is emitted after an offsite backup upload finishes.
	BackupCompleted EventType = "backup_completed"
	// CacheCleaned is emitted after expired cache entries are purged.
	CacheCleaned EventType = "cache_cleaned"
)

// Event is a single occurrence delivered to subscribers.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data,omitempty"`
}

// Handler is a callback invoked for each delivered event.
type Handler func(event *Event)

// Bus is a simple publish/subscribe event bus. Delivery is asynchronous:
// Publish never blocks on slow subscribers.
type Bus struct {
	handlers map[EventType][]Handler
	all      []Handler // Subscribers to every event type
	log      zerolog.Logger
	mu       sync.RWMutex
}

// NewBus creates a new event bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
// Used by the SSE stream to fan events out to HTTP clients.
func (b *Bus) SubscribeAll(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.all = append(b.all, handler)
}

// Publish delivers an event to all matching subscribers.
// Each handler runs in its own goroutine; a panicking handler is logged
// and does not affect other subscribers.
func (b *Bus) Publish(eventType EventType, data EventData) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[eventType])+len(b.all))
	handlers = append(handlers, b.handlers[eventType]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		h := handler
		go func() {
			defer func() {
				if r := recover(); r != nil {
					b.log.Error().
						Interface("panic", r).
						Str("event_type", string(eventType)).
						Msg("Event handler panicked")
				}
			}()
			h(event)
		}()
	}
}
