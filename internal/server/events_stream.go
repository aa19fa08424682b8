package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/helioncore/qrex/internal/events"
)

// EventsStreamHandler streams bus events to HTTP clients via Server-Sent
// Events. Notebooks subscribe to watch job lifecycle events live instead
// of polling.
type EventsStreamHandler struct {
	bus *events.Bus
	log zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(bus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		bus: bus,
		log: log.With().Str("handler", "events_stream").Logger(),
	}
}

// ServeHTTP handles the SSE connection. An optional "types" query parameter
// (comma-separated event types) filters the stream.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	wanted := parseTypesFilter(r.URL.Query().Get("types"))

	// Buffered so a slow client drops events instead of blocking the bus
	eventChan := make(chan *events.Event, 100)

	h.bus.SubscribeAll(func(event *events.Event) {
		if wanted != nil && !wanted[event.Type] {
			return
		}
		select {
		case eventChan <- event:
		default:
			h.log.Warn().Str("event_type", string(event.Type)).Msg("Event channel full, dropping event")
		}
	})

	// Confirm the subscription so clients know the stream is live
	fmt.Fprintf(w, "event: connected\ndata: {\"timestamp\":%q}\n\n", time.Now().UTC().Format(time.RFC3339))
	flusher.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	h.log.Debug().Msg("Events stream client connected")

	for {
		select {
		case <-r.Context().Done():
			h.log.Debug().Msg("Events stream client disconnected")
			return

		case event := <-eventChan:
			payload, err := encodeEvent(event)
			if err != nil {
				h.log.Error().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
			flusher.Flush()

		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}

// parseTypesFilter converts "job_completed,job_failed" into a lookup set.
// Returns nil when no filter is requested, meaning all types pass.
func parseTypesFilter(raw string) map[events.EventType]bool {
	if raw == "" {
		return nil
	}

	wanted := make(map[events.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			wanted[events.EventType(t)] = true
		}
	}
	if len(wanted) == 0 {
		return nil
	}
	return wanted
}

// encodeEvent serializes an event for the wire
func encodeEvent(event *events.Event) ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type":      event.Type,
		"timestamp": event.Timestamp.Format(time.RFC3339),
		"data":      event.Data,
	})
}
