package engine

import (
	"sync"
	"time"
)

// Event is a single structured progress entry emitted by a background run.
type Event struct {
	Seq     int64             `json:"seq"`
	At      time.Time         `json:"at"`
	Op      string            `json:"op"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// EventBuffer is a bounded append-only ring of events. Writers never block;
// once full, the oldest events are dropped. The tool layer polls it instead
// of tailing a live stream.
type EventBuffer struct {
	mu     sync.RWMutex
	events []Event
	max    int
	seq    int64
}

// NewEventBuffer creates a buffer holding at most max events.
func NewEventBuffer(max int) *EventBuffer {
	if max <= 0 {
		max = 256
	}
	return &EventBuffer{max: max}
}

// Append records an event, evicting the oldest entry when full.
func (b *EventBuffer) Append(op, message string, fields map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.events = append(b.events, Event{
		Seq:     b.seq,
		At:      time.Now().UTC(),
		Op:      op,
		Message: message,
		Fields:  fields,
	})
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
}

// Since returns all buffered events with Seq > after, oldest first.
func (b *EventBuffer) Since(after int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []Event
	for _, e := range b.events {
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of buffered events.
func (b *EventBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.events)
}

// Events is the process-wide buffer for batch-run progress.
var Events = NewEventBuffer(512)
