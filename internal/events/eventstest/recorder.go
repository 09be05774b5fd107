// Package eventstest provides an in-memory events.Sink for tests.
package eventstest

import (
	"context"
	"sync"

	"authflow/internal/events"
)

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *Recorder) Publish(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *Recorder) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Names lists the names of the recorded events in publish order.
func (r *Recorder) Names() []string {
	evs := r.Events()
	names := make([]string, len(evs))
	for i, e := range evs {
		names[i] = e.EventName()
	}
	return names
}
