package checkin

import (
	"sync"
	"sync/atomic"
	"time"
)

// Registry tracks created events. The most recently created event is the
// current one; ids are assigned from an atomic counter so concurrent creates
// never collide or reuse.
type Registry struct {
	mu     sync.RWMutex
	events []Event
	nextID atomic.Int64
}

// NewRegistry returns an empty registry; the first event gets id 1.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create stores a new immutable event and makes it current.
func (r *Registry) Create(spec EventSpec, createdAt time.Time) Event {
	evt := Event{
		ID:                    int(r.nextID.Add(1)),
		Name:                  spec.Name,
		Date:                  spec.Date,
		StartTime:             spec.StartTime,
		EndTime:               spec.EndTime,
		RegistrationStartTime: spec.RegistrationStartTime,
		OnTimeCutoff:          spec.OnTimeCutoff,
		CreatedAt:             createdAt.Format(time.RFC3339),
	}
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
	return evt
}

// Current returns the most recently created event still retained.
func (r *Registry) Current() (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.events) == 0 {
		return Event{}, false
	}
	return r.events[len(r.events)-1], true
}

// Find returns the event with the given id.
func (r *Registry) Find(id int) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, evt := range r.events {
		if evt.ID == id {
			return evt, true
		}
	}
	return Event{}, false
}

// ClearAll drops every event and forgets the current pointer. The id counter
// is not reset; ids are never reused.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
