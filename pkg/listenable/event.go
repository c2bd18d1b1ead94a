package listenable

import (
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/listenable/pkg/listenable/event"
)

// Event categories dispatched by a Proxy.
const (
	EventGet    = "get"
	EventSet    = "set"
	EventDelete = "delete"
	EventCreate = "create"
	EventUpdate = "update"
)

// Categories returns every category a Proxy declares, in declaration order.
func Categories() []string {
	return []string{EventGet, EventSet, EventDelete, EventCreate, EventUpdate}
}

// Event describes one intercepted container operation.
// A successful write that adds or changes a key produces two events: a create
// or update event first, then the set event, sharing every field but Type and ID.
type Event struct {
	// ID uniquely identifies this event.
	ID string
	// Type is one of the Event* categories.
	Type string
	// Key is the container key the operation targeted.
	Key string
	// Value is the written value for writes, the stored value otherwise.
	Value any
	// StartValue is the value stored before a write.
	StartValue any
	// HadStartValue reports whether the key was present before a write.
	HadStartValue bool
	// Success reports whether the operation was admitted and applied.
	Success bool
	// Timestamp is when the event was built.
	Timestamp time.Time
}

// EventType implements event.Typed.
func (e Event) EventType() string {
	return e.Type
}

// Listener receives proxy events. A non-nil error aborts the remaining
// listeners and is returned from the operation that triggered the dispatch.
type Listener = event.Listener[Event]

func newEvent(category, key string, value any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      category,
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
	}
}

// derive copies e under another category with a fresh ID.
func (e Event) derive(category string) Event {
	e.ID = uuid.New().String()
	e.Type = category
	return e
}
