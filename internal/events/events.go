package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionCancelled = "cancelled"
	ActionDeleted   = "deleted"
	ActionImported  = "imported"
)

// Event announces a committed change to one record.
type Event struct {
	EventID string    `json:"event_id"`
	Type    string    `json:"type"` // entity.action, e.g. order.created
	Entity  string    `json:"entity"`
	ID      int64     `json:"id"`
	At      time.Time `json:"at"`
	Payload any       `json:"payload,omitempty"`
}

func New(entity, action string, id int64, payload any) Event {
	return Event{
		EventID: uuid.NewString(),
		Type:    entity + "." + action,
		Entity:  entity,
		ID:      id,
		At:      time.Now().UTC(),
		Payload: payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop drops every event. Used when events are disabled.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Recorder keeps published events in memory. Err, when set, is returned
// from Publish instead of recording.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the types of the recorded events in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
