package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/invoicesxpert/backend/internal/domain/shared"
)

// EventRecorder is an event bus subscriber that keeps what it receives.
type EventRecorder struct {
	types []string

	mu     sync.Mutex
	events []shared.DomainEvent
}

// NewEventRecorder subscribes to types, or to everything when none are given.
func NewEventRecorder(types ...string) *EventRecorder {
	return &EventRecorder{types: types}
}

func (r *EventRecorder) EventTypes() []string { return r.types }

func (r *EventRecorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

// Events returns the recorded events, oldest first.
func (r *EventRecorder) Events() []shared.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Types lists the recorded event types, oldest first.
func (r *EventRecorder) Types() []string {
	events := r.Events()
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

// Owners lists the distinct owners the recorded events belong to.
func (r *EventRecorder) Owners() []string {
	var owners []string
	for _, e := range r.Events() {
		if !slices.Contains(owners, e.OwnerID()) {
			owners = append(owners, e.OwnerID())
		}
	}
	return owners
}
