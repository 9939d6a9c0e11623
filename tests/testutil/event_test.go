package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(eventType, owner string) *shared.BaseDomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New(), owner)
	return &e
}

func TestEventRecorder_OnBus(t *testing.T) {
	bus := event.NewInMemoryEventBus(nil)
	created := NewEventRecorder("InvoiceCreated")
	all := NewEventRecorder()
	bus.Subscribe(created)
	bus.Subscribe(all)

	require.NoError(t, bus.Publish(context.Background(),
		newEvent("InvoiceCreated", "acme"),
		newEvent("ExportCompleted", "acme"),
		newEvent("InvoiceCreated", "globex"),
	))

	assert.Equal(t, []string{"InvoiceCreated", "InvoiceCreated"}, created.Types())
	assert.Equal(t, []string{"acme", "globex"}, created.Owners())
	assert.Equal(t, []string{"InvoiceCreated", "ExportCompleted", "InvoiceCreated"}, all.Types())
}

func TestEventRecorder_EventsIsACopy(t *testing.T) {
	r := NewEventRecorder()
	require.NoError(t, r.Handle(context.Background(), newEvent("InvoiceCreated", "acme")))

	events := r.Events()
	events[0] = nil
	assert.NotNil(t, r.Events()[0])
}
