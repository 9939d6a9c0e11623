package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnedAggregateRoot(t *testing.T) {
	root := NewOwnedAggregateRoot("studio-1")
	assert.NotEqual(t, uuid.Nil, root.ID)
	assert.Equal(t, 1, root.Version)
	assert.True(t, root.OwnedBy("studio-1"))
	assert.False(t, root.OwnedBy("studio-2"))

	before := root.UpdatedAt
	root.Touch()
	root.IncrementVersion()
	assert.False(t, root.UpdatedAt.Before(before))
	assert.Equal(t, 2, root.Version)
}

func TestPullDomainEvents(t *testing.T) {
	root := NewOwnedAggregateRoot("studio-1")
	e := NewBaseDomainEvent("InvoiceCreated", "Invoice", root.ID, root.OwnerID)
	root.AddDomainEvent(&e)

	require.Len(t, root.GetDomainEvents(), 1)
	pulled := root.PullDomainEvents()
	require.Len(t, pulled, 1)
	assert.Equal(t, "InvoiceCreated", pulled[0].EventType())
	assert.Equal(t, "studio-1", pulled[0].OwnerID())
	assert.Empty(t, root.PullDomainEvents())
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("load invoice: %w", ErrNotFound.WithMessage("Invoice not found"))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrExportBusy))
	assert.Equal(t, "Invoice not found", wrapped.(interface{ Unwrap() error }).Unwrap().Error())
	assert.Equal(t, "Resource not found", ErrNotFound.Message, "sentinel untouched")
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Items)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)

	past := Paginate(items, 9, 2)
	assert.Empty(t, past.Items)

	defaults := Paginate(items, 0, 0)
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, 20, defaults.PageSize)
	assert.Len(t, defaults.Items, 5)
}
