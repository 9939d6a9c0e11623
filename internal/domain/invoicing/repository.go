package invoicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

// ClientRepository stores clients
type ClientRepository interface {
	shared.Repository[Client]
}

// InvoiceRepository stores invoices with their line items
type InvoiceRepository interface {
	shared.Repository[Invoice]
	// Lookup finds an invoice by ID alone, as a public payment link does.
	// Invoice IDs are unique across owners. Returns shared.ErrNotFound.
	Lookup(ctx context.Context, id uuid.UUID) (*Invoice, error)
}
