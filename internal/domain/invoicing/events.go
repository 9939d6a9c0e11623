package invoicing

import "github.com/invoicesxpert/backend/internal/domain/shared"

// AggregateTypeInvoice identifies invoice events
const AggregateTypeInvoice = "Invoice"

// EventTypeInvoiceCreated is raised once per new invoice
const EventTypeInvoiceCreated = "InvoiceCreated"

// InvoiceCreatedEvent is published when an invoice is issued
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	Currency      string `json:"currency"`
	Total         string `json:"total"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeInvoiceCreated,
			AggregateTypeInvoice,
			inv.ID,
			inv.OwnerID,
		),
		InvoiceNumber: inv.InvoiceNumber,
		Currency:      inv.Currency,
		Total:         inv.Totals().Total.StringFixed(2),
	}
}
