package invoicing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one billable row on an invoice.
type LineItem struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Quantity    int       `json:"quantity"`
	UnitPrice   Price     `json:"price"`
}

// NewLineItem creates a validated line item with a fresh ID.
func NewLineItem(description string, quantity int, price Price) (LineItem, error) {
	item := LineItem{
		ID:          uuid.New(),
		Description: strings.TrimSpace(description),
		Quantity:    quantity,
		UnitPrice:   price,
	}
	if err := item.Validate(); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

// Validate enforces the form-boundary rules for a line item
func (i LineItem) Validate() error {
	if i.Description == "" || i.Quantity < 1 || i.Quantity > MaxQuantity || !i.UnitPrice.InRange() {
		return ErrInvalidItem
	}
	return nil
}

// Total returns quantity x coerced unit price at full precision.
func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
