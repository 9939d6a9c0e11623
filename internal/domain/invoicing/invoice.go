package invoicing

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for issue and due dates.
const DateLayout = "2006-01-02"

// DefaultCurrency is used when an invoice is created without one.
const DefaultCurrency = "USD"

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// Invoice is the unit of export. Client and company are stored by value so
// later edits to the client record never change an issued invoice.
type Invoice struct {
	shared.OwnedAggregateRoot
	InvoiceNumber string          `json:"invoice_number"`
	IssueDate     string          `json:"issue_date"`
	DueDate       string          `json:"due_date"`
	Currency      string          `json:"currency"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Notes         string          `json:"notes,omitempty"`
	Terms         string          `json:"terms,omitempty"`
	Template      string          `json:"template"`
	Status        Status          `json:"status"`
	Client        ClientSnapshot  `json:"client"`
	Company       Company         `json:"company"`
	Items         []LineItem      `json:"items"`
}

// InvoiceParams carries the editable invoice fields
type InvoiceParams struct {
	IssueDate string
	DueDate   string
	Currency  string
	TaxRate   decimal.Decimal
	Notes     string
	Terms     string
	Template  string
	Status    Status
	Client    ClientSnapshot
	Company   Company
	Items     []LineItem
}

// Validate checks p without creating an invoice
func (p InvoiceParams) Validate() error {
	return (&Invoice{}).apply(p)
}

// NewInvoice creates a validated invoice. The caller supplies the number so
// that numbering stays behind the NumberSequence.
func NewInvoice(ownerID, number string, p InvoiceParams) (*Invoice, error) {
	if strings.TrimSpace(number) == "" {
		return nil, ErrInvalidNumber
	}
	inv := &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		InvoiceNumber:      number,
	}
	if err := inv.apply(p); err != nil {
		return nil, err
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// Revise replaces the editable fields. The number and the owner never change.
func (inv *Invoice) Revise(p InvoiceParams) error {
	if err := inv.apply(p); err != nil {
		return err
	}
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// SetStatus changes the display label. Any label can follow any other.
func (inv *Invoice) SetStatus(s Status) error {
	if !s.IsValid() {
		return ErrInvalidStatus
	}
	inv.Status = s
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// Totals computes the invoice totals through CalculateTotals.
func (inv *Invoice) Totals() Totals {
	return CalculateTotals(inv.Items, inv.TaxRate)
}

// Snapshot returns a deep copy that shares no slices or pointers.
func (inv *Invoice) Snapshot() *Invoice {
	out := *inv
	out.Client = inv.Client.clone()
	out.Items = make([]LineItem, len(inv.Items))
	copy(out.Items, inv.Items)
	out.ClearDomainEvents()
	return &out
}

func (inv *Invoice) apply(p InvoiceParams) error {
	if err := p.Client.Validate(); err != nil {
		return err
	}
	if err := p.Company.Validate(); err != nil {
		return err
	}
	if len(p.Items) == 0 {
		return ErrItemsRequired
	}
	items := make([]LineItem, len(p.Items))
	for i, item := range p.Items {
		item.Description = strings.TrimSpace(item.Description)
		if err := item.Validate(); err != nil {
			return err
		}
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		items[i] = item
	}
	if !isDate(p.IssueDate) || !isDate(p.DueDate) {
		return ErrInvalidDate
	}
	currency := strings.ToUpper(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if !currencyCode.MatchString(currency) {
		return ErrInvalidCurrency
	}
	if !ValidTaxRate(p.TaxRate) {
		return ErrInvalidTaxRate
	}
	status := p.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.IsValid() {
		return ErrInvalidStatus
	}

	inv.IssueDate = p.IssueDate
	inv.DueDate = p.DueDate
	inv.Currency = currency
	inv.TaxRate = p.TaxRate
	inv.Notes = p.Notes
	inv.Terms = p.Terms
	inv.Template = strings.ToLower(strings.TrimSpace(p.Template))
	inv.Status = status
	inv.Client = p.Client.clone()
	inv.Company = p.Company
	inv.Items = items
	return nil
}

func isDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
