package invoicing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() InvoiceParams {
	return InvoiceParams{
		IssueDate: "2026-03-01",
		DueDate:   "2026-03-31",
		Currency:  "usd",
		TaxRate:   decimal.NewFromInt(10),
		Notes:     "Thank you for your business",
		Template:  "Modern",
		Client: ClientSnapshot{
			Name:        "Ada Lovelace",
			Email:       "ada@example.com",
			CompanyName: "Analytical Engines",
			Address:     "12 St James's Square",
		},
		Company: Company{
			Name:       "Acme Studio",
			Address:    "1 Main Street",
			City:       "Springfield",
			Country:    "US",
			PostalCode: "12345",
		},
		Items: []LineItem{
			{Description: "Design", Quantity: 2, UnitPrice: PriceFromFloat(25)},
		},
	}
}

func TestNewInvoice(t *testing.T) {
	inv, err := NewInvoice("owner-1", "INV-2026-0001", validParams())
	require.NoError(t, err)

	assert.Equal(t, "owner-1", inv.OwnerID)
	assert.Equal(t, "INV-2026-0001", inv.InvoiceNumber)
	assert.Equal(t, "USD", inv.Currency)
	assert.Equal(t, "modern", inv.Template)
	assert.Equal(t, StatusDraft, inv.Status)
	require.Len(t, inv.Items, 1)
	assert.NotEqual(t, uuid.Nil, inv.Items[0].ID)
	assert.Equal(t, "55.00", inv.Totals().Display().Total)

	events := inv.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeInvoiceCreated, events[0].EventType())
}

func TestNewInvoice_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *InvoiceParams)
		number string
		want   error
	}{
		{"missing number", func(p *InvoiceParams) {}, "", ErrInvalidNumber},
		{"missing client", func(p *InvoiceParams) { p.Client = ClientSnapshot{} }, "INV-1", ErrClientRequired},
		{"incomplete company", func(p *InvoiceParams) { p.Company.PostalCode = " " }, "INV-1", ErrCompanyIncomplete},
		{"no items", func(p *InvoiceParams) { p.Items = nil }, "INV-1", ErrItemsRequired},
		{"zero quantity", func(p *InvoiceParams) { p.Items[0].Quantity = 0 }, "INV-1", ErrInvalidItem},
		{"blank description", func(p *InvoiceParams) { p.Items[0].Description = "  " }, "INV-1", ErrInvalidItem},
		{"negative price", func(p *InvoiceParams) { p.Items[0].UnitPrice = ParsePrice("-1") }, "INV-1", ErrInvalidItem},
		{"huge exponent price", func(p *InvoiceParams) { p.Items[0].UnitPrice = ParsePrice("1e50000000") }, "INV-1", ErrInvalidItem},
		{"five decimal price", func(p *InvoiceParams) { p.Items[0].UnitPrice = ParsePrice("0.12345") }, "INV-1", ErrInvalidItem},
		{"quantity over limit", func(p *InvoiceParams) { p.Items[0].Quantity = MaxQuantity + 1 }, "INV-1", ErrInvalidItem},
		{"bad date", func(p *InvoiceParams) { p.DueDate = "31/03/2026" }, "INV-1", ErrInvalidDate},
		{"bad currency", func(p *InvoiceParams) { p.Currency = "DOLLARS" }, "INV-1", ErrInvalidCurrency},
		{"negative tax", func(p *InvoiceParams) { p.TaxRate = decimal.NewFromInt(-1) }, "INV-1", ErrInvalidTaxRate},
		{"tax over 100", func(p *InvoiceParams) { p.TaxRate = decimal.RequireFromString("100.5") }, "INV-1", ErrInvalidTaxRate},
		{"five decimal tax", func(p *InvoiceParams) { p.TaxRate = decimal.RequireFromString("7.12345") }, "INV-1", ErrInvalidTaxRate},
		{"huge exponent tax", func(p *InvoiceParams) { p.TaxRate = decimal.RequireFromString("1e50000000") }, "INV-1", ErrInvalidTaxRate},
		{"bad status", func(p *InvoiceParams) { p.Status = "archived" }, "INV-1", ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			inv, err := NewInvoice("owner-1", tt.number, p)
			assert.Nil(t, inv)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewInvoice_DefaultsCurrency(t *testing.T) {
	p := validParams()
	p.Currency = ""
	inv, err := NewInvoice("owner-1", "INV-1", p)
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, inv.Currency)
}

func TestInvoice_ClientIsStoredByValue(t *testing.T) {
	client, err := NewClient("owner-1", ClientParams{Name: "Grace", Email: "grace@example.com"})
	require.NoError(t, err)

	p := validParams()
	p.Client = client.Snapshot()
	inv, err := NewInvoice("owner-1", "INV-1", p)
	require.NoError(t, err)

	require.NoError(t, client.Update(ClientParams{Name: "Grace Hopper", Email: "hopper@example.com"}))

	assert.Equal(t, "Grace", inv.Client.Name)
	assert.Equal(t, "grace@example.com", inv.Client.Email)
	require.NotNil(t, inv.Client.ClientID)
	assert.Equal(t, client.ID, *inv.Client.ClientID)
}

func TestInvoice_Snapshot(t *testing.T) {
	inv, err := NewInvoice("owner-1", "INV-1", validParams())
	require.NoError(t, err)

	snap := inv.Snapshot()
	snap.Items[0].Description = "changed"
	snap.Client.Name = "changed"

	assert.Equal(t, "Design", inv.Items[0].Description)
	assert.Equal(t, "Ada Lovelace", inv.Client.Name)
	assert.Empty(t, snap.GetDomainEvents())
}

func TestInvoice_SetStatus(t *testing.T) {
	inv, err := NewInvoice("owner-1", "INV-1", validParams())
	require.NoError(t, err)

	// labels move freely in any direction
	require.NoError(t, inv.SetStatus(StatusPaid))
	require.NoError(t, inv.SetStatus(StatusDraft))
	assert.Equal(t, StatusDraft, inv.Status)
	assert.Equal(t, 3, inv.Version)

	assert.ErrorIs(t, inv.SetStatus("void"), ErrInvalidStatus)
}

func TestInvoice_Revise(t *testing.T) {
	inv, err := NewInvoice("owner-1", "INV-1", validParams())
	require.NoError(t, err)

	p := validParams()
	p.Items = append(p.Items, LineItem{Description: "Hosting", Quantity: 1, UnitPrice: ParsePrice("50")})
	require.NoError(t, inv.Revise(p))
	assert.Equal(t, "110.00", inv.Totals().Display().Total)
	assert.Equal(t, "INV-1", inv.InvoiceNumber)

	p.Items = nil
	assert.ErrorIs(t, inv.Revise(p), ErrItemsRequired)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, s)

	s, err = ParseStatus("")
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, s)

	_, err = ParseStatus("void")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
