package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	clientID := uuid.New()
	first, err := invoicing.NewLineItem("Design", 2, invoicing.PriceFromFloat(25))
	require.NoError(t, err)
	second, err := invoicing.NewLineItem("Hosting", 1, invoicing.ParsePrice("9.99"))
	require.NoError(t, err)

	inv, err := invoicing.NewInvoice("owner-1", "INV-2025-0001", invoicing.InvoiceParams{
		IssueDate: "2025-01-10",
		DueDate:   "2025-02-10",
		Currency:  "eur",
		TaxRate:   decimal.NewFromInt(10),
		Notes:     "Thanks",
		Terms:     "Net 30",
		Template:  "Modern",
		Client: invoicing.ClientSnapshot{
			ClientID: &clientID,
			Name:     "Acme",
			Email:    "billing@acme.test",
		},
		Company: invoicing.Company{
			Name: "Studio", Address: "1 Main St", City: "Lisbon", Country: "PT", PostalCode: "1000",
		},
		Items: []invoicing.LineItem{first, second},
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceModel_RoundTrip(t *testing.T) {
	inv := newTestInvoice(t)

	m := InvoiceModelFromDomain(inv)
	assert.Equal(t, "invoices", m.TableName())
	assert.Equal(t, "owner-1", m.OwnerID)
	assert.Equal(t, "EUR", m.Currency)
	assert.Equal(t, "modern", m.Template)
	require.Len(t, m.Items, 2)
	for i, item := range m.Items {
		assert.Equal(t, inv.ID, item.InvoiceID)
		assert.Equal(t, i, item.Position)
	}

	back := m.ToDomain()
	assert.Equal(t, inv.ID, back.ID)
	assert.Equal(t, inv.OwnerID, back.OwnerID)
	assert.Equal(t, inv.Version, back.Version)
	assert.Equal(t, inv.InvoiceNumber, back.InvoiceNumber)
	assert.Equal(t, *inv.Client.ClientID, *back.Client.ClientID)
	assert.Equal(t, inv.Company, back.Company)
	assert.True(t, inv.Totals().Total.Equal(back.Totals().Total))
	assert.Equal(t, "Hosting", back.Items[1].Description)
}

func TestClientModel_RoundTrip(t *testing.T) {
	c, err := invoicing.NewClient("owner-1", invoicing.ClientParams{
		Name: "Acme", Email: "billing@acme.test", Phone: "555",
	})
	require.NoError(t, err)

	back := ClientModelFromDomain(c).ToDomain()
	assert.Equal(t, c.ID, back.ID)
	assert.Equal(t, "owner-1", back.OwnerID)
	assert.Equal(t, "555", back.Phone)
}

func TestExportJobModel_RoundTrip(t *testing.T) {
	job, err := printing.NewExportJob("owner-1", uuid.New(), "INV-2025-0001", "classic")
	require.NoError(t, err)
	require.NoError(t, job.StartRendering())
	require.NoError(t, job.Fail("boom"))

	back := ExportJobModelFromDomain(job).ToDomain()
	assert.Equal(t, printing.ExportStatusFailed, back.Status)
	assert.Equal(t, printing.ExportStatusRendering, back.FailedStage)
	assert.Equal(t, "boom", back.ErrorMessage)
	assert.Equal(t, printing.PaperSizeA4, back.Paper)
	assert.Equal(t, "Invoice-INV-2025-0001.pdf", back.FileName)
}

func TestAll(t *testing.T) {
	assert.Len(t, All(), 5)
}
