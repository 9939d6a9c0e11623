package printing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/application/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogService(t *testing.T) (*printing.CatalogService, *persistence.KVInvoiceRepository) {
	t.Helper()
	renderer, err := infra.NewInvoiceRenderer(nil, nil)
	require.NoError(t, err)
	invoices := persistence.NewKVInvoiceRepository(persistence.NewMemoryKVStore())
	return printing.NewCatalogService(invoices, renderer, nil), invoices
}

func TestCatalogService_Templates(t *testing.T) {
	svc, _ := newCatalogService(t)

	entries := svc.Templates()
	require.Len(t, entries, 18)
	assert.Equal(t, "classic", entries[0].ID)
	assert.Equal(t, "/templates/classic.svg", entries[0].Thumbnail)
	for _, e := range entries {
		assert.NotEmpty(t, e.Name, e.ID)
		assert.NotEmpty(t, e.Description, e.ID)
	}

	options := svc.Options()
	require.Len(t, options, 18)
	assert.Equal(t, "professional", options[17].Key)
}

func TestCatalogService_PreviewSample(t *testing.T) {
	svc, _ := newCatalogService(t)

	preview, err := svc.Preview(context.Background(), "local", "Elegant", nil)
	require.NoError(t, err)
	assert.Equal(t, "elegant", preview.Template)
	assert.Contains(t, preview.HTML, "<html")
	assert.Contains(t, preview.HTML, "Northwind Traders")
	assert.Contains(t, preview.HTML, "INV-2024-0001")
}

func TestCatalogService_PreviewStoredInvoice(t *testing.T) {
	svc, invoices := newCatalogService(t)

	inv := printing.SampleInvoice()
	inv.OwnerID = "local"
	inv.InvoiceNumber = "INV-2024-0042"
	stored, err := invoices.Add(context.Background(), inv)
	require.NoError(t, err)

	preview, err := svc.Preview(context.Background(), "local", "tech", &stored.ID)
	require.NoError(t, err)
	assert.Contains(t, preview.HTML, "INV-2024-0042")

	missing := uuid.New()
	_, err = svc.Preview(context.Background(), "local", "tech", &missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCatalogService_PreviewUnknownTemplate(t *testing.T) {
	svc, _ := newCatalogService(t)

	_, err := svc.Preview(context.Background(), "local", "UNKNOWN_STYLE", nil)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSampleInvoice(t *testing.T) {
	inv := printing.SampleInvoice()
	totals := inv.Totals().Display()

	// 1200 + 2*850 + 3*29.99 = 2989.97, plus 10% tax
	assert.Equal(t, "2989.97", totals.Subtotal)
	assert.Equal(t, "299.00", totals.Tax)
	assert.Equal(t, "3288.97", totals.Total)
	assert.Empty(t, inv.GetDomainEvents())
}
