package persistence

import (
	"testing"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newClient(t *testing.T, owner, name string) *invoicing.Client {
	t.Helper()
	c, err := invoicing.NewClient(owner, invoicing.ClientParams{
		Name:  name,
		Email: "billing@" + name + ".test",
	})
	require.NoError(t, err)
	return c
}

func newInvoice(t *testing.T, owner, number string, items ...invoicing.LineItem) *invoicing.Invoice {
	t.Helper()
	if len(items) == 0 {
		item, err := invoicing.NewLineItem("Consulting", 2, invoicing.PriceFromFloat(25))
		require.NoError(t, err)
		items = []invoicing.LineItem{item}
	}
	clientID := uuid.New()
	inv, err := invoicing.NewInvoice(owner, number, invoicing.InvoiceParams{
		IssueDate: "2025-03-01",
		DueDate:   "2025-03-31",
		Currency:  "USD",
		TaxRate:   decimal.NewFromInt(10),
		Template:  "modern",
		Client:    invoicing.ClientSnapshot{ClientID: &clientID, Name: "Acme", Email: "ap@acme.test"},
		Company: invoicing.Company{
			Name: "Studio", Address: "1 Main St", City: "Austin", Country: "US", PostalCode: "73301",
		},
		Items: items,
	})
	require.NoError(t, err)
	return inv
}
