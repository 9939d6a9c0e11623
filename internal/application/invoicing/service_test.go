package invoicing_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	app "github.com/invoicesxpert/backend/internal/application/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/cache"
	"github.com/invoicesxpert/backend/internal/infrastructure/ledger"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

type services struct {
	clients   *app.ClientService
	invoices  *app.InvoiceService
	dashboard *app.DashboardService
	events    *recordingPublisher
}

func newServices(t *testing.T) *services {
	t.Helper()
	store := persistence.NewMemoryKVStore()
	clientRepo := persistence.NewKVClientRepository(store)
	invoiceRepo := persistence.NewKVInvoiceRepository(store)
	numbers := invoicing.NewNumberGenerator(cache.NewMemoryNumberSequence()).
		WithClock(func() time.Time { return time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC) })
	events := &recordingPublisher{}

	invoices := app.NewInvoiceService(invoiceRepo, clientRepo, numbers, infra.NewRegistry(), ledger.NewWriter(nil), events, nil)
	return &services{
		clients:   app.NewClientService(clientRepo, nil),
		invoices:  invoices,
		dashboard: app.NewDashboardService(invoices, clientRepo),
		events:    events,
	}
}

func company() app.CompanyRequest {
	return app.CompanyRequest{
		Name: "Acme Studio", Address: "1 Main Street", City: "Springfield", Country: "US", PostalCode: "12345",
	}
}

func invoiceRequest(clientID *uuid.UUID, currency, status string, qty int, price string) app.InvoiceRequest {
	return app.InvoiceRequest{
		ClientID:  clientID,
		Company:   company(),
		IssueDate: "2024-03-09",
		DueDate:   "2024-04-08",
		Currency:  currency,
		TaxRate:   decimal.NewFromInt(10),
		Status:    status,
		Items: []app.LineItemRequest{
			{Description: "Design", Quantity: qty, Price: invoicing.ParsePrice(price)},
		},
	}
}

func createClient(t *testing.T, s *services, name string) uuid.UUID {
	t.Helper()
	resp, err := s.clients.Create(context.Background(), "local", app.CreateClientRequest{
		Name: name, Email: "billing@example.com", CompanyName: name + " Ltd",
	})
	require.NoError(t, err)
	return uuid.MustParse(resp.ID)
}

// =============================================================================
// ClientService
// =============================================================================

func TestClientService_CRUD(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	created, err := s.clients.Create(ctx, "local", app.CreateClientRequest{
		Name: "  Ada Lovelace ", Email: "ada@example.com", Phone: "555-0100",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", created.Name)
	id := uuid.MustParse(created.ID)

	got, err := s.clients.GetByID(ctx, "local", id)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", got.Phone)

	name := "Ada King"
	updated, err := s.clients.Update(ctx, "local", id, app.UpdateClientRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Equal(t, "ada@example.com", updated.Email, "unset fields are kept")

	list, err := s.clients.List(ctx, "local")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.clients.Delete(ctx, "local", id))
	assert.ErrorIs(t, s.clients.Delete(ctx, "local", id), shared.ErrNotFound)

	_, err = s.clients.GetByID(ctx, "local", id)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientService_Validation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.clients.Create(ctx, "local", app.CreateClientRequest{Name: "Ada", Email: "not-an-email"})
	assert.ErrorIs(t, err, invoicing.ErrInvalidEmail)

	id := createClient(t, s, "Ada")
	blank := "   "
	_, err = s.clients.Update(ctx, "local", id, app.UpdateClientRequest{Name: &blank})
	assert.ErrorIs(t, err, invoicing.ErrInvalidName)

	_, err = s.clients.Update(ctx, "local", uuid.New(), app.UpdateClientRequest{Name: &blank})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestClientService_OwnersAreIsolated(t *testing.T) {
	s := newServices(t)
	id := createClient(t, s, "Ada")

	_, err := s.clients.GetByID(context.Background(), "someone-else", id)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	list, err := s.clients.List(context.Background(), "someone-else")
	require.NoError(t, err)
	assert.Empty(t, list)
}

// =============================================================================
// InvoiceService
// =============================================================================

func TestInvoiceService_Create(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	clientID := createClient(t, s, "Northwind")

	first, err := s.invoices.Create(ctx, "local", invoiceRequest(&clientID, "usd", "", 2, "25.00"))
	require.NoError(t, err)
	second, err := s.invoices.Create(ctx, "local", invoiceRequest(&clientID, "USD", "", 1, "10"))
	require.NoError(t, err)

	assert.Equal(t, "INV-2024-0001", first.InvoiceNumber)
	assert.Equal(t, "INV-2024-0002", second.InvoiceNumber)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, "draft", first.Status)
	assert.Equal(t, app.DefaultTemplate, first.Template)
	assert.Equal(t, "Northwind", first.Client.Name)
	assert.Equal(t, "Northwind Ltd", first.Client.CompanyName)
	require.NotNil(t, first.Client.ClientID)
	assert.Equal(t, clientID, *first.Client.ClientID)

	assert.Equal(t, invoicing.DisplayTotals{Subtotal: "50.00", TaxRate: "10.0", Tax: "5.00", Total: "55.00"}, first.Totals)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "25.00", first.Items[0].Price)
	assert.Equal(t, "50.00", first.Items[0].Total)

	require.Len(t, s.events.events, 2)
	assert.Equal(t, invoicing.EventTypeInvoiceCreated, s.events.events[0].EventType())
}

func TestInvoiceService_Create_Validation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(*app.InvoiceRequest)
		expected error
	}{
		{"no client", func(r *app.InvoiceRequest) { r.ClientID = nil; r.Client = nil }, invoicing.ErrClientRequired},
		{"unknown client", func(r *app.InvoiceRequest) { id := uuid.New(); r.ClientID = &id }, shared.ErrNotFound},
		{"incomplete company", func(r *app.InvoiceRequest) { r.Company.City = "" }, invoicing.ErrCompanyIncomplete},
		{"no items", func(r *app.InvoiceRequest) { r.Items = nil }, invoicing.ErrItemsRequired},
		{"zero quantity", func(r *app.InvoiceRequest) { r.Items[0].Quantity = 0 }, invoicing.ErrInvalidItem},
		{"price exponent", func(r *app.InvoiceRequest) { r.Items[0].Price = invoicing.ParsePrice("1e50000000") }, invoicing.ErrInvalidItem},
		{"sub-cent price", func(r *app.InvoiceRequest) { r.Items[0].Price = invoicing.ParsePrice("0.12345") }, invoicing.ErrInvalidItem},
		{"bad date", func(r *app.InvoiceRequest) { r.DueDate = "08/04/2024" }, invoicing.ErrInvalidDate},
		{"bad currency", func(r *app.InvoiceRequest) { r.Currency = "US1" }, invoicing.ErrInvalidCurrency},
		{"unknown template", func(r *app.InvoiceRequest) { r.Template = "neon" }, app.ErrUnknownTemplate},
		{"bad status", func(r *app.InvoiceRequest) { r.Status = "void" }, invoicing.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := invoiceRequest(nil, "USD", "", 1, "10")
			req.Client = &app.ClientSnapshotRequest{Name: "Walk-in"}
			tt.mutate(&req)

			_, err := s.invoices.Create(ctx, "local", req)
			assert.ErrorIs(t, err, tt.expected)
		})
	}

	// no number is consumed by a rejected invoice
	req := invoiceRequest(nil, "USD", "", 1, "10")
	req.Client = &app.ClientSnapshotRequest{Name: "Walk-in"}
	created, err := s.invoices.Create(ctx, "local", req)
	require.NoError(t, err)
	assert.Equal(t, "INV-2024-0001", created.InvoiceNumber)
}

func TestInvoiceService_UnknownTemplateListsChoices(t *testing.T) {
	s := newServices(t)

	req := invoiceRequest(nil, "USD", "", 1, "10")
	req.Client = &app.ClientSnapshotRequest{Name: "Walk-in"}
	req.Template = "neon"

	_, err := s.invoices.Create(context.Background(), "local", req)
	require.ErrorIs(t, err, app.ErrUnknownTemplate)
	assert.Contains(t, err.Error(), "classic")
}

func TestInvoiceService_ClientEditsDoNotChangeInvoices(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	clientID := createClient(t, s, "Northwind")

	created, err := s.invoices.Create(ctx, "local", invoiceRequest(&clientID, "USD", "", 1, "10"))
	require.NoError(t, err)

	renamed := "Southwind"
	_, err = s.clients.Update(ctx, "local", clientID, app.UpdateClientRequest{Name: &renamed})
	require.NoError(t, err)
	require.NoError(t, s.clients.Delete(ctx, "local", clientID))

	got, err := s.invoices.GetByID(ctx, "local", uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, "Northwind", got.Client.Name)
}

func TestInvoiceService_UpdateAndStatus(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	clientID := createClient(t, s, "Northwind")

	req := invoiceRequest(&clientID, "USD", "sent", 1, "10")
	req.Template = "Modern"
	created, err := s.invoices.Create(ctx, "local", req)
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)
	assert.Equal(t, "modern", created.Template)

	revised := invoiceRequest(&clientID, "EUR", "", 3, "9.99")
	revised.Notes = "Thanks"
	updated, err := s.invoices.Update(ctx, "local", id, revised)
	require.NoError(t, err)
	assert.Equal(t, created.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, "EUR", updated.Currency)
	assert.Equal(t, "sent", updated.Status, "empty status keeps the current label")
	assert.Equal(t, "modern", updated.Template, "empty template keeps the current style")
	assert.Equal(t, "29.97", updated.Totals.Subtotal)

	// any label may follow any other
	for _, status := range []string{"paid", "draft", "overdue"} {
		resp, err := s.invoices.UpdateStatus(ctx, "local", id, app.UpdateStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, resp.Status)
	}

	_, err = s.invoices.UpdateStatus(ctx, "local", uuid.New(), app.UpdateStatusRequest{Status: "paid"})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, s.invoices.Delete(ctx, "local", id))
	assert.ErrorIs(t, s.invoices.Delete(ctx, "local", id), shared.ErrNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	ada := createClient(t, s, "Ada")
	grace := createClient(t, s, "Grace")

	for _, c := range []struct {
		client *uuid.UUID
		status string
	}{{&ada, "paid"}, {&grace, "pending"}, {&ada, "pending"}} {
		_, err := s.invoices.Create(ctx, "local", invoiceRequest(c.client, "USD", c.status, 1, "10"))
		require.NoError(t, err)
	}

	all, err := s.invoices.List(ctx, "local", app.ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.Total)
	assert.Equal(t, "INV-2024-0003", all.Items[0].InvoiceNumber, "newest first")

	pending, err := s.invoices.List(ctx, "local", app.ListInvoicesRequest{Status: "pending"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Total)

	search, err := s.invoices.List(ctx, "local", app.ListInvoicesRequest{Search: "grace"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "INV-2024-0002", search.Items[0].InvoiceNumber)

	paged, err := s.invoices.List(ctx, "local", app.ListInvoicesRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, 2, paged.TotalPages)
}

func TestInvoiceService_Ledger(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	clientID := createClient(t, s, "Northwind")

	_, err := s.invoices.Create(ctx, "local", invoiceRequest(&clientID, "USD", "paid", 2, "25"))
	require.NoError(t, err)

	data, err := s.invoices.Ledger(ctx, "local")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(ledger.SheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "INV-2024-0001", rows[1][0])
	assert.Equal(t, "Northwind", rows[1][1])
}

// =============================================================================
// DashboardService
// =============================================================================

func TestDashboardService_Summary(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	clientID := createClient(t, s, "Northwind")
	createClient(t, s, "Contoso")

	for _, r := range []app.InvoiceRequest{
		invoiceRequest(&clientID, "USD", "paid", 2, "25"),    // 55.00
		invoiceRequest(&clientID, "USD", "pending", 1, "100"), // 110.00
		invoiceRequest(&clientID, "EUR", "overdue", 1, "10"),  // 11.00
		invoiceRequest(&clientID, "USD", "draft", 1, "1"),     // 1.10
		invoiceRequest(&clientID, "USD", "sent", 1, "2"),      // 2.20
		invoiceRequest(&clientID, "USD", "paid", 1, "3"),      // 3.30
	} {
		_, err := s.invoices.Create(ctx, "local", r)
		require.NoError(t, err)
	}

	summary, err := s.dashboard.Summary(ctx, "local")
	require.NoError(t, err)

	assert.Equal(t, 6, summary.InvoiceCount)
	assert.Equal(t, 2, summary.ClientCount)
	assert.Equal(t, 2, summary.StatusCounts["paid"])
	assert.Equal(t, 1, summary.StatusCounts["overdue"])

	require.Len(t, summary.RecentInvoices, app.RecentInvoiceLimit)
	assert.Equal(t, "INV-2024-0006", summary.RecentInvoices[0].InvoiceNumber)
	assert.Equal(t, "INV-2024-0002", summary.RecentInvoices[4].InvoiceNumber)

	// currencies appear newest first and are never summed together
	require.Len(t, summary.Currencies, 2)
	usd, eur := summary.Currencies[0], summary.Currencies[1]
	assert.Equal(t, app.CurrencySummary{Currency: "USD", Paid: "58.30", Outstanding: "113.30", Revenue: "171.60"}, usd)
	assert.Equal(t, app.CurrencySummary{Currency: "EUR", Paid: "0.00", Outstanding: "11.00", Revenue: "11.00"}, eur)
}

func TestDashboardService_Empty(t *testing.T) {
	s := newServices(t)

	summary, err := s.dashboard.Summary(context.Background(), "local")
	require.NoError(t, err)
	assert.Zero(t, summary.InvoiceCount)
	assert.Empty(t, summary.RecentInvoices)
	assert.Empty(t, summary.Currencies)
	assert.Len(t, summary.StatusCounts, 5)
}
