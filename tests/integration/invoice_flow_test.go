package integration

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicesxpert/backend/internal/application/invoicing"
	printingapp "github.com/invoicesxpert/backend/internal/application/printing"
	sharingapp "github.com/invoicesxpert/backend/internal/application/sharing"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/infrastructure/cache"
	"github.com/invoicesxpert/backend/internal/infrastructure/event"
	"github.com/invoicesxpert/backend/internal/infrastructure/ledger"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/invoicesxpert/backend/internal/interfaces/http/handler"
	"github.com/invoicesxpert/backend/internal/interfaces/http/middleware"
	"github.com/invoicesxpert/backend/internal/interfaces/http/router"
	"github.com/invoicesxpert/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flowServer is the HTTP API backed by PostgreSQL and a fake browser
type flowServer struct {
	engine  *gin.Engine
	browser *testutil.FakeBrowser
	events  *testutil.EventRecorder
}

func newFlowServer(t *testing.T, testDB *TestDB) *flowServer {
	t.Helper()

	clientRepo := persistence.NewGormClientRepository(testDB.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(testDB.DB)
	jobRepo := persistence.NewGormExportJobRepository(testDB.DB)

	registry := infra.NewRegistry()
	renderer, err := infra.NewInvoiceRenderer(nil, registry)
	require.NoError(t, err)

	// 210x600 device pixels is a little over two A4 pages
	browser := testutil.NewFakeBrowser(210, 600)

	bus := event.NewInMemoryEventBus(nil)
	recorder := testutil.NewEventRecorder(
		invoicing.EventTypeInvoiceCreated,
		printing.EventTypeExportCompleted,
		printing.EventTypeExportFailed,
	)
	bus.Subscribe(recorder)

	numbers := invoicing.NewNumberGenerator(persistence.NewGormNumberSequence(testDB.DB))
	invoices := invoicingapp.NewInvoiceService(invoiceRepo, clientRepo, numbers, registry, ledger.NewWriter(nil), bus, nil)
	exports := printingapp.NewExportService(invoiceRepo, jobRepo, renderer, browser, browser, infra.NewPaginator(),
		printingapp.WithLocker(cache.NewMemoryLocker()),
		printingapp.WithEventPublisher(bus))

	hs := &handler.Handlers{
		Clients:   handler.NewClientHandler(invoicingapp.NewClientService(clientRepo, nil)),
		Invoices:  handler.NewInvoiceHandler(invoices),
		Exports:   handler.NewExportHandler(exports),
		Templates: handler.NewTemplateHandler(printingapp.NewCatalogService(invoiceRepo, renderer, nil)),
		Dashboard: handler.NewDashboardHandler(invoicingapp.NewDashboardService(invoices, clientRepo)),
		Share:     handler.NewShareHandler(sharingapp.NewShareService(invoiceRepo, renderer, nil, "https://pay.example.com", 0, nil)),
		System:    handler.NewSystemHandler("invoicesxpert", "test", nil),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithAPIMiddleware(middleware.Session()))
	hs.RegisterAll(r, nil)
	r.Setup()

	return &flowServer{engine: engine, browser: browser, events: recorder}
}

func (s *flowServer) do(t *testing.T, method, path, owner string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Serve(t, s.engine, method, path, owner, body)
}

// TestInvoiceFlow_Integration walks a client through invoicing, PDF export
// and sharing with everything persisted in PostgreSQL
func TestInvoiceFlow_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	srv := newFlowServer(t, testDB)
	owner := testutil.TestOwnerID(t)

	var client invoicingapp.ClientResponse
	t.Run("create client", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/clients", owner, map[string]any{
			"name": "Ada Lovelace", "email": "ada@example.com", "company_name": "Analytical Engines",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		client = testutil.DecodeData[invoicingapp.ClientResponse](t, w)
	})

	var inv invoicingapp.InvoiceResponse
	t.Run("create invoice", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/invoices", owner, map[string]any{
			"client_id":  client.ID,
			"company":    map[string]any{"name": "Acme Studio", "address": "1 Main Street", "city": "Springfield", "country": "US", "postal_code": "12345"},
			"issue_date": "2025-03-09",
			"due_date":   "2025-04-08",
			"currency":   "USD",
			"tax_rate":   8.25,
			"status":     "sent",
			"template":   "corporate",
			"items": []map[string]any{
				{"description": "Design", "quantity": 3, "price": "120.00"},
				{"description": "Hosting", "quantity": 1, "price": 19.99},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		inv = testutil.DecodeData[invoicingapp.InvoiceResponse](t, w)

		assert.Regexp(t, `^INV-\d{4}-0001$`, inv.InvoiceNumber)
		assert.Equal(t, "Ada Lovelace", inv.Client.Name)
		assert.Equal(t, "379.99", inv.Totals.Subtotal)
		assert.Equal(t, "31.35", inv.Totals.Tax)
		assert.Equal(t, "411.34", inv.Totals.Total)
	})

	t.Run("client edits do not change the issued invoice", func(t *testing.T) {
		w := srv.do(t, http.MethodPut, "/api/v1/clients/"+client.ID, owner, map[string]any{"name": "Countess Lovelace"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID, owner, nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := testutil.DecodeData[invoicingapp.InvoiceResponse](t, w)
		assert.Equal(t, "Ada Lovelace", got.Client.Name)
	})

	t.Run("export PDF", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/pdf", owner, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Invoice-`+inv.InvoiceNumber+`.pdf"`, w.Header().Get("Content-Disposition"))
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

		assert.Equal(t, []string{"invoice-" + inv.ID + "-pdf"}, srv.browser.Targets())
		assert.Equal(t, 1, srv.browser.Released())

		exportID := w.Header().Get("X-Export-ID")
		require.NotEmpty(t, exportID)

		w = srv.do(t, http.MethodGet, "/api/v1/exports/"+exportID, owner, nil)
		require.Equal(t, http.StatusOK, w.Code)
		job := testutil.DecodeData[printingapp.ExportJobResponse](t, w)
		assert.Equal(t, printing.ExportStatusDownloaded.String(), job.Status)
		assert.Equal(t, "corporate", job.Template)
		assert.Equal(t, 3, job.PageCount)
	})

	t.Run("export with a failing capture", func(t *testing.T) {
		srv.browser.CaptureErr = &infra.RenderError{Code: infra.ErrCodeCaptureFailed, Message: "screenshot failed"}
		defer func() { srv.browser.CaptureErr = nil }()

		w := srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/pdf?template=minimalist", owner, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 2, srv.browser.Released())

		w = srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/exports", owner, nil)
		require.Equal(t, http.StatusOK, w.Code)
		jobs := testutil.DecodeData[[]printingapp.ExportJobResponse](t, w)
		require.Len(t, jobs, 2)
		assert.Equal(t, printing.ExportStatusFailed.String(), jobs[0].Status)
		assert.Equal(t, "minimalist", jobs[0].Template)
		assert.Equal(t, printing.ExportStatusDownloaded.String(), jobs[1].Status)
	})

	t.Run("share link and payment page", func(t *testing.T) {
		w := srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/share/cashapp", owner, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		link := testutil.DecodeData[sharingapp.ShareLink](t, w)
		assert.Equal(t, "https://pay.example.com/pay/"+inv.ID, link.PaymentLink)

		w = srv.do(t, http.MethodGet, "/pay/"+inv.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), inv.InvoiceNumber)
	})

	t.Run("other owners see nothing", func(t *testing.T) {
		stranger := testutil.TestOwnerID(t)
		w := srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID, stranger, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = srv.do(t, http.MethodGet, "/api/v1/invoices/"+inv.ID+"/pdf", stranger, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("numbering continues and delete", func(t *testing.T) {
		w := srv.do(t, http.MethodPost, "/api/v1/invoices", owner, map[string]any{
			"client_id":  client.ID,
			"company":    map[string]any{"name": "Acme Studio", "address": "1 Main Street", "city": "Springfield", "country": "US", "postal_code": "12345"},
			"issue_date": "2025-03-10",
			"due_date":   "2025-04-09",
			"items":      []map[string]any{{"description": "Support", "quantity": 1, "price": 50}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		second := testutil.DecodeData[invoicingapp.InvoiceResponse](t, w)
		assert.Regexp(t, `^INV-\d{4}-0002$`, second.InvoiceNumber)

		w = srv.do(t, http.MethodDelete, "/api/v1/invoices/"+second.ID, owner, nil)
		assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

		w = srv.do(t, http.MethodGet, "/api/v1/invoices", owner, nil)
		require.Equal(t, http.StatusOK, w.Code)
		list := testutil.DecodeData[[]invoicingapp.InvoiceResponse](t, w)
		require.Len(t, list, 1)
		assert.Equal(t, inv.ID, list[0].ID)
	})

	t.Run("domain events reach subscribers", func(t *testing.T) {
		assert.Equal(t, []string{
			invoicing.EventTypeInvoiceCreated,
			printing.EventTypeExportCompleted,
			printing.EventTypeExportFailed,
			invoicing.EventTypeInvoiceCreated,
		}, srv.events.Types())
		assert.Equal(t, []string{owner}, srv.events.Owners())
	})
}
