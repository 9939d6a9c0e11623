package invoicing

import (
	"context"
	"fmt"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// RecentInvoiceLimit is how many invoices the dashboard lists
const RecentInvoiceLimit = 5

// DashboardService builds the home screen overview
type DashboardService struct {
	invoices *InvoiceService
	clients  invoicing.ClientRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(invoices *InvoiceService, clients invoicing.ClientRepository) *DashboardService {
	return &DashboardService{invoices: invoices, clients: clients}
}

// Summary counts invoices and clients and sums paid and outstanding amounts.
// Amounts include tax and are never added across currencies.
func (s *DashboardService) Summary(ctx context.Context, ownerID string) (*DashboardResponse, error) {
	invoices, err := s.invoices.newestFirst(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	clients, err := s.clients.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}

	type sums struct{ paid, outstanding decimal.Decimal }
	var order []string
	byCurrency := map[string]*sums{}
	statusCounts := make(map[string]int, len(invoicing.AllStatuses()))
	for _, st := range invoicing.AllStatuses() {
		statusCounts[st.String()] = 0
	}

	for i := range invoices {
		inv := &invoices[i]
		statusCounts[inv.Status.String()]++

		sum, ok := byCurrency[inv.Currency]
		if !ok {
			sum = &sums{}
			byCurrency[inv.Currency] = sum
			order = append(order, inv.Currency)
		}
		total := inv.Totals().Total
		if inv.Status.IsPaid() {
			sum.paid = sum.paid.Add(total)
		} else {
			sum.outstanding = sum.outstanding.Add(total)
		}
	}

	currencies := make([]CurrencySummary, 0, len(order))
	for _, cur := range order {
		sum := byCurrency[cur]
		currencies = append(currencies, CurrencySummary{
			Currency:    cur,
			Paid:        sum.paid.StringFixed(2),
			Outstanding: sum.outstanding.StringFixed(2),
			Revenue:     sum.paid.Add(sum.outstanding).StringFixed(2),
		})
	}

	recent := invoices[:min(len(invoices), RecentInvoiceLimit)]
	return &DashboardResponse{
		InvoiceCount:   len(invoices),
		ClientCount:    len(clients),
		StatusCounts:   statusCounts,
		Currencies:     currencies,
		RecentInvoices: ToInvoiceResponses(recent),
	}, nil
}
