package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService serves the style gallery and HTML previews
type CatalogService struct {
	invoices invoicing.InvoiceRepository
	renderer *infra.InvoiceRenderer
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(invoices invoicing.InvoiceRepository, renderer *infra.InvoiceRenderer, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		invoices: invoices,
		renderer: renderer,
		logger:   logger,
	}
}

// Templates returns the gallery entries in selector order
func (s *CatalogService) Templates() []infra.CatalogEntry {
	return s.renderer.Registry().Catalog()
}

// Options returns the selector options in display order
func (s *CatalogService) Options() []infra.TemplateOption {
	return s.renderer.Registry().List()
}

// Preview renders a standalone page in the style named by key. With a nil
// invoiceID the built-in sample invoice is used.
func (s *CatalogService) Preview(ctx context.Context, ownerID, key string, invoiceID *uuid.UUID) (*PreviewResponse, error) {
	registry := s.renderer.Registry()
	if !registry.Has(key) {
		return nil, shared.ErrNotFound.WithMessage("Template not found")
	}

	inv := SampleInvoice()
	if invoiceID != nil {
		stored, err := s.invoices.FindByID(ctx, ownerID, *invoiceID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrNotFound.WithMessage("Invoice not found")
			}
			return nil, fmt.Errorf("failed to get invoice: %w", err)
		}
		inv = stored
	}

	result, err := s.renderer.Render(ctx, inv, key)
	if err != nil {
		var renderErr *infra.RenderError
		if errors.As(err, &renderErr) {
			return nil, shared.NewDomainError(renderErr.Code, renderErr.Message)
		}
		return nil, fmt.Errorf("failed to render preview: %w", err)
	}
	s.logger.Debug("template preview rendered",
		zap.String("template", result.Theme.Key),
		zap.Duration("duration", result.RenderDuration))

	return &PreviewResponse{Template: result.Theme.Key, HTML: result.Page}, nil
}

// SampleInvoice is the document shown in the template gallery
func SampleInvoice() *invoicing.Invoice {
	inv, err := invoicing.NewInvoice("sample", "INV-2024-0001", invoicing.InvoiceParams{
		IssueDate: "2024-01-15",
		DueDate:   "2024-02-14",
		Currency:  "USD",
		TaxRate:   decimal.NewFromInt(10),
		Notes:     "Thank you for your business.",
		Terms:     "Payment due within 30 days.",
		Template:  infra.DefaultThemeKey,
		Status:    invoicing.StatusSent,
		Client: invoicing.ClientSnapshot{
			Name:        "Jane Cooper",
			Email:       "jane@northwind.example",
			CompanyName: "Northwind Traders",
			Address:     "42 Harbour Road, Portland, OR 97201",
		},
		Company: invoicing.Company{
			Name:       "InvoicesXpert Studio",
			Address:    "100 Market Street",
			City:       "San Francisco",
			Country:    "United States",
			PostalCode: "94105",
		},
		Items: []invoicing.LineItem{
			{Description: "Brand identity design", Quantity: 1, UnitPrice: invoicing.PriceFromFloat(1200)},
			{Description: "Landing page build", Quantity: 2, UnitPrice: invoicing.PriceFromFloat(850)},
			{Description: "Hosting (monthly)", Quantity: 3, UnitPrice: invoicing.ParsePrice("29.99")},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("sample invoice is invalid: %v", err))
	}
	inv.ClearDomainEvents()
	return inv
}
