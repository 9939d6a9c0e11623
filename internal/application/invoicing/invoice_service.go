package invoicing

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TemplateCatalog reports which style keys exist
type TemplateCatalog interface {
	Has(key string) bool
	Keys() []string
}

// LedgerWriter renders a list of invoices as a spreadsheet
type LedgerWriter interface {
	Write(ctx context.Context, invoices []invoicing.Invoice) ([]byte, error)
}

// DefaultTemplate is remembered on invoices created without a style
const DefaultTemplate = "classic"

// ErrUnknownTemplate is returned when an invoice names a style that does not exist
var ErrUnknownTemplate = shared.NewDomainError("INVALID_TEMPLATE", "Unknown invoice template")

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	clientRepo  invoicing.ClientRepository
	numbers     *invoicing.NumberGenerator
	templates   TemplateCatalog
	ledger      LedgerWriter
	events      shared.EventPublisher
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService. templates, ledger and
// events may be nil.
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	clientRepo invoicing.ClientRepository,
	numbers *invoicing.NumberGenerator,
	templates TemplateCatalog,
	ledger LedgerWriter,
	events shared.EventPublisher,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		numbers:     numbers,
		templates:   templates,
		ledger:      ledger,
		events:      events,
		logger:      logger,
	}
}

// Create issues a new invoice with the owner's next number
func (s *InvoiceService) Create(ctx context.Context, ownerID string, req InvoiceRequest) (*InvoiceResponse, error) {
	params, err := s.params(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	if params.Template == "" {
		params.Template = DefaultTemplate
	}
	// a rejected invoice must not consume a number
	if err := params.Validate(); err != nil {
		return nil, err
	}

	number, err := s.numbers.Next(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	inv, err := invoicing.NewInvoice(ownerID, number, params)
	if err != nil {
		return nil, err
	}
	events := inv.PullDomainEvents()

	stored, err := s.invoiceRepo.Add(ctx, inv)
	if err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	if s.events != nil {
		if err := s.events.Publish(ctx, events...); err != nil {
			s.logger.Warn("failed to publish invoice events",
				zap.String("invoice_id", stored.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", stored.ID.String()),
		zap.String("invoice_number", stored.InvoiceNumber))
	response := ToInvoiceResponse(stored)
	return &response, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapNotFound(err, "Invoice not found", "failed to get invoice")
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List returns the owner's invoices newest first, filtered and paginated
func (s *InvoiceService) List(ctx context.Context, ownerID string, req ListInvoicesRequest) (*shared.Paginated[InvoiceResponse], error) {
	invoices, err := s.newestFirst(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))
	filtered := invoices[:0]
	for _, inv := range invoices {
		if req.Status != "" && inv.Status.String() != req.Status {
			continue
		}
		if search != "" && !matches(&inv, search) {
			continue
		}
		filtered = append(filtered, inv)
	}

	page := shared.Paginate(ToInvoiceResponses(filtered), req.Page, req.PageSize)
	return &page, nil
}

// Update replaces the editable fields. The number never changes; an empty
// status or template keeps the current one.
func (s *InvoiceService) Update(ctx context.Context, ownerID string, id uuid.UUID, req InvoiceRequest) (*InvoiceResponse, error) {
	params, err := s.params(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	updated, err := s.invoiceRepo.Update(ctx, ownerID, id, func(inv *invoicing.Invoice) error {
		p := params
		if req.Status == "" {
			p.Status = inv.Status
		}
		if p.Template == "" {
			p.Template = inv.Template
		}
		return inv.Revise(p)
	})
	if err != nil {
		return nil, mapNotFound(err, "Invoice not found", "failed to update invoice")
	}

	response := ToInvoiceResponse(updated)
	return &response, nil
}

// UpdateStatus sets the status label. Any label may follow any other.
func (s *InvoiceService) UpdateStatus(ctx context.Context, ownerID string, id uuid.UUID, req UpdateStatusRequest) (*InvoiceResponse, error) {
	status, err := invoicing.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	updated, err := s.invoiceRepo.Update(ctx, ownerID, id, func(inv *invoicing.Invoice) error {
		return inv.SetStatus(status)
	})
	if err != nil {
		return nil, mapNotFound(err, "Invoice not found", "failed to update invoice status")
	}

	s.logger.Info("invoice status changed",
		zap.String("invoice_id", id.String()),
		zap.String("status", status.String()))
	response := ToInvoiceResponse(updated)
	return &response, nil
}

// Delete removes an invoice
func (s *InvoiceService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	deleted, err := s.invoiceRepo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	if !deleted {
		return shared.ErrNotFound.WithMessage("Invoice not found")
	}
	s.logger.Info("invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// Ledger returns every invoice of the owner as an XLSX workbook, newest first
func (s *InvoiceService) Ledger(ctx context.Context, ownerID string) ([]byte, error) {
	if s.ledger == nil {
		return nil, shared.ErrInvalidState.WithMessage("Ledger export is not configured")
	}
	invoices, err := s.newestFirst(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	data, err := s.ledger.Write(ctx, invoices)
	if err != nil {
		return nil, fmt.Errorf("failed to write ledger: %w", err)
	}
	return data, nil
}

func (s *InvoiceService) newestFirst(ctx context.Context, ownerID string) ([]invoicing.Invoice, error) {
	invoices, err := s.invoiceRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	slices.SortStableFunc(invoices, func(a, b invoicing.Invoice) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.InvoiceNumber, a.InvoiceNumber)
	})
	return invoices, nil
}

// params resolves the request into domain parameters, copying a stored
// client into the invoice when one is referenced.
func (s *InvoiceService) params(ctx context.Context, ownerID string, req InvoiceRequest) (invoicing.InvoiceParams, error) {
	var client invoicing.ClientSnapshot
	switch {
	case req.ClientID != nil:
		c, err := s.clientRepo.FindByID(ctx, ownerID, *req.ClientID)
		if err != nil {
			return invoicing.InvoiceParams{}, mapNotFound(err, "Client not found", "failed to get client")
		}
		client = c.Snapshot()
	case req.Client != nil:
		client = invoicing.ClientSnapshot{
			Name:        req.Client.Name,
			Email:       req.Client.Email,
			CompanyName: req.Client.CompanyName,
			Phone:       req.Client.Phone,
			Address:     req.Client.Address,
		}
	default:
		return invoicing.InvoiceParams{}, invoicing.ErrClientRequired
	}

	if req.Template != "" && s.templates != nil && !s.templates.Has(req.Template) {
		return invoicing.InvoiceParams{}, ErrUnknownTemplate.WithMessage(
			"Unknown invoice template, expected one of: " + strings.Join(s.templates.Keys(), ", "))
	}

	status, err := invoicing.ParseStatus(req.Status)
	if err != nil {
		return invoicing.InvoiceParams{}, err
	}

	items := make([]invoicing.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = invoicing.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		}
	}

	return invoicing.InvoiceParams{
		IssueDate: req.IssueDate,
		DueDate:   req.DueDate,
		Currency:  req.Currency,
		TaxRate:   req.TaxRate,
		Notes:     req.Notes,
		Terms:     req.Terms,
		Template:  req.Template,
		Status:    status,
		Client:    client,
		Company: invoicing.Company{
			Name:       req.Company.Name,
			Address:    req.Company.Address,
			City:       req.Company.City,
			Country:    req.Company.Country,
			PostalCode: req.Company.PostalCode,
		},
		Items: items,
	}, nil
}

func matches(inv *invoicing.Invoice, search string) bool {
	for _, field := range []string{inv.InvoiceNumber, inv.Client.Name, inv.Client.Email, inv.Client.CompanyName} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
