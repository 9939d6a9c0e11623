// Package sharing builds payment-app links that carry an invoice summary.
package sharing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	infra "github.com/invoicesxpert/backend/internal/infrastructure/printing"
	"go.uber.org/zap"
)

// App is a payment app that can receive an invoice link
type App string

const (
	AppCashApp App = "cashapp"
	AppZelle   App = "zelle"
)

// DefaultFallbackAfter is how long the launch page waits for the app before
// opening the web fallback.
const DefaultFallbackAfter = time.Second

// ParseApp normalizes an app name
func ParseApp(s string) (App, error) {
	app := App(strings.ToLower(strings.TrimSpace(s)))
	switch app {
	case AppCashApp, AppZelle:
		return app, nil
	}
	return "", shared.ErrUnsupportedApp
}

// ShareLink is everything needed to hand an invoice to a payment app
type ShareLink struct {
	App           App           `json:"app"`
	InvoiceID     string        `json:"invoice_id"`
	InvoiceNumber string        `json:"invoice_number"`
	Currency      string        `json:"currency"`
	Total         string        `json:"total"`
	PaymentLink   string        `json:"payment_link"`
	Message       string        `json:"message"`
	DeepLink      string        `json:"deep_link"`
	FallbackURL   string        `json:"fallback_url"`
	FallbackAfter time.Duration `json:"-"`
	FallbackMS    int64         `json:"fallback_after_ms"`
}

// ShareService builds share links and the pages they point to
type ShareService struct {
	invoices      invoicing.InvoiceRepository
	renderer      *infra.InvoiceRenderer
	engine        *infra.TemplateEngine
	publicOrigin  string
	fallbackAfter time.Duration
	logger        *zap.Logger
}

// NewShareService creates a new ShareService. An empty publicOrigin means the
// origin of each request is used.
func NewShareService(
	invoices invoicing.InvoiceRepository,
	renderer *infra.InvoiceRenderer,
	engine *infra.TemplateEngine,
	publicOrigin string,
	fallbackAfter time.Duration,
	logger *zap.Logger,
) *ShareService {
	if engine == nil {
		engine = infra.NewTemplateEngine()
	}
	if fallbackAfter <= 0 {
		fallbackAfter = DefaultFallbackAfter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShareService{
		invoices:      invoices,
		renderer:      renderer,
		engine:        engine,
		publicOrigin:  strings.TrimRight(publicOrigin, "/"),
		fallbackAfter: fallbackAfter,
		logger:        logger,
	}
}

// Link builds the share link of one of ownerID's invoices for app.
// requestOrigin is used when no public origin is configured.
func (s *ShareService) Link(ctx context.Context, ownerID string, invoiceID uuid.UUID, appName, requestOrigin string) (*ShareLink, error) {
	app, err := ParseApp(appName)
	if err != nil {
		return nil, err
	}
	inv, err := found(s.invoices.FindByID(ctx, ownerID, invoiceID))
	if err != nil {
		return nil, err
	}
	return s.build(inv, app, requestOrigin), nil
}

// PublicLink builds the same link from the invoice ID alone, for the launch
// page a recipient opens.
func (s *ShareService) PublicLink(ctx context.Context, invoiceID uuid.UUID, appName, requestOrigin string) (*ShareLink, error) {
	app, err := ParseApp(appName)
	if err != nil {
		return nil, err
	}
	inv, err := found(s.invoices.Lookup(ctx, invoiceID))
	if err != nil {
		return nil, err
	}
	return s.build(inv, app, requestOrigin), nil
}

func (s *ShareService) build(inv *invoicing.Invoice, app App, requestOrigin string) *ShareLink {
	origin := s.publicOrigin
	if origin == "" {
		origin = strings.TrimRight(requestOrigin, "/")
	}
	payment := PaymentLink(origin, inv.ID)
	message := Message(inv, payment)
	deep, fallback := links(app, message)

	s.logger.Debug("share link built",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("app", string(app)))

	return &ShareLink{
		App:           app,
		InvoiceID:     inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Currency:      inv.Currency,
		Total:         inv.Totals().Total.StringFixed(2),
		PaymentLink:   payment,
		Message:       message,
		DeepLink:      deep,
		FallbackURL:   fallback,
		FallbackAfter: s.fallbackAfter,
		FallbackMS:    s.fallbackAfter.Milliseconds(),
	}
}

// PaymentPage renders the read-only payment page of an invoice. The link
// carries no owner, so the invoice is looked up by ID alone.
func (s *ShareService) PaymentPage(ctx context.Context, invoiceID uuid.UUID) (string, error) {
	inv, err := found(s.invoices.Lookup(ctx, invoiceID))
	if err != nil {
		return "", err
	}
	result, err := s.renderer.Render(ctx, inv, infra.DefaultThemeKey)
	if err != nil {
		return "", fmt.Errorf("failed to render payment page: %w", err)
	}
	return result.Page, nil
}

// LaunchPage renders the page that tries the app first and falls back to the web
func (s *ShareService) LaunchPage(ctx context.Context, link *ShareLink) (string, error) {
	return s.engine.RenderString(ctx, "launch", launchTemplate, link)
}

func found(inv *invoicing.Invoice, err error) (*invoicing.Invoice, error) {
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound.WithMessage("Invoice not found")
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return inv, nil
}

// PaymentLink is the public web page of an invoice
func PaymentLink(origin string, invoiceID uuid.UUID) string {
	return origin + "/pay/" + invoiceID.String()
}

// Message is the text handed to the payment app
func Message(inv *invoicing.Invoice, paymentLink string) string {
	return fmt.Sprintf("Invoice #%s - %s %s\nPay here: %s",
		inv.InvoiceNumber, inv.Totals().Total.StringFixed(2), inv.Currency, paymentLink)
}

func links(app App, message string) (deep, fallback string) {
	encoded := encodeComponent(message)
	switch app {
	case AppCashApp:
		return "cashapp://cash.app/pay/" + encoded, "https://cash.app/" + encoded
	case AppZelle:
		return "zelle://send?message=" + encoded, "https://www.zellepay.com/"
	}
	return "", ""
}

// encodeComponent percent-encodes s the way browsers encode a URI component:
// letters, digits and -_.!~*'() stay literal, everything else is escaped as
// UTF-8 bytes.
func encodeComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&0x0f])
	}
	return b.String()
}

const upperHex = "0123456789ABCDEF"

func unreservedComponent(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
