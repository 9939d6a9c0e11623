package printing

import (
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

//go:embed templates/invoice.html
var templateFS embed.FS

const invoiceTemplatePath = "templates/invoice.html"

// RenderResult is the markup of one invoice in one style
type RenderResult struct {
	// HTML is the invoice fragment, ready to be mounted in a host container
	HTML string
	// Page is the fragment wrapped in a standalone HTML document
	Page string
	// Theme is the resolved style
	Theme Theme
	// Totals are the figures shown on the document
	Totals invoicing.Totals
	// RenderDuration is how long the rendering took
	RenderDuration time.Duration
}

// InvoiceRenderer turns an invoice into themed HTML. There is one layout;
// styles only change the CSS tokens.
type InvoiceRenderer struct {
	engine   *TemplateEngine
	registry *Registry
	tmpl     *template.Template
}

// NewInvoiceRenderer parses the embedded layout
func NewInvoiceRenderer(engine *TemplateEngine, registry *Registry) (*InvoiceRenderer, error) {
	if engine == nil {
		engine = NewTemplateEngine()
	}
	if registry == nil {
		registry = NewRegistry()
	}
	content, err := templateFS.ReadFile(invoiceTemplatePath)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to read embedded invoice layout", err)
	}
	tmpl, err := engine.Parse("invoice.html", string(content))
	if err != nil {
		return nil, err
	}
	return &InvoiceRenderer{engine: engine, registry: registry, tmpl: tmpl}, nil
}

// Registry returns the style registry used for resolution
func (r *InvoiceRenderer) Registry() *Registry {
	return r.registry
}

type invoiceItemView struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

type invoiceView struct {
	Theme     Theme
	Number    string
	IssueDate string
	DueDate   string
	Currency  string
	Company   invoicing.Company
	Client    invoicing.ClientSnapshot
	Items     []invoiceItemView
	Totals    invoicing.Totals
	Notes     string
	Terms     string
}

func newInvoiceView(inv *invoicing.Invoice, theme Theme) invoiceView {
	items := make([]invoiceItemView, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = invoiceItemView{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.Decimal,
			Total:       item.Total(),
		}
	}
	return invoiceView{
		Theme:     theme,
		Number:    inv.InvoiceNumber,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Currency:  inv.Currency,
		Company:   inv.Company,
		Client:    inv.Client,
		Items:     items,
		Totals:    inv.Totals(),
		Notes:     inv.Notes,
		Terms:     inv.Terms,
	}
}

// Render produces the invoice markup in the style named by key. Unknown keys
// fall back to classic. The invoice is never modified.
func (r *InvoiceRenderer) Render(ctx context.Context, inv *invoicing.Invoice, key string) (*RenderResult, error) {
	if inv == nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "invoice is nil", nil)
	}
	start := time.Now()
	theme := r.registry.Resolve(key)
	view := newInvoiceView(inv, theme)

	fragment, err := r.engine.Execute(ctx, r.tmpl, "invoice", view)
	if err != nil {
		return nil, err
	}
	page, err := r.engine.Execute(ctx, r.tmpl, "page", view)
	if err != nil {
		return nil, err
	}

	return &RenderResult{
		HTML:           fragment,
		Page:           page,
		Theme:          theme,
		Totals:         view.Totals,
		RenderDuration: time.Since(start),
	}, nil
}
