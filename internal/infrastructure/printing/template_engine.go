package printing

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// TemplateEngine parses and executes html/template sources with the
// invoice formatting helpers installed.
type TemplateEngine struct {
	funcs template.FuncMap
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{funcs: template.FuncMap{
		"formatMoney":  formatMoney,
		"formatAmount": formatAmount,
		"formatRate":   formatRate,
		"formatDate":   formatDate,
		"title":        titleCase,
		"notEmpty":     notEmpty,
		// deep links use custom schemes that html/template would rewrite to #ZgotmplZ
		"safeURL": func(s string) template.URL { return template.URL(s) },
	}}
}

// Parse compiles content, which may define several named templates.
func (e *TemplateEngine) Parse(name, content string) (*template.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := template.New(name).Funcs(e.funcs).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeInvalidHTML, "failed to parse template", err)
	}
	return tmpl, nil
}

// Execute runs the template called name from tmpl.
func (e *TemplateEngine) Execute(ctx context.Context, tmpl *template.Template, name string, data any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", NewRenderError(ErrCodeRenderTimeout, "rendering cancelled", err)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// RenderString parses content and executes it in one step.
func (e *TemplateEngine) RenderString(ctx context.Context, name, content string, data any) (string, error) {
	tmpl, err := e.Parse(name, content)
	if err != nil {
		return "", err
	}
	return e.Execute(ctx, tmpl, name, data)
}

// formatMoney prints "<CUR> <amount>" with two decimals and no grouping,
// e.g. "USD 1234.50". The preview and the exported PDF both use it.
func formatMoney(currency string, v any) string {
	return strings.TrimSpace(currency + " " + toDecimal(v).StringFixed(2))
}

var amountPrinter = message.NewPrinter(language.English)

// formatAmount groups thousands: 1234.5 -> "1,234.50".
func formatAmount(v any) string {
	d := toDecimal(v).Round(2)
	return amountPrinter.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}

// formatRate prints a tax rate with one decimal: 10 -> "10.0".
func formatRate(v any) string {
	return toDecimal(v).StringFixed(1)
}

var dateInputs = []string{time.RFC3339, "2006-01-02 15:04:05", invoicing.DateLayout}

// formatDate normalises to YYYY-MM-DD. Strings that are not dates come back
// unchanged so a free-text date is still printed.
func formatDate(v any) string {
	var t time.Time
	switch val := v.(type) {
	case time.Time:
		t = val
	case *time.Time:
		if val != nil {
			t = *val
		}
	case string:
		s := strings.TrimSpace(val)
		for _, layout := range dateInputs {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(invoicing.DateLayout)
			}
		}
		return val
	}
	if t.IsZero() {
		return ""
	}
	return t.Format(invoicing.DateLayout)
}

var titleCaser = cases.Title(language.English)

func titleCase(s string) string {
	return titleCaser.String(s)
}

// notEmpty hides optional blocks such as notes, terms and zero discounts.
func notEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case int:
		return val != 0
	case decimal.Decimal:
		return !val.IsZero()
	case invoicing.Price:
		return !val.IsZero()
	case interface{ String() string }:
		return strings.TrimSpace(val.String()) != ""
	}
	return true
}

// toDecimal reads the numeric shapes templates receive. Anything
// unparseable is zero.
func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val != nil {
			return *val
		}
	case invoicing.Price:
		return val.Decimal
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		if d, err := decimal.NewFromString(strings.TrimSpace(val)); err == nil {
			return d
		}
	}
	return decimal.Zero
}
