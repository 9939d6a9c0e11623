package invoicing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Totals is the derived money summary of an invoice. Values keep full
// precision; rounding to cents happens only when they are displayed.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"tax_rate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// DisplayTotals holds the two-decimal strings shown to users.
type DisplayTotals struct {
	Subtotal string `json:"subtotal"`
	TaxRate  string `json:"tax_rate"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// CalculateTotals is the one totals computation of the system. Every view of
// an invoice (rendered document, API responses, dashboard, ledger, share
// message) goes through it.
//
// A negative tax rate is treated as 0. There is no currency-aware rounding.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal) Totals {
	if taxRate.IsNegative() {
		taxRate = decimal.Zero
	}
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total())
	}
	tax := subtotal.Mul(taxRate).Div(hundred)
	return Totals{
		Subtotal: subtotal,
		TaxRate:  taxRate,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// Display rounds money to 2 places and the rate to 1 place.
func (t Totals) Display() DisplayTotals {
	return DisplayTotals{
		Subtotal: t.Subtotal.StringFixed(2),
		TaxRate:  t.TaxRate.StringFixed(1),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
