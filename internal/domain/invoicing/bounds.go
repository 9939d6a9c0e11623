package invoicing

import "github.com/shopspring/decimal"

// Amount limits. They match the invoice_items.unit_price DECIMAL(18,4) and
// invoices.tax_rate DECIMAL(9,4) columns, so every repository returns the
// amounts it was given.
const (
	MaxAmountScale   = 4
	MaxPriceDigits   = 12
	MaxTaxRate       = 100
	MaxQuantity      = 1_000_000
	maxTaxRateDigits = 3
)

// fitsAmount reports whether d has at most intDigits digits before the point
// and MaxAmountScale significant digits after it. It looks at the exponent
// before doing any arithmetic: "1e50000000" is a tiny decimal whose
// expansion is not.
func fitsAmount(d decimal.Decimal, intDigits int) bool {
	if d.IsZero() {
		return true
	}
	exp := int64(d.Exponent())
	digits := int64(d.NumDigits())
	if digits+exp > int64(intDigits) {
		return false
	}
	if exp >= -MaxAmountScale {
		return true
	}
	// the coefficient would have to end in this many zeros
	if -exp-MaxAmountScale >= digits {
		return false
	}
	return d.Truncate(MaxAmountScale).Equal(d)
}

// InRange reports whether the price is non-negative, below 10^12 and carries
// at most four decimals.
func (p Price) InRange() bool {
	return !p.IsNegative() && fitsAmount(p.Decimal, MaxPriceDigits)
}

// ValidTaxRate reports whether r is a percentage between 0 and 100 with at
// most four decimals.
func ValidTaxRate(r decimal.Decimal) bool {
	return !r.IsNegative() && fitsAmount(r, maxTaxRateDigits) && r.LessThanOrEqual(decimal.NewFromInt(MaxTaxRate))
}
