package invoicing

import (
	"context"
	"fmt"
	"time"
)

// InvoiceNumberPrefix starts every invoice number
const InvoiceNumberPrefix = "INV"

// NumberSequence hands out strictly increasing sequence values per owner and
// year. Implementations must be safe for concurrent use.
type NumberSequence interface {
	Next(ctx context.Context, ownerID string, year int) (int64, error)
}

// FormatInvoiceNumber renders INV-<year>-<seq>, padding seq to 4 digits.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", InvoiceNumberPrefix, year, seq)
}

// NumberGenerator issues invoice numbers from a NumberSequence.
type NumberGenerator struct {
	seq NumberSequence
	now func() time.Time
}

// NewNumberGenerator creates a generator using the wall clock for the year
func NewNumberGenerator(seq NumberSequence) *NumberGenerator {
	return &NumberGenerator{seq: seq, now: time.Now}
}

// WithClock overrides the clock, for tests
func (g *NumberGenerator) WithClock(now func() time.Time) *NumberGenerator {
	g.now = now
	return g
}

// Next returns the owner's next invoice number
func (g *NumberGenerator) Next(ctx context.Context, ownerID string) (string, error) {
	year := g.now().Year()
	n, err := g.seq.Next(ctx, ownerID, year)
	if err != nil {
		return "", fmt.Errorf("failed to allocate invoice number: %w", err)
	}
	return FormatInvoiceNumber(year, n), nil
}
