package invoicing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrice_InRange(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"25", true},
		{"0.1234", true},
		{"0.12340", true},
		{"1.00000000000000000000", true},
		{"12.5e-3", true},
		{"999999999999.9999", true},
		{"1e11", true},
		{"0.12345", false},
		{"1000000000000", false},
		{"1e12", false},
		{"-0.01", false},
		{"1e50000000", false},
		{"1e-50000000", false},
		{"3e-2000000000", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPrice(decimal.RequireFromString(tt.in)).InRange())
		})
	}
}

func TestPrice_InRangeIsCheapForExtremeExponents(t *testing.T) {
	start := time.Now()
	for _, s := range []string{"1e2000000000", "7e-2000000000", "123456789e1999999990"} {
		assert.False(t, ParsePrice(s).InRange(), s)
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestValidTaxRate(t *testing.T) {
	for in, want := range map[string]bool{
		"0":          true,
		"7.125":      true,
		"100":        true,
		"100.0000":   true,
		"100.0001":   false,
		"7.12345":    false,
		"-1":         false,
		"1e50000000": false,
	} {
		assert.Equal(t, want, ValidTaxRate(decimal.RequireFromString(in)), in)
	}
}
