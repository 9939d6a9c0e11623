package invoicing

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the numeric prefix of a string the way a lenient
// float parser would ("12.5kg" -> "12.5").
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// Price is a unit price that tolerates being supplied as a JSON number or as a
// numeric string. Anything that cannot be coerced is zero.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// PriceFromFloat is a convenience for tests and fixtures.
func PriceFromFloat(f float64) Price {
	return Price{Decimal: decimal.NewFromFloat(f)}
}

// ParsePrice coerces an arbitrary value into a Price.
func ParsePrice(v any) Price {
	switch x := v.(type) {
	case nil:
		return Price{}
	case Price:
		return x
	case decimal.Decimal:
		return Price{Decimal: x}
	case float64:
		return Price{Decimal: decimal.NewFromFloat(x)}
	case float32:
		return Price{Decimal: decimal.NewFromFloat32(x)}
	case int:
		return Price{Decimal: decimal.NewFromInt(int64(x))}
	case int64:
		return Price{Decimal: decimal.NewFromInt(x)}
	case json.Number:
		return parsePriceString(x.String())
	case string:
		return parsePriceString(x)
	default:
		return Price{}
	}
}

func parsePriceString(s string) Price {
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(m)
	if err != nil {
		return Price{}
	}
	return Price{Decimal: d}
}

// UnmarshalJSON accepts 12.5, "12.5", null and garbage (as zero).
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Price{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*p = Price{}
			return nil
		}
		*p = parsePriceString(s)
		return nil
	}
	*p = parsePriceString(string(data))
	return nil
}

// MarshalJSON writes the price as a bare JSON number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}
