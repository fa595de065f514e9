package catalog

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount rendered with two decimal places on the wire.
// Internally it keeps full decimal precision; rounding happens at the edge.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps a decimal as Money.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MarshalJSON renders the amount as a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f)
	return nil
}

// String returns the two-decimal representation.
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
