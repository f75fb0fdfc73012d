package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a euro amount with proper financial precision
type Money struct {
	decimal.Decimal
}

// FromDecimal creates a new Money instance from a decimal.Decimal
func FromDecimal(d decimal.Decimal) Money {
	return Money{d}
}

// Format renders the amount in French convention: thousands separated by
// narrow spaces, comma as decimal mark, trailing euro sign ("12 345,67 €").
func (m Money) Format() string {
	fixed := m.Decimal.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
		if len(intPart) > lead {
			b.WriteByte(' ')
		}
	}
	for i := lead; i < len(intPart); i += 3 {
		b.WriteString(intPart[i : i+3])
		if i+3 < len(intPart) {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	b.WriteString(" €")
	return b.String()
}
