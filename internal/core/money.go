// Package core provides money parsing and handling utilities.
//
// Amounts are kept as integer cents. Conversions from decimal input use
// half-up rounding at the cent, and JSON always carries two decimals.
package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in cents.
type Money struct {
	Cents int64
}

// Zero is the empty amount.
var Zero = Money{}

// Reais builds a Money from a float amount, rounding half-up at the cent.
func Reais(v float64) Money {
	return FromDecimal(decimal.NewFromFloat(v))
}

// FromDecimal rounds d to two decimals and converts it to cents.
func FromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// ParseAmount converts a decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Negative,
// zero and malformed values are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12,345") -> 1235 cents (rounds up)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrInvalidAmount
	}
	m := FromDecimal(d)
	if m.Cents <= 0 {
		return Zero, ErrInvalidAmount
	}
	return m, nil
}

// Decimal returns the amount as a decimal with two places.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount as a float64 for ratio computations and display.
// Use cents for sums to avoid floating-point drift.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

// Mul multiplies by a factor and rounds half-up at the cent.
func (m Money) Mul(factor float64) Money {
	return FromDecimal(m.Decimal().Mul(decimal.NewFromFloat(factor)))
}

// Div splits the amount into n parts, rounding each part independently.
// The remainder is not redistributed.
func (m Money) Div(n int) Money {
	if n <= 1 {
		return m
	}
	return FromDecimal(m.Decimal().Div(decimal.NewFromInt(int64(n))))
}

// Percent returns pct percent of the amount.
func (m Money) Percent(pct float64) Money {
	return m.Mul(pct / 100)
}

// NonNegative clamps negative amounts to zero.
func (m Money) NonNegative() Money {
	if m.Cents < 0 {
		return Zero
	}
	return m
}

// Sum adds a list of amounts.
func Sum(values ...Money) Money {
	var total int64
	for _, v := range values {
		total += v.Cents
	}
	return Money{Cents: total}
}

// String formats the amount in the pt-BR style used by the messages,
// e.g. "R$ 1.234,56".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("R$ %s,%02d", b.String(), cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON emits the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*m = Zero
		return nil
	}
	s = strings.Replace(s, ",", ".", 1)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	*m = FromDecimal(d)
	return nil
}
