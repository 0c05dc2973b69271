// Package core provides the budget domain model and money handling.
//
// Money is kept as integer kurus to avoid floating-point drift in
// calculations; JSON round-trips as a plain decimal number in lira, which is
// what the clients send and expect back.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in kurus (1/100 lira).
type Money struct {
	Cents int64
}

// Lira returns the lira value as a float64 for display purposes.
// Use Cents for calculations.
func (m Money) Lira() float64 {
	return float64(m.Cents) / 100.0
}

// MarshalJSON emits the amount as a plain decimal number in lira, so a
// budget of 5000 lira serializes as 5000, not 500000.
func (m Money) MarshalJSON() ([]byte, error) {
	d := decimal.New(m.Cents, -2)
	return []byte(d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string, with at most two
// decimal places of precision retained (half-up on the third).
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		m.Cents = 0
		return nil
	}
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return err
	}
	m.Cents = cents
	return nil
}

// NewMoneyFromDecimal converts a decimal lira amount to Money, rounding
// half-up to whole kurus.
func NewMoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()}
}

// ParseDecimalToCents converts a decimal string to kurus with half-up
// rounding on the third decimal place. Both dot (12.34) and comma (12,34)
// separators are accepted. Negative values are rejected; zero is allowed
// (a budget legitimately resets to zero).
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Guard the multiplication by 100 below.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return iv*100 + fracCents, nil
}
