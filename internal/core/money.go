// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer minor units (paise) so sums over
// spreadsheet rows are exact. Parsing goes through shopspring/decimal.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units. Negative values are allowed for
// balances; entries are validated separately.
type Money struct {
	Cents int64
}

// ParseAmount converts a spreadsheet or CSV cell into Money.
//
// It tolerates the noise found in exported statements: surrounding
// whitespace, a leading currency symbol, thousands separators and a
// trailing "CR"/"DR" marker. Rounding is half away from zero on the
// third decimal.
//
// Examples:
//
//	ParseAmount("1,234.50") -> 123450
//	ParseAmount("₹ 99")     -> 9900
//	ParseAmount("-12.345")  -> -1235
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "INR")
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "CR") || strings.HasSuffix(upper, "DR") {
		s = s[:len(s)-2]
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).Round(0).IntPart()}, nil
}

// ParseDecimalToCents parses a form input amount. Unlike ParseAmount it
// rejects negative values; zero is accepted because a budget line may
// legitimately be empty.
func ParseDecimalToCents(s string) (int64, error) {
	m, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	if m.Cents < 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Units returns the value in major units as a float64 for display.
// Use Cents for arithmetic.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// Decimal returns the exact major-unit value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// CellString renders the amount the way it is written back to a sheet:
// plain decimal, no grouping, at most two fraction digits.
func (m Money) CellString() string {
	return m.Decimal().String()
}

func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}
