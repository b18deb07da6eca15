// Package core holds the bill domain model and its pure derivations.
//
// This file contains the fixed-point money representation. Amounts are kept
// as integer cents internally so that month totals are exact, while the JSON
// wire format stays a plain decimal number.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in minor units (cents).
type Money struct {
	Cents int64
}

// CentsOf constructs a Money value from minor units.
func CentsOf(cents int64) Money {
	return Money{Cents: cents}
}

// ParseDecimal converts a decimal string to Money with half-up rounding on
// the third decimal place. Zero is allowed; negative values are not.
//
// Examples:
//
//	ParseDecimal("1200")   -> 120000 cents
//	ParseDecimal("12.34")  -> 1234 cents
//	ParseDecimal("12.346") -> 1235 cents (rounds up)
func ParseDecimal(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
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
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, ErrInvalidAmount
	}
	// Take the first two fractional digits, half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}

// String renders the amount as a plain decimal with no trailing zeros,
// e.g. 120000 cents -> "1200", 1230 cents -> "12.3".
func (m Money) String() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	var s string
	switch {
	case rem == 0:
		s = strconv.FormatInt(whole, 10)
	case rem%10 == 0:
		s = strconv.FormatInt(whole, 10) + "." + strconv.FormatInt(rem/10, 10)
	default:
		s = strconv.FormatInt(whole, 10) + "." + pad2(rem)
	}
	if neg {
		return "-" + s
	}
	return s
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

// MarshalJSON emits the amount as a JSON number in decimal form.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a non-negative JSON number.
func (m *Money) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDecimal(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns the difference of two amounts.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}
