package reservation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidMoneyAmount = errors.New("invalid money amount")

// Money is an amount in minor currency units (cents). Integer arithmetic keeps rounding exact.
type Money int64

// MoneyFromMinor wraps an amount given in minor units.
func MoneyFromMinor(minor int64) Money {
	return Money(minor)
}

// ParseMoney parses a decimal amount like "250", "250.5" or "250.50" into Money.
// More than two fractional digits are rejected instead of being rounded silently.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.Join(ErrInvalidMoneyAmount, errors.New("empty amount"))
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, errors.Join(ErrInvalidMoneyAmount, fmt.Errorf("%q has more than two decimals", s))
	}

	if strings.ContainsAny(whole+frac, "+-") {
		return 0, errors.Join(ErrInvalidMoneyAmount, fmt.Errorf("%q is not a plain decimal", s))
	}

	frac += strings.Repeat("0", 2-len(frac))

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidMoneyAmount, err)
	}

	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrInvalidMoneyAmount, err)
	}

	amount := units*100 + cents
	if negative {
		amount = -amount
	}

	return Money(amount), nil
}

// Minor returns the amount in minor units.
func (m Money) Minor() int64 {
	return int64(m)
}

// Times multiplies the amount by a whole number of units.
func (m Money) Times(n int) Money {
	return m * Money(n)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// String renders the amount with two decimals, e.g. "750.00".
func (m Money) String() string {
	sign := ""
	minor := int64(m)

	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
