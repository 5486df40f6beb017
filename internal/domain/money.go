package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an immutable amount in a currency, stored as an integer count
// of minor units. Arithmetic never touches floating point. The zero
// value has no currency and is only useful as an error return.
type Money struct {
	cents    int64
	currency Currency
}

// NewFromCents builds a non-negative amount from minor units. Negative
// amounts exist only as the result of Negate.
func NewFromCents(cents int64, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	if cents < 0 {
		return Money{}, fmt.Errorf("%w: %d", ErrNegativeAmount, cents)
	}
	return Money{cents: cents, currency: currency}, nil
}

// NewFromDecimal builds an amount from a decimal in major units. The
// value must land exactly on a minor unit; "10.005" USD is rejected, not
// rounded.
func NewFromDecimal(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidCurrency, currency)
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s", ErrNegativeAmount, amount)
	}
	shifted := amount.Shift(currency.Exponent())
	if !shifted.IsInteger() {
		return Money{}, fmt.Errorf("%w: %s %s", ErrFractionalMinorUnits, amount, currency)
	}
	return Money{cents: shifted.IntPart(), currency: currency}, nil
}

// Zero returns the zero amount in the currency.
func Zero(currency Currency) Money {
	return Money{cents: 0, currency: currency}
}

// Add returns m + other. Both amounts must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	return Money{cents: m.cents + other.cents, currency: m.currency}, nil
}

// Subtract returns m - other, failing with ErrNegativeResult when the
// difference would be negative. Signed arithmetic goes through Negate
// and Add instead.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, other.currency)
	}
	if m.cents < other.cents {
		return Money{}, fmt.Errorf("%w: %d - %d", ErrNegativeResult, m.cents, other.cents)
	}
	return Money{cents: m.cents - other.cents, currency: m.currency}, nil
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{cents: -m.cents, currency: m.currency}
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.cents < 0 {
		return Money{cents: -m.cents, currency: m.currency}
	}
	return m
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.cents == 0
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// Equals reports value equality: same currency, same minor units.
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.cents == other.cents
}

// Cents returns the amount in minor units.
func (m Money) Cents() int64 {
	return m.cents
}

// Currency returns the currency of the amount.
func (m Money) Currency() Currency {
	return m.currency
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -m.currency.Exponent())
}

func (m Money) String() string {
	return m.Decimal().StringFixed(m.currency.Exponent()) + " " + m.currency.String()
}
