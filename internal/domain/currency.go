package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
	CurrencyNZD Currency = "NZD"
	CurrencySEK Currency = "SEK"
	CurrencyNOK Currency = "NOK"
	CurrencyDKK Currency = "DKK"
	CurrencyPLN Currency = "PLN"
	CurrencyCZK Currency = "CZK"
	CurrencyHUF Currency = "HUF"
	CurrencyBRL Currency = "BRL"
	CurrencyMXN Currency = "MXN"
	CurrencySGD Currency = "SGD"
	CurrencyHKD Currency = "HKD"
	CurrencyINR Currency = "INR"
	CurrencyKRW Currency = "KRW"
)

// currencyExponents maps each supported code to its minor unit exponent.
// JPY and KRW have no minor unit.
var currencyExponents = map[Currency]int32{
	CurrencyUSD: 2,
	CurrencyEUR: 2,
	CurrencyGBP: 2,
	CurrencyJPY: 0,
	CurrencyCHF: 2,
	CurrencyCAD: 2,
	CurrencyAUD: 2,
	CurrencyNZD: 2,
	CurrencySEK: 2,
	CurrencyNOK: 2,
	CurrencyDKK: 2,
	CurrencyPLN: 2,
	CurrencyCZK: 2,
	CurrencyHUF: 2,
	CurrencyBRL: 2,
	CurrencyMXN: 2,
	CurrencySGD: 2,
	CurrencyHKD: 2,
	CurrencyINR: 2,
	CurrencyKRW: 0,
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// IsValid checks if the currency is a supported ISO 4217 code.
func (c Currency) IsValid() bool {
	_, ok := currencyExponents[c]
	return ok
}

// Exponent returns the number of decimal places of the minor unit.
func (c Currency) Exponent() int32 {
	return currencyExponents[c]
}

func (c Currency) String() string {
	return string(c)
}
