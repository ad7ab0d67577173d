package domain

import (
	"fmt"
	"strings"
)

// Currency is an ISO 4217 code accepted by the back office
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyXAF Currency = "XAF"
)

// DefaultCurrency applies when neither request nor contract names one
const DefaultCurrency = CurrencyXAF

// Valid reports whether c is supported
func (c Currency) Valid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyXAF:
		return true
	}
	return false
}

// Code returns the ISO code
func (c Currency) Code() string {
	return string(c)
}

// Symbol returns the display prefix. XAF carries a trailing space.
func (c Currency) Symbol() string {
	switch c {
	case CurrencyUSD:
		return "$"
	case CurrencyEUR:
		return "€"
	case CurrencyXAF:
		return "FCFA "
	}
	return string(c) + " "
}

// ZeroDecimal reports whether the currency has no minor unit
func (c Currency) ZeroDecimal() bool {
	return c == CurrencyXAF
}

// ParseCurrency accepts any casing and returns fallback for an empty value
func ParseCurrency(s string, fallback Currency) (Currency, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	c := Currency(strings.ToUpper(s))
	if !c.Valid() {
		return "", fmt.Errorf("%w: currency %q", ErrInvalidValue, s)
	}
	return c, nil
}
