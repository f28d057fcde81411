package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol is used when no symbol is configured.
const DefaultCurrencySymbol = "₹"

// Currency formats amounts for display on the terminal.
type Currency struct {
	Symbol string
}

// Format renders the amount with two decimals, e.g. ₹12.50.
func (c Currency) Format(amount decimal.Decimal) string {
	symbol := c.Symbol
	if symbol == "" {
		symbol = DefaultCurrencySymbol
	}
	if amount.IsNegative() {
		return "-" + symbol + amount.Neg().StringFixed(2)
	}
	return symbol + amount.StringFixed(2)
}

// ParseAmount reads a user-entered amount. Blank, unparsable or negative input yields zero.
func ParseAmount(raw string) decimal.Decimal {
	clean := strings.TrimSpace(raw)
	if clean == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(clean)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value
}
