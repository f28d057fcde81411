package types

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		symbol string
		amount decimal.Decimal
		want   string
	}{
		{symbol: "", amount: decimal.RequireFromString("12.5"), want: "₹12.50"},
		{symbol: "$", amount: decimal.Zero, want: "$0.00"},
		{symbol: "$", amount: decimal.RequireFromString("-3.456"), want: "-$3.46"},
	}
	for _, tt := range tests {
		if got := (Currency{Symbol: tt.symbol}).Format(tt.amount); got != tt.want {
			t.Fatalf("Format(%s) = %q want %q", tt.amount, got, tt.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"":       "0",
		"  ":     "0",
		"abc":    "0",
		"-5":     "0",
		"10":     "10",
		" 2.75 ": "2.75",
	}
	for raw, want := range tests {
		if got := ParseAmount(raw); !got.Equal(decimal.RequireFromString(want)) {
			t.Fatalf("ParseAmount(%q) = %s want %s", raw, got, want)
		}
	}
}
