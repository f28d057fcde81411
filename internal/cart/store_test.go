package cart

import (
	"testing"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/shopspring/decimal"
)

func TestComputeTotalsNeverDiscountsBelowZero(t *testing.T) {
	cart := backend.Cart{
		1: {ProductID: 1, Price: decimal.RequireFromString("10.00"), Quantity: 2},
		2: {ProductID: 2, Price: decimal.RequireFromString("2.50"), Quantity: 1},
	}
	subtotal := decimal.RequireFromString("22.50")

	for _, raw := range []string{"0", "5", "22.50", "23", "1000"} {
		discount := decimal.RequireFromString(raw)
		got := ComputeTotals(cart, discount, decimal.Zero)
		want := subtotal.Sub(decimal.Min(discount, subtotal))
		if !got.Total.Equal(want) {
			t.Fatalf("discount %s: expected total %s, got %s", raw, want, got.Total)
		}
		if got.Total.IsNegative() {
			t.Fatalf("discount %s produced negative total", raw)
		}
		if !got.Subtotal.Equal(subtotal) {
			t.Fatalf("unexpected subtotal %s", got.Subtotal)
		}
	}
}

func TestComputeTotalsIgnoresTaxRate(t *testing.T) {
	cart := backend.Cart{1: {ProductID: 1, Price: decimal.NewFromInt(100), Quantity: 1}}
	got := ComputeTotals(cart, decimal.Zero, decimal.NewFromInt(5))
	if !got.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("tax must not be applied, got %s", got.Total)
	}
}

func TestLinesAreOrderedByProductID(t *testing.T) {
	lines := Lines(backend.Cart{9: {ProductID: 9}, 2: {ProductID: 2}, 5: {ProductID: 5}})
	if lines[0].ProductID != 2 || lines[1].ProductID != 5 || lines[2].ProductID != 9 {
		t.Fatalf("unexpected order %+v", lines)
	}
}

func TestStoreReplaceCopies(t *testing.T) {
	s := NewStore()
	snapshot := backend.Cart{1: {ProductID: 1, Quantity: 1}}
	s.Replace(snapshot)
	snapshot[2] = backend.CartItem{ProductID: 2}
	if s.Len() != 1 {
		t.Fatalf("store must not alias the snapshot")
	}
}
