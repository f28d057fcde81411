package cart

import (
	"sort"
	"sync"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/shopspring/decimal"
)

// Store is the local mirror of the server session cart. It is only ever replaced wholesale by
// an authoritative snapshot.
type Store struct {
	mu    sync.RWMutex
	items backend.Cart
}

func NewStore() *Store {
	return &Store{items: backend.Cart{}}
}

// Replace swaps the mirror for snapshot.
func (s *Store) Replace(snapshot backend.Cart) {
	next := make(backend.Cart, len(snapshot))
	for id, item := range snapshot {
		next[id] = item
	}
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Snapshot returns a copy of the mirror.
func (s *Store) Snapshot() backend.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(backend.Cart, len(s.items))
	for id, item := range s.items {
		out[id] = item
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Lines returns the cart lines ordered by product id.
func Lines(cart backend.Cart) []backend.CartItem {
	lines := make([]backend.CartItem, 0, len(cart))
	for _, item := range cart {
		lines = append(lines, item)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// Totals is the cart summary shown under the cart.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
	// TaxRate is displayed configuration only. It never enters Total.
	TaxRate decimal.Decimal
}

// ComputeTotals sums the cart and applies discount clamped to [0, subtotal].
func ComputeTotals(cart backend.Cart, discount, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range cart {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	applied := decimal.Min(discount, subtotal)
	return Totals{
		Subtotal: subtotal,
		Discount: applied,
		Total:    subtotal.Sub(applied),
		TaxRate:  taxRate,
	}
}
