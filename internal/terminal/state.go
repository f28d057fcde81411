package terminal

import (
	"context"
	"io"

	"github.com/angelmondragon/trio-pos/internal/admin"
	"github.com/angelmondragon/trio-pos/internal/cart"
	"github.com/angelmondragon/trio-pos/internal/ui"
)

type CartLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

type Totals struct {
	Subtotal string `json:"subtotal"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
	TaxRate  string `json:"tax_rate"`
}

// State is the read model served to the display shell.
type State struct {
	Language      string            `json:"language"`
	Category      string            `json:"category"`
	Cart          []CartLine        `json:"cart"`
	Totals        Totals            `json:"totals"`
	Modal         admin.State       `json:"modal"`
	Location      string            `json:"location,omitempty"`
	Prompt        *ui.Prompt        `json:"prompt,omitempty"`
	Notifications []ui.Notification `json:"notifications"`
}

func (t *Terminal) State(ctx context.Context) State {
	lines := cart.Lines(t.Cart.Snapshot())
	out := make([]CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, CartLine{ProductID: l.ProductID, Name: l.Name, Price: l.Price.StringFixed(2), Quantity: l.Quantity})
	}
	totals := t.Cart.Recalculate(ctx)

	st := State{
		Language: t.Translator.Language(),
		Category: t.Products.Category(),
		Cart:     out,
		Totals: Totals{
			Subtotal: totals.Subtotal.StringFixed(2),
			Discount: totals.Discount.StringFixed(2),
			Total:    totals.Total.StringFixed(2),
			TaxRate:  totals.TaxRate.String(),
		},
		Modal:         t.Admin.State(),
		Location:      t.Location.Current(),
		Notifications: t.Board.Active(),
	}
	if prompt, ok := t.Prompts.Pending(); ok {
		st.Prompt = &prompt
	}
	return st
}

// Notifications returns the notifications still on screen.
func (t *Terminal) Notifications() []ui.Notification {
	return t.Board.Active()
}

// ToggleLanguage switches the display language and returns the new one.
func (t *Terminal) ToggleLanguage(ctx context.Context) (string, error) {
	return t.Translator.ToggleLanguage(ctx)
}

// Render writes the current document.
func (t *Terminal) Render(w io.Writer) error {
	return t.Page.Render(w)
}
