package cart

import (
	"context"
	"strconv"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html"
)

const (
	ActionUpdate   = "cart-update"
	ActionQuantity = "cart-quantity"
	ActionRemove   = "cart-remove"
)

func (s *service) render(ctx context.Context) {
	lines := Lines(s.store.Snapshot())
	var nodes []*html.Node
	if len(lines) == 0 {
		nodes = []*html.Node{emptyCart()}
	} else {
		nodes = make([]*html.Node, 0, len(lines))
		for _, line := range lines {
			nodes = append(nodes, s.cartLine(line))
		}
	}
	if err := s.cfg.Page.Replace(page.IDCartItems, nodes...); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "cart items area missing")
		return
	}
	if s.cfg.Translations != nil {
		s.cfg.Translations.ApplyTranslations()
	}
}

func (s *service) renderTotals(ctx context.Context, totals Totals) {
	if err := s.cfg.Page.SetText(page.IDSubtotal, s.cfg.Currency.Format(totals.Subtotal)); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "subtotal missing")
	}
	if err := s.cfg.Page.SetText(page.IDTotalAmount, s.cfg.Currency.Format(totals.Total)); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "total missing")
	}
}

func emptyCart() *html.Node {
	return page.El("p", page.Attrs{"class": page.ClassEmptyCart, page.AttrI18n: "cart_empty"}, page.Txt("Cart is empty"))
}

func (s *service) cartLine(item backend.CartItem) *html.Node {
	id := strconv.FormatInt(item.ProductID, 10)
	lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))

	return page.El("div", page.Attrs{"class": "cart-item", page.AttrProductID: id},
		page.El("div", page.Attrs{"class": "cart-item-info"},
			page.El("h4", nil, page.Txt(item.Name)),
			page.El("p", page.Attrs{"class": "item-price"}, page.Txt(s.cfg.Currency.Format(item.Price)+" each")),
		),
		page.El("div", page.Attrs{"class": "cart-item-controls"},
			page.El("div", page.Attrs{"class": "quantity-control"},
				quantityButton(id, item.Quantity-1, "-"),
				page.El("input", page.Attrs{
					"type":             "number",
					"min":              "1",
					"value":            strconv.Itoa(item.Quantity),
					page.AttrAction:    ActionQuantity,
					page.AttrProductID: id,
				}),
				quantityButton(id, item.Quantity+1, "+"),
			),
			page.El("span", page.Attrs{"class": "cart-item-total"}, page.Txt(s.cfg.Currency.Format(lineTotal))),
			page.El("button", page.Attrs{
				"class":            "cart-item-remove",
				"type":             "button",
				"title":            "Remove",
				page.AttrAction:    ActionRemove,
				page.AttrProductID: id,
			}, page.Txt("×")),
		),
	)
}

func quantityButton(id string, quantity int, label string) *html.Node {
	return page.El("button", page.Attrs{
		"type":             "button",
		page.AttrAction:    ActionUpdate,
		page.AttrProductID: id,
		page.AttrQuantity:  strconv.Itoa(quantity),
	}, page.Txt(label))
}
