package barcode

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/ui"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
)

const (
	MsgNotFound    = "Product not found"
	MsgOutOfStock  = "Product out of stock"
	MsgLookupError = "Error searching product"
)

type ProductFinder interface {
	ListProducts(ctx context.Context, q backend.ProductQuery) ([]backend.Product, error)
}

type CartAdder interface {
	Add(ctx context.Context, productID int64) error
}

type LookupConfig struct {
	Finder   ProductFinder
	Cart     CartAdder
	Notifier ui.Notifier
	Page     *page.Page
	Metrics  *metrics.TerminalMetrics
	Logger   *logger.Logger
}

// Lookup resolves scanned codes to products and adds in-stock matches to the cart.
type Lookup struct {
	cfg LookupConfig
}

func NewLookup(cfg LookupConfig) (*Lookup, error) {
	if cfg.Finder == nil {
		return nil, fmt.Errorf("product finder required")
	}
	if cfg.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &Lookup{cfg: cfg}, nil
}

// Find looks code up. The search box is emptied afterwards whatever the outcome.
func (l *Lookup) Find(ctx context.Context, code string) error {
	ctx = l.cfg.Logger.WithFields(ctx, map[string]any{"operation": "barcode.lookup", "barcode": code})
	defer l.clearSearch(ctx)

	start := time.Now()
	products, err := l.cfg.Finder.ListProducts(ctx, backend.ProductQuery{Barcode: code})
	l.cfg.Metrics.Observe("barcode.lookup", start, err)
	if err != nil {
		l.cfg.Metrics.IncScan("error")
		l.cfg.Logger.Error(ctx, "error searching by barcode", err)
		l.cfg.Notifier.Notify(ctx, ui.SeverityError, MsgLookupError)
		return err
	}

	if len(products) == 0 {
		l.cfg.Metrics.IncScan("not_found")
		l.cfg.Notifier.Notify(ctx, ui.SeverityError, MsgNotFound)
		return nil
	}

	// Codes should be unique; several matches keep the backend's first one.
	product := products[0]
	if len(products) > 1 {
		l.cfg.Logger.Warn(l.cfg.Logger.WithFields(ctx, map[string]any{
			"matches":    len(products),
			"product_id": product.ID,
		}), "barcode matches several products")
	}
	if product.Stock <= 0 {
		l.cfg.Metrics.IncScan("out_of_stock")
		l.cfg.Notifier.Notify(ctx, ui.SeverityError, MsgOutOfStock)
		return nil
	}

	l.cfg.Metrics.IncScan("found")
	addErr := l.cfg.Cart.Add(ctx, product.ID)
	l.cfg.Notifier.Notify(ctx, ui.SeveritySuccess, "Product found: "+product.Name)
	return addErr
}

func (l *Lookup) clearSearch(ctx context.Context) {
	if l.cfg.Page == nil {
		return
	}
	if err := l.cfg.Page.SetValue(page.IDProductSearch, ""); err != nil {
		l.cfg.Logger.Warn(l.cfg.Logger.WithField(ctx, "error", err.Error()), "search input missing")
	}
}
