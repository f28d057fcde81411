// Package terminal assembles the checkout screen: the page model, its components and the
// dispatch of operator events to them.
package terminal

import (
	"bytes"
	"context"
	"fmt"

	"github.com/angelmondragon/trio-pos/internal/admin"
	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/barcode"
	"github.com/angelmondragon/trio-pos/internal/cart"
	"github.com/angelmondragon/trio-pos/internal/i18n"
	"github.com/angelmondragon/trio-pos/internal/localstore"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/products"
	"github.com/angelmondragon/trio-pos/internal/ui"
	"github.com/angelmondragon/trio-pos/pkg/clock"
	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
	"github.com/angelmondragon/trio-pos/pkg/types"
	"github.com/shopspring/decimal"
)

// Backend is everything the terminal needs from the POS backend.
type Backend interface {
	cart.Backend
	products.Backend
	admin.Backend
	InvoicePDF(ctx context.Context, orderID int64) ([]byte, error)
}

type Deps struct {
	Config  config.TerminalConfig
	Backend Backend
	Store   localstore.Store
	Page    *page.Page
	// ImagePath prefixes product image file names.
	ImagePath string
	Clock     clock.Clock
	Metrics   *metrics.TerminalMetrics
	Logger    *logger.Logger
}

type Terminal struct {
	Page       *page.Page
	Board      *ui.Board
	Prompts    *ui.Prompts
	Location   *ui.Location
	Translator *i18n.Translator
	Cart       cart.Service
	Products   products.Service
	Admin      admin.Service
	Capture    *barcode.Capture
	Lookup     *barcode.Lookup

	backend Backend
	metrics *metrics.TerminalMetrics
	logg    *logger.Logger
}

func New(deps Deps) (*Terminal, error) {
	if deps.Backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	if deps.Page == nil {
		deps.Page = page.New()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	cfg := deps.Config

	t := &Terminal{
		Page:     deps.Page,
		Location: &ui.Location{},
		backend:  deps.Backend,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
	}
	t.Board = ui.NewBoard(t.Page, deps.Clock, ui.DefaultNotificationTTL, deps.Logger)
	t.Prompts = ui.NewPrompts(t.Location, deps.Clock.Now)
	t.Translator = i18n.New(deps.Store, t.Page, cfg.DefaultLanguage, deps.Logger)

	currency := types.Currency{Symbol: cfg.CurrencySymbol}
	var err error
	t.Cart, err = cart.NewService(cart.Config{
		Backend:      deps.Backend,
		Page:         t.Page,
		Notifier:     t.Board,
		Confirmer:    ui.ContextConfirmer{},
		Prompter:     t.Prompts,
		Translations: t.Translator,
		Currency:     currency,
		TaxRate:      decimal.NewFromFloat(cfg.TaxRate),
		Clock:        deps.Clock,
		PromptDelay:  cfg.OrderPromptDelay,
		Metrics:      deps.Metrics,
		Logger:       deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	t.Products, err = products.NewService(products.Config{
		Backend:     deps.Backend,
		Page:        t.Page,
		Cart:        t.Cart,
		Currency:    currency,
		ImagePath:   deps.ImagePath,
		CheckImages: cfg.CheckImages,
		Metrics:     deps.Metrics,
		Logger:      deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	t.Admin, err = admin.NewService(admin.Config{
		Backend:       deps.Backend,
		Page:          t.Page,
		Notifier:      t.Board,
		Confirmer:     ui.ContextConfirmer{},
		Reloader:      t,
		MaxImageBytes: cfg.MaxImageBytes,
		ImagePath:     deps.ImagePath,
		Metrics:       deps.Metrics,
		Logger:        deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	t.Lookup, err = barcode.NewLookup(barcode.LookupConfig{
		Finder:   deps.Backend,
		Cart:     t.Cart,
		Notifier: t.Board,
		Page:     t.Page,
		Metrics:  deps.Metrics,
		Logger:   deps.Logger,
	})
	if err != nil {
		return nil, err
	}

	t.Capture = barcode.NewCapture(barcode.CaptureConfig{
		Clock:       deps.Clock,
		IdleTimeout: cfg.BarcodeIdleTimeout,
		MinLength:   cfg.BarcodeMinLength,
		OnScan: func(ctx context.Context, code string) {
			_ = t.Lookup.Find(ctx, code)
		},
		OnSearch: func(ctx context.Context) {
			_ = t.Products.Search(ctx, t.Page.Value(page.IDProductSearch))
		},
	})

	return t, nil
}

// Start prepares the page: language, category bar, cart and the initial product list.
// Only a failing cart load is reported; the other steps log and carry on.
func (t *Terminal) Start(ctx context.Context) error {
	t.Translator.Init(ctx)
	_ = t.Products.LoadCategories(ctx)
	_ = t.Products.Search(ctx, t.Page.Value(page.IDProductSearch))
	if err := t.Cart.Load(ctx); err != nil {
		return err
	}
	t.logg.Info(t.logg.WithField(ctx, "language", t.Translator.Language()), "terminal ready")
	return nil
}

// Reload replaces the page with a document returned by the backend and re-initialises it.
func (t *Terminal) Reload(ctx context.Context, document []byte) error {
	if err := t.Page.Load(bytes.NewReader(document)); err != nil {
		return err
	}
	t.Translator.ApplyTranslations()
	if t.Page.Has(page.IDCartItems) {
		return t.Cart.Load(ctx)
	}
	return nil
}

// Invoice downloads the PDF invoice of an order.
func (t *Terminal) Invoice(ctx context.Context, orderID int64) ([]byte, error) {
	return t.backend.InvoicePDF(ctx, orderID)
}

// Close stops pending timers.
func (t *Terminal) Close() {
	t.Capture.Stop()
}

var _ Backend = (*backend.Client)(nil)
