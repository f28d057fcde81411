// Package cart mirrors the backend session cart on the terminal and renders it into the
// billing page.
package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/ui"
	"github.com/angelmondragon/trio-pos/pkg/clock"
	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
	"github.com/angelmondragon/trio-pos/pkg/types"
	"github.com/shopspring/decimal"
)

const (
	MsgItemAdded      = "Item added to cart"
	MsgCartCleared    = "Cart cleared"
	MsgCartEmpty      = "Cart is empty"
	MsgOrderProcessed = "Order processed successfully!"
	MsgConfirmClear   = "Are you sure you want to clear the cart?"
	MsgViewInvoice    = "Order processed! Would you like to view the invoice?"

	msgAddFailed    = "Error adding item to cart"
	msgUpdateFailed = "Error updating cart"
	msgRemoveFailed = "Error removing item from cart"
	msgClearFailed  = "Error clearing cart"
	msgOrderFailed  = "Error processing order"
)

// Backend is the slice of the POS backend the cart talks to.
type Backend interface {
	GetCart(ctx context.Context) (backend.Cart, error)
	AddToCart(ctx context.Context, productID int64, quantity int) (backend.Cart, error)
	UpdateCartItem(ctx context.Context, productID int64, quantity int) (backend.Cart, error)
	RemoveFromCart(ctx context.Context, productID int64) (backend.Cart, error)
	ClearCart(ctx context.Context) (backend.Cart, error)
	ProcessOrder(ctx context.Context, req backend.OrderRequest) (*backend.OrderResult, error)
}

// Translations re-applies the page language after a render.
type Translations interface {
	ApplyTranslations()
}

// Service is the terminal's cart.
type Service interface {
	Load(ctx context.Context) error
	Add(ctx context.Context, productID int64) error
	Update(ctx context.Context, productID int64, quantity int) error
	Remove(ctx context.Context, productID int64) error
	Clear(ctx context.Context) error
	ProcessOrder(ctx context.Context) (*backend.OrderResult, error)
	Recalculate(ctx context.Context) Totals
	Snapshot() backend.Cart
}

// Config wires the cart to its collaborators. Backend, Page and Notifier are required.
type Config struct {
	Backend      Backend
	Page         *page.Page
	Notifier     ui.Notifier
	Confirmer    ui.Confirmer
	Prompter     ui.Prompter
	Translations Translations
	Currency     types.Currency
	TaxRate      decimal.Decimal
	Clock        clock.Clock
	PromptDelay  time.Duration
	Metrics      *metrics.TerminalMetrics
	Logger       *logger.Logger
}

type service struct {
	cfg   Config
	store *Store
}

// NewService builds the cart around an empty mirror.
func NewService(cfg Config) (Service, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("cart backend required")
	}
	if cfg.Page == nil {
		return nil, fmt.Errorf("page required")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if cfg.Confirmer == nil {
		cfg.Confirmer = ui.ContextConfirmer{}
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &service{cfg: cfg, store: NewStore()}, nil
}

func (s *service) Snapshot() backend.Cart {
	return s.store.Snapshot()
}

// Load fetches the session cart. Failures are only logged; the mirror stays as it was.
func (s *service) Load(ctx context.Context) error {
	ctx = s.cfg.Logger.WithOperation(ctx, "cart.load")
	start := time.Now()
	snapshot, err := s.cfg.Backend.GetCart(ctx)
	s.cfg.Metrics.Observe("cart.load", start, err)
	if err != nil {
		s.cfg.Logger.Error(ctx, "error loading cart", err)
		return err
	}
	s.apply(ctx, snapshot)
	return nil
}

func (s *service) Add(ctx context.Context, productID int64) error {
	ctx = s.cfg.Logger.WithProductID(s.cfg.Logger.WithOperation(ctx, "cart.add"), productID)
	start := time.Now()
	snapshot, err := s.cfg.Backend.AddToCart(ctx, productID, 1)
	s.cfg.Metrics.Observe("cart.add", start, err)
	if err != nil {
		return s.fail(ctx, err, msgAddFailed)
	}
	s.apply(ctx, snapshot)
	s.cfg.Notifier.Notify(ctx, ui.SeveritySuccess, MsgItemAdded)
	return nil
}

// Update sets a line quantity. Zero or negative quantities remove the line.
func (s *service) Update(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}
	ctx = s.cfg.Logger.WithProductID(s.cfg.Logger.WithOperation(ctx, "cart.update"), productID)
	start := time.Now()
	snapshot, err := s.cfg.Backend.UpdateCartItem(ctx, productID, quantity)
	s.cfg.Metrics.Observe("cart.update", start, err)
	if err != nil {
		return s.fail(ctx, err, msgUpdateFailed)
	}
	s.apply(ctx, snapshot)
	return nil
}

func (s *service) Remove(ctx context.Context, productID int64) error {
	ctx = s.cfg.Logger.WithProductID(s.cfg.Logger.WithOperation(ctx, "cart.remove"), productID)
	start := time.Now()
	snapshot, err := s.cfg.Backend.RemoveFromCart(ctx, productID)
	s.cfg.Metrics.Observe("cart.remove", start, err)
	if err != nil {
		return s.fail(ctx, err, msgRemoveFailed)
	}
	s.apply(ctx, snapshot)
	return nil
}

// Clear empties the cart after confirmation. An empty mirror or a declined prompt is a no-op.
func (s *service) Clear(ctx context.Context) error {
	if s.store.Len() == 0 {
		return nil
	}
	if !s.cfg.Confirmer.Confirm(ctx, MsgConfirmClear) {
		return nil
	}
	ctx = s.cfg.Logger.WithOperation(ctx, "cart.clear")
	start := time.Now()
	snapshot, err := s.cfg.Backend.ClearCart(ctx)
	s.cfg.Metrics.Observe("cart.clear", start, err)
	if err != nil {
		return s.fail(ctx, err, msgClearFailed)
	}
	s.apply(ctx, snapshot)
	s.cfg.Notifier.Notify(ctx, ui.SeveritySuccess, MsgCartCleared)
	return nil
}

// ProcessOrder checks out the cart with the discount and customer details on the page.
func (s *service) ProcessOrder(ctx context.Context) (*backend.OrderResult, error) {
	if s.store.Len() == 0 {
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, MsgCartEmpty)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, MsgCartEmpty)
	}

	req := backend.OrderRequest{
		Discount:      types.ParseAmount(s.cfg.Page.Value(page.IDDiscountInput)),
		CustomerName:  s.cfg.Page.Value(page.IDCustomerName),
		CustomerPhone: s.cfg.Page.Value(page.IDCustomerPhone),
	}

	ctx = s.cfg.Logger.WithOperation(ctx, "order.process")
	start := time.Now()
	result, err := s.cfg.Backend.ProcessOrder(ctx, req)
	s.cfg.Metrics.Observe("order.process", start, err)
	if err != nil {
		return nil, s.fail(ctx, err, msgOrderFailed)
	}

	s.cfg.Logger.Info(s.cfg.Logger.WithFields(ctx, map[string]any{
		"order_id":       result.OrderID,
		"invoice_number": result.InvoiceNumber,
	}), "order processed")
	s.cfg.Notifier.Notify(ctx, ui.SeveritySuccess, MsgOrderProcessed)

	if err := s.cfg.Page.SetValue(page.IDDiscountInput, "0"); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "discount input missing")
	}
	s.apply(ctx, backend.Cart{})

	if s.cfg.Prompter != nil {
		target := "/orders/" + strconv.FormatInt(result.OrderID, 10)
		detached := context.WithoutCancel(ctx)
		s.cfg.Clock.AfterFunc(s.cfg.PromptDelay, func() {
			s.cfg.Prompter.Offer(detached, MsgViewInvoice, target)
		})
	}
	return result, nil
}

// Recalculate re-renders the totals from the mirror and the current discount input.
func (s *service) Recalculate(ctx context.Context) Totals {
	totals := ComputeTotals(s.store.Snapshot(), types.ParseAmount(s.cfg.Page.Value(page.IDDiscountInput)), s.cfg.TaxRate)
	s.renderTotals(ctx, totals)
	return totals
}

func (s *service) apply(ctx context.Context, snapshot backend.Cart) {
	s.store.Replace(snapshot)
	s.render(ctx)
	s.Recalculate(ctx)
}

// fail maps an operation error to the operator message. Backend rejections are shown verbatim.
func (s *service) fail(ctx context.Context, err error, generic string) error {
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeRejected {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "reason", typed.Message()), "backend rejected cart operation")
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, typed.Message())
		return err
	}
	s.cfg.Logger.Error(ctx, generic, err)
	s.cfg.Notifier.Notify(ctx, ui.SeverityError, generic)
	return err
}
