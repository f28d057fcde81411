package terminal

import (
	"context"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/trio-pos/internal/admin"
	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/barcode"
	"github.com/angelmondragon/trio-pos/internal/cart"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/products"
	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
)

// Click actions carried in data-action.
const (
	ActionLanguageToggle = "language-toggle"
	ActionCategory       = "category"
	ActionSearch         = "search-submit"
	ActionCartClear      = "cart-clear"
	ActionOrderProcess   = "order-process"
	ActionModalOpen      = "modal-open"
	ActionModalClose     = "modal-close"
	ActionModalSubmit    = "modal-submit"
	ActionProductEdit    = "product-edit"
	ActionProductDelete  = "product-delete"
)

// ClickEvent is a click on an element of the page. Action and the data attributes are copied
// from the clicked element; TargetID is its id.
type ClickEvent struct {
	Action    string           `json:"action"`
	TargetID  string           `json:"target_id"`
	ProductID int64            `json:"product_id"`
	Category  string           `json:"category"`
	Quantity  *int             `json:"quantity"`
	Product   *backend.Product `json:"product"`
}

// InputEvent reports the new value of a form control.
type InputEvent struct {
	ID    string `json:"id" validate:"required"`
	Value string `json:"value"`
}

// KeyResult tells the display shell what a key did.
type KeyResult struct {
	Outcome        barcode.Outcome `json:"outcome"`
	PreventDefault bool            `json:"prevent_default"`
}

// HandleKey feeds a keydown from the search box. Keys that are not swallowed by a scan are
// typed into the search input, as the browser would.
func (t *Terminal) HandleKey(ctx context.Context, ev barcode.KeyEvent) KeyResult {
	outcome := t.Capture.HandleKey(ctx, ev)
	switch {
	case outcome == barcode.OutcomeBuffered:
		t.appendSearch(ctx, ev.Key)
	case outcome == barcode.OutcomeIgnored && ev.Key == "Backspace":
		value := t.Page.Value(page.IDProductSearch)
		if _, size := utf8.DecodeLastRuneInString(value); size > 0 {
			t.setSearch(ctx, value[:len(value)-size])
		}
	}
	return KeyResult{Outcome: outcome, PreventDefault: outcome.PreventDefault()}
}

// HandlePaste feeds pasted text. Text that is not a scan lands in the search input.
func (t *Terminal) HandlePaste(ctx context.Context, text string) KeyResult {
	outcome := t.Capture.HandlePaste(ctx, text)
	if outcome != barcode.OutcomeScan {
		t.appendSearch(ctx, text)
	}
	return KeyResult{Outcome: outcome, PreventDefault: outcome.PreventDefault()}
}

// HandleInput stores a control value and runs the control's change handler.
func (t *Terminal) HandleInput(ctx context.Context, ev InputEvent) error {
	if ev.ID == page.IDProductImage {
		return pkgerrors.New(pkgerrors.CodeValidation, "image files are selected through the image upload")
	}
	if err := t.Page.SetValue(ev.ID, ev.Value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "unknown input")
	}
	if ev.ID == page.IDDiscountInput {
		t.Cart.Recalculate(ctx)
	}
	return nil
}

// HandleClick dispatches a click to the owning component.
func (t *Terminal) HandleClick(ctx context.Context, ev ClickEvent) error {
	switch ev.Action {
	case ActionLanguageToggle:
		// The screen switches even when the preference is not saved; the translator logs that.
		_, _ = t.Translator.ToggleLanguage(ctx)
		return nil
	case ActionCategory:
		return t.Products.FilterByCategory(ctx, ev.Category)
	case ActionSearch:
		return t.Products.Search(ctx, t.Page.Value(page.IDProductSearch))
	case products.ActionAdd:
		return t.Products.AddToCart(ctx, ev.ProductID)
	case cart.ActionUpdate, cart.ActionQuantity:
		if ev.Quantity == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity is required")
		}
		return t.Cart.Update(ctx, ev.ProductID, *ev.Quantity)
	case cart.ActionRemove:
		return t.Cart.Remove(ctx, ev.ProductID)
	case ActionCartClear:
		return t.Cart.Clear(ctx)
	case ActionOrderProcess:
		_, err := t.Cart.ProcessOrder(ctx)
		return err
	case ActionModalOpen:
		t.Admin.OpenForCreate(ctx)
		return nil
	case ActionProductEdit:
		if ev.Product == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "product is required")
		}
		t.Admin.OpenForEdit(ctx, *ev.Product)
		return nil
	case ActionProductDelete:
		return t.Admin.Delete(ctx, ev.ProductID)
	case ActionModalClose:
		t.Admin.Close(ctx)
		return nil
	case ActionModalSubmit:
		return t.Admin.Submit(ctx)
	case "":
		t.Admin.ClickOutside(ctx, ev.TargetID)
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown action "+strconv.Quote(ev.Action))
}

// ImageFailed handles a product image that did not load.
func (t *Terminal) ImageFailed(ctx context.Context, productID int64) {
	t.Products.ImageFailed(ctx, productID)
}

// SelectImage handles a file picked in the product dialog.
func (t *Terminal) SelectImage(ctx context.Context, file *admin.ImageFile) error {
	return t.Admin.SelectImage(ctx, file)
}

// AnswerPrompt resolves the pending navigation prompt.
func (t *Terminal) AnswerPrompt(ctx context.Context, accept bool) (string, error) {
	_, open, err := t.Prompts.Answer(ctx, accept)
	if err != nil {
		return "", err
	}
	if !open {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no pending prompt")
	}
	return t.Location.Current(), nil
}

func (t *Terminal) appendSearch(ctx context.Context, text string) {
	t.setSearch(ctx, t.Page.Value(page.IDProductSearch)+text)
}

func (t *Terminal) setSearch(ctx context.Context, value string) {
	if err := t.Page.SetValue(page.IDProductSearch, strings.TrimRight(value, "\r\n")); err != nil {
		t.logg.Warn(t.logg.WithField(ctx, "error", err.Error()), "search input missing")
	}
}
