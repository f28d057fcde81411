// Package admin implements the product create/edit dialog of the admin screens and the
// product delete action.
package admin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/ui"
	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
	"golang.org/x/net/html"
)

const (
	TitleCreate = "Add Product"
	TitleEdit   = "Edit Product"

	ActionCreate = "/admin/products/add"

	MsgConfirmDelete = "Are you sure you want to delete this product? This action cannot be undone."
	MsgNotAnImage    = "Please choose a PNG, JPEG, WebP or GIF image"

	msgSaveFailed   = "Error saving product"
	msgDeleteFailed = "Error deleting product"
)

type Mode string

const (
	ModeClosed Mode = "closed"
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Backend receives the admin form posts.
type Backend interface {
	SubmitForm(ctx context.Context, action string, fields url.Values, image *backend.FileUpload) ([]byte, error)
	DeleteProduct(ctx context.Context, productID int64) ([]byte, error)
}

// Reloader shows the page the backend answered a form post with.
type Reloader interface {
	Reload(ctx context.Context, document []byte) error
}

// State is a snapshot of the dialog.
type State struct {
	Mode      Mode   `json:"mode"`
	ProductID int64  `json:"product_id,omitempty"`
	Action    string `json:"action"`
	ImageName string `json:"image_name,omitempty"`
}

type Service interface {
	OpenForCreate(ctx context.Context)
	OpenForEdit(ctx context.Context, product backend.Product)
	Close(ctx context.Context)
	ClickOutside(ctx context.Context, targetID string)
	SelectImage(ctx context.Context, file *ImageFile) error
	Submit(ctx context.Context) error
	Delete(ctx context.Context, productID int64) error
	State() State
}

type Config struct {
	Backend       Backend
	Page          *page.Page
	Notifier      ui.Notifier
	Confirmer     ui.Confirmer
	Reloader      Reloader
	MaxImageBytes int64
	ImagePath     string
	Metrics       *metrics.TerminalMetrics
	Logger        *logger.Logger
}

type service struct {
	cfg Config

	mu    sync.Mutex
	state State
	image *backend.FileUpload
}

func NewService(cfg Config) (Service, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("admin backend required")
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
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = DefaultMaxImageBytes
	}
	if cfg.ImagePath == "" {
		cfg.ImagePath = "/static/images/products/"
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &service{cfg: cfg, state: State{Mode: ModeClosed, Action: ActionCreate}}, nil
}

func (s *service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OpenForCreate shows an empty dialog posting to the add action.
func (s *service) OpenForCreate(ctx context.Context) {
	s.mu.Lock()
	s.state = State{Mode: ModeCreate, Action: ActionCreate}
	s.image = nil
	s.mu.Unlock()

	s.setForm(ctx, TitleCreate, ActionCreate, ProductForm{})
	s.replacePreview(ctx)
	s.show(ctx)
}

// OpenForEdit shows the dialog filled with product and its current image.
func (s *service) OpenForEdit(ctx context.Context, product backend.Product) {
	action := "/admin/products/" + strconv.FormatInt(product.ID, 10) + "/edit"
	s.mu.Lock()
	s.state = State{Mode: ModeEdit, ProductID: product.ID, Action: action}
	s.image = nil
	s.mu.Unlock()

	s.setForm(ctx, TitleEdit, action, ProductForm{
		Name:        product.Name,
		Category:    product.Category,
		Price:       product.Price.String(),
		Description: product.Description,
	})
	if product.ImageURL != "" {
		src := strings.TrimRight(s.cfg.ImagePath, "/") + "/" + product.ImageURL
		s.replacePreview(ctx,
			page.El("p", nil, page.El("strong", nil, page.Txt("Current Image:"))),
			page.El("img", page.Attrs{"src": src, "alt": "Current", "class": "image-preview"}),
			page.El("p", page.Attrs{"class": "image-hint"}, page.Txt("Upload new image to replace")),
		)
	} else {
		s.replacePreview(ctx)
	}
	s.show(ctx)
}

func (s *service) Close(ctx context.Context) {
	s.mu.Lock()
	s.state.Mode = ModeClosed
	s.mu.Unlock()
	if err := s.cfg.Page.Hide(page.IDProductModal); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "product modal missing")
	}
}

// ClickOutside closes the dialog when the backdrop itself was clicked.
func (s *service) ClickOutside(ctx context.Context, targetID string) {
	if targetID == page.IDProductModal {
		s.Close(ctx)
	}
}

// SelectImage validates a picked file and previews it. A nil file clears the selection.
func (s *service) SelectImage(ctx context.Context, file *ImageFile) error {
	if file == nil {
		s.clearImage(ctx)
		return nil
	}
	ctx = s.cfg.Logger.WithFields(ctx, map[string]any{"filename": file.Filename, "size": file.size()})

	if file.size() > s.cfg.MaxImageBytes {
		s.clearImage(ctx)
		msg := sizeMessage(s.cfg.MaxImageBytes)
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, msg)
		return pkgerrors.New(pkgerrors.CodeValidation, msg)
	}
	mime := sniff(file.Content)
	if mime == "" {
		s.clearImage(ctx)
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, MsgNotAnImage)
		return pkgerrors.New(pkgerrors.CodeValidation, MsgNotAnImage)
	}

	s.mu.Lock()
	s.image = &backend.FileUpload{Filename: file.Filename, Content: file.Content}
	s.state.ImageName = file.Filename
	s.mu.Unlock()

	if err := s.cfg.Page.SetValue(page.IDProductImage, file.Filename); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "image input missing")
	}
	s.replacePreview(ctx,
		page.El("p", nil, page.El("strong", nil, page.Txt("Preview:"))),
		page.El("img", page.Attrs{"src": dataURL(mime, file.Content), "alt": "Preview", "class": "image-preview"}),
	)
	return nil
}

// Submit posts the dialog to its action. The backend answers with a full page, which replaces
// the current one.
func (s *service) Submit(ctx context.Context) error {
	s.mu.Lock()
	action := s.state.Action
	image := s.image
	s.mu.Unlock()

	form := ProductForm{
		Name:        s.cfg.Page.Value(page.IDProductName),
		Category:    s.cfg.Page.Value(page.IDProductCategory),
		Price:       s.cfg.Page.Value(page.IDProductPrice),
		Description: s.cfg.Page.Value(page.IDProductDescription),
	}
	if err := form.Validate(); err != nil {
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, describe(err))
		return err
	}

	ctx = s.cfg.Logger.WithField(s.cfg.Logger.WithOperation(ctx, "admin.submit"), "action", action)
	start := time.Now()
	document, err := s.cfg.Backend.SubmitForm(ctx, action, form.Values(), image)
	s.cfg.Metrics.Observe("admin.submit", start, err)
	if err != nil {
		s.cfg.Logger.Error(ctx, msgSaveFailed, err)
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, msgSaveFailed)
		return err
	}

	s.mu.Lock()
	s.image = nil
	s.state.ImageName = ""
	s.mu.Unlock()
	s.Close(ctx)
	s.reload(ctx, document)
	return nil
}

// Delete removes a product after confirmation. A declined prompt does nothing.
func (s *service) Delete(ctx context.Context, productID int64) error {
	if !s.cfg.Confirmer.Confirm(ctx, MsgConfirmDelete) {
		return nil
	}
	ctx = s.cfg.Logger.WithProductID(s.cfg.Logger.WithOperation(ctx, "admin.delete"), productID)
	start := time.Now()
	document, err := s.cfg.Backend.DeleteProduct(ctx, productID)
	s.cfg.Metrics.Observe("admin.delete", start, err)
	if err != nil {
		s.cfg.Logger.Error(ctx, msgDeleteFailed, err)
		s.cfg.Notifier.Notify(ctx, ui.SeverityError, msgDeleteFailed)
		return err
	}
	s.reload(ctx, document)
	return nil
}

func (s *service) reload(ctx context.Context, document []byte) {
	if s.cfg.Reloader == nil {
		return
	}
	if err := s.cfg.Reloader.Reload(ctx, document); err != nil {
		s.cfg.Logger.Error(ctx, "failed to reload page", err)
	}
}

func (s *service) setForm(ctx context.Context, title, action string, form ProductForm) {
	p := s.cfg.Page
	steps := []error{
		p.SetText(page.IDModalTitle, title),
		p.SetAttr(page.IDProductForm, "action", action),
		p.SetAttr(page.IDProductForm, "method", "POST"),
		p.SetValue(page.IDProductName, form.Name),
		p.SetValue(page.IDProductCategory, form.Category),
		p.SetValue(page.IDProductPrice, form.Price),
		p.SetValue(page.IDProductDescription, form.Description),
		p.SetValue(page.IDProductImage, ""),
	}
	for _, err := range steps {
		if err != nil {
			s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "product form incomplete")
			return
		}
	}
}

func (s *service) clearImage(ctx context.Context) {
	s.mu.Lock()
	s.image = nil
	s.state.ImageName = ""
	s.mu.Unlock()
	if err := s.cfg.Page.SetValue(page.IDProductImage, ""); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "image input missing")
	}
	s.replacePreview(ctx)
}

func (s *service) replacePreview(ctx context.Context, nodes ...*html.Node) {
	if err := s.cfg.Page.Replace(page.IDImagePreview, nodes...); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "image preview missing")
	}
}

func (s *service) show(ctx context.Context) {
	if err := s.cfg.Page.Show(page.IDProductModal); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "product modal missing")
	}
}

// describe turns a form validation error into one operator line, e.g. "name is required".
func describe(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err.Error()
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || len(details) == 0 {
		return typed.Message()
	}
	fields := make([]string, 0, len(details))
	for _, field := range []string{"name", "category", "price", "description"} {
		if msg, ok := details[field]; ok {
			fields = append(fields, field+" "+msg)
		}
	}
	return strings.Join(fields, "; ")
}
