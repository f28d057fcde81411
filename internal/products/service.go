// Package products drives the product list of the billing page: category filter, text search
// and rendering of the results.
package products

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
	"github.com/angelmondragon/trio-pos/pkg/types"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

// CategoryAll selects every category.
const CategoryAll = "all"

const checkConcurrency = 4

// Backend is the product query side of the POS backend.
type Backend interface {
	ListProducts(ctx context.Context, q backend.ProductQuery) ([]backend.Product, error)
	ImageExists(ctx context.Context, path string) bool
}

// CartAdder receives the Add buttons of the list.
type CartAdder interface {
	Add(ctx context.Context, productID int64) error
}

type Service interface {
	Search(ctx context.Context, text string) error
	FilterByCategory(ctx context.Context, category string) error
	LoadCategories(ctx context.Context) error
	Render(ctx context.Context, list []backend.Product)
	ImageFailed(ctx context.Context, productID int64)
	AddToCart(ctx context.Context, productID int64) error
	Category() string
}

type Config struct {
	Backend     Backend
	Page        *page.Page
	Cart        CartAdder
	Currency    types.Currency
	ImagePath   string
	CheckImages bool
	Metrics     *metrics.TerminalMetrics
	Logger      *logger.Logger
}

type service struct {
	cfg Config

	mu       sync.Mutex
	category string
	shown    map[int64]backend.Product
}

func NewService(cfg Config) (Service, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("product backend required")
	}
	if cfg.Page == nil {
		return nil, fmt.Errorf("page required")
	}
	if cfg.Cart == nil {
		return nil, fmt.Errorf("cart required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &service{cfg: cfg, category: CategoryAll, shown: map[int64]backend.Product{}}, nil
}

func (s *service) Category() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category
}

// Search lists the current category filtered by text.
func (s *service) Search(ctx context.Context, text string) error {
	return s.query(s.cfg.Logger.WithOperation(ctx, "products.search"), "products.search", s.Category(), text)
}

// FilterByCategory switches the category, highlights its button and lists it with the
// current search text.
func (s *service) FilterByCategory(ctx context.Context, category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		category = CategoryAll
	}
	s.mu.Lock()
	s.category = category
	s.mu.Unlock()

	s.cfg.Page.Walk(func(n *html.Node) {
		if !page.HasClass(n, page.ClassCategory) {
			return
		}
		page.RemoveClass(n, page.ClassActive)
		if page.GetAttr(n, page.AttrCategory) == category {
			page.AddClass(n, page.ClassActive)
		}
	})

	ctx = s.cfg.Logger.WithField(s.cfg.Logger.WithOperation(ctx, "products.filter"), "category", category)
	return s.query(ctx, "products.filter", category, s.cfg.Page.Value(page.IDProductSearch))
}

// LoadCategories adds a button for every category of the catalogue that the page does not
// already offer.
func (s *service) LoadCategories(ctx context.Context) error {
	ctx = s.cfg.Logger.WithOperation(ctx, "products.categories")
	list, err := s.cfg.Backend.ListProducts(ctx, backend.ProductQuery{Category: CategoryAll})
	if err != nil {
		s.cfg.Logger.Error(ctx, "error loading categories", err)
		return err
	}

	seen := map[string]bool{}
	for _, p := range list {
		if c := strings.TrimSpace(p.Category); c != "" {
			seen[c] = true
		}
	}
	var bar *html.Node
	s.cfg.Page.Walk(func(n *html.Node) {
		if page.GetAttr(n, "id") == page.IDCategoryBar {
			bar = n
		}
		if page.HasClass(n, page.ClassCategory) {
			delete(seen, page.GetAttr(n, page.AttrCategory))
		}
	})
	if bar == nil || len(seen) == 0 {
		return nil
	}

	categories := make([]string, 0, len(seen))
	for c := range seen {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	s.cfg.Page.Walk(func(n *html.Node) {
		if n != bar {
			return
		}
		for _, c := range categories {
			n.AppendChild(page.El("button", page.Attrs{
				"class":           page.ClassCategory,
				"type":            "button",
				page.AttrAction:   "category",
				page.AttrCategory: c,
			}, page.Txt(Capitalize(c))))
		}
	})
	return nil
}

func (s *service) AddToCart(ctx context.Context, productID int64) error {
	return s.cfg.Cart.Add(ctx, productID)
}

func (s *service) query(ctx context.Context, op, category, search string) error {
	start := time.Now()
	list, err := s.cfg.Backend.ListProducts(ctx, backend.ProductQuery{
		Category: category,
		Search:   strings.TrimSpace(search),
	})
	s.cfg.Metrics.Observe(op, start, err)
	if err != nil {
		s.cfg.Logger.Error(ctx, "error searching products", err)
		return err
	}
	s.Render(ctx, list)
	return nil
}

// Render replaces the product list. With image probing on, unreachable images start out as
// placeholders.
func (s *service) Render(ctx context.Context, list []backend.Product) {
	broken := s.checkImages(ctx, list)

	shown := make(map[int64]backend.Product, len(list))
	nodes := make([]*html.Node, 0, len(list))
	for _, p := range list {
		shown[p.ID] = p
		nodes = append(nodes, s.productItem(p, broken[p.ID]))
	}
	if len(list) == 0 {
		nodes = append(nodes, page.El("p", page.Attrs{"class": page.ClassEmptyCart}, page.Txt("No products found")))
	}

	s.mu.Lock()
	s.shown = shown
	s.mu.Unlock()

	if err := s.cfg.Page.Replace(page.IDProductsList, nodes...); err != nil {
		s.cfg.Logger.Warn(s.cfg.Logger.WithField(ctx, "error", err.Error()), "products list missing")
	}
}

// ImageFailed swaps the product's image for its placeholder glyph.
func (s *service) ImageFailed(ctx context.Context, productID int64) {
	s.mu.Lock()
	product, known := s.shown[productID]
	s.mu.Unlock()

	id := fmt.Sprint(productID)
	replaced := false
	s.cfg.Page.Walk(func(n *html.Node) {
		if !page.HasClass(n, "product-item") || page.GetAttr(n, page.AttrProductID) != id {
			return
		}
		name := product.Name
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || !page.HasClass(c, "product-item-image") {
				continue
			}
			if !known {
				name = imageAlt(c)
			}
			page.ReplaceChildren(c, placeholder(name))
			replaced = true
		}
	})
	if !replaced {
		s.cfg.Logger.Debug(s.cfg.Logger.WithProductID(ctx, productID), "image failure for product not on page")
	}
}

func (s *service) checkImages(ctx context.Context, list []backend.Product) map[int64]bool {
	broken := map[int64]bool{}
	if !s.cfg.CheckImages {
		return broken
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(checkConcurrency)
	for _, p := range list {
		if p.ImageURL == "" {
			continue
		}
		p := p
		g.Go(func() error {
			if !s.cfg.Backend.ImageExists(gctx, s.imageSrc(p.ImageURL)) {
				mu.Lock()
				broken[p.ID] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return broken
}

func imageAlt(n *html.Node) string {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "img" {
			return page.GetAttr(c, "alt")
		}
	}
	return ""
}
