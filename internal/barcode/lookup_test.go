package barcode

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/internal/ui"
	"github.com/angelmondragon/trio-pos/pkg/logger"
)

type fakeFinder struct {
	products []backend.Product
	err      error
	queries  []backend.ProductQuery
}

func (f *fakeFinder) ListProducts(_ context.Context, q backend.ProductQuery) ([]backend.Product, error) {
	f.queries = append(f.queries, q)
	return f.products, f.err
}

type fakeCart struct{ added []int64 }

func (f *fakeCart) Add(_ context.Context, id int64) error {
	f.added = append(f.added, id)
	return nil
}

type recordingNotifier struct{ messages []string }

func (r *recordingNotifier) Notify(_ context.Context, _ ui.Severity, msg string) {
	r.messages = append(r.messages, msg)
}

func newLookup(t *testing.T, finder *fakeFinder, logg *logger.Logger) (*Lookup, *fakeCart, *recordingNotifier, *page.Page) {
	t.Helper()
	c, n, p := &fakeCart{}, &recordingNotifier{}, page.New()
	l, err := NewLookup(LookupConfig{Finder: finder, Cart: c, Notifier: n, Page: p, Logger: logg})
	if err != nil {
		t.Fatalf("new lookup: %v", err)
	}
	if err := p.SetValue(page.IDProductSearch, "8901234567"); err != nil {
		t.Fatalf("seed search: %v", err)
	}
	return l, c, n, p
}

func expectSearchCleared(t *testing.T, p *page.Page) {
	t.Helper()
	if got := p.Value(page.IDProductSearch); got != "" {
		t.Fatalf("expected search cleared, got %q", got)
	}
}

func TestLookupFoundAddsToCart(t *testing.T) {
	finder := &fakeFinder{products: []backend.Product{{ID: 7, Name: "Murukku", Stock: 3}}}
	l, c, n, p := newLookup(t, finder, nil)

	if err := l.Find(context.Background(), "8901234567"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if finder.queries[0].Barcode != "8901234567" {
		t.Fatalf("expected barcode query, got %+v", finder.queries[0])
	}
	if !slices.Equal(c.added, []int64{7}) {
		t.Fatalf("expected product 7 added, got %v", c.added)
	}
	if !slices.Equal(n.messages, []string{"Product found: Murukku"}) {
		t.Fatalf("unexpected notifications %v", n.messages)
	}
	expectSearchCleared(t, p)
}

func TestLookupSeveralMatchesUsesFirstAndWarns(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	finder := &fakeFinder{products: []backend.Product{{ID: 7, Name: "Murukku", Stock: 3}, {ID: 8, Name: "Other", Stock: 1}}}
	l, c, _, _ := newLookup(t, finder, logg)

	if err := l.Find(context.Background(), "8901234567"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if !slices.Equal(c.added, []int64{7}) {
		t.Fatalf("expected the first match added, got %v", c.added)
	}
	if !strings.Contains(buf.String(), "barcode matches several products") || !strings.Contains(buf.String(), `"matches":2`) {
		t.Fatalf("expected a warning about several matches, got %s", buf.String())
	}
}

func TestLookupOutOfStock(t *testing.T) {
	l, c, n, p := newLookup(t, &fakeFinder{products: []backend.Product{{ID: 7, Name: "Murukku", Stock: 0}}}, nil)

	if err := l.Find(context.Background(), "8901234567"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(c.added) != 0 {
		t.Fatalf("expected nothing added, got %v", c.added)
	}
	if !slices.Equal(n.messages, []string{MsgOutOfStock}) {
		t.Fatalf("unexpected notifications %v", n.messages)
	}
	expectSearchCleared(t, p)
}

func TestLookupNotFound(t *testing.T) {
	l, _, n, _ := newLookup(t, &fakeFinder{}, nil)
	if err := l.Find(context.Background(), "000000"); err != nil {
		t.Fatalf("find: %v", err)
	}
	if !slices.Equal(n.messages, []string{MsgNotFound}) {
		t.Fatalf("unexpected notifications %v", n.messages)
	}
}

func TestLookupTransportFailure(t *testing.T) {
	l, c, n, p := newLookup(t, &fakeFinder{err: errors.New("offline")}, nil)
	if err := l.Find(context.Background(), "000000"); err == nil {
		t.Fatal("expected transport failure to be returned")
	}
	if len(c.added) != 0 {
		t.Fatalf("expected nothing added, got %v", c.added)
	}
	if !slices.Equal(n.messages, []string{MsgLookupError}) {
		t.Fatalf("unexpected notifications %v", n.messages)
	}
	expectSearchCleared(t, p)
}
