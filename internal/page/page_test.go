package page

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestNewCarriesPageContract(t *testing.T) {
	p := New()
	for _, id := range []string{
		IDProductModal, IDProductForm, IDModalTitle, IDImagePreview, IDProductName,
		IDProductCategory, IDProductPrice, IDProductDescription, IDProductImage,
		IDCartItems, IDProductsList, IDProductSearch, IDDiscountInput, IDSubtotal,
		IDTotalAmount, IDLanguageToggle, IDCategoryBar, IDNotifications,
	} {
		if !p.Has(id) {
			t.Fatalf("missing #%s", id)
		}
	}
	if p.Visible(IDProductModal) {
		t.Fatal("expected the product modal hidden")
	}
	if got := p.Text(IDCartItems); got != "Cart is empty" {
		t.Fatalf("unexpected empty cart text %q", got)
	}
}

func TestValueHandlesInputsAndTextareas(t *testing.T) {
	p := New()

	if err := p.SetValue(IDDiscountInput, "12.5"); err != nil {
		t.Fatalf("set discount: %v", err)
	}
	if err := p.SetValue(IDProductDescription, "crunchy"); err != nil {
		t.Fatalf("set description: %v", err)
	}

	if got := p.Value(IDDiscountInput); got != "12.5" {
		t.Fatalf("unexpected discount %q", got)
	}
	if got := p.Value(IDProductDescription); got != "crunchy" {
		t.Fatalf("unexpected description %q", got)
	}
	if got := p.Value("missing"); got != "" {
		t.Fatalf("expected empty value for a missing id, got %q", got)
	}
}

func TestMissingElement(t *testing.T) {
	p := New()
	if err := p.SetText("nope", "x"); !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestShowHide(t *testing.T) {
	p := New()
	if err := p.Show(IDProductModal); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !p.Visible(IDProductModal) {
		t.Fatal("expected modal visible")
	}
	if err := p.Hide(IDProductModal); err != nil {
		t.Fatalf("hide: %v", err)
	}
	if p.Visible(IDProductModal) {
		t.Fatal("expected modal hidden")
	}
}

func TestReplaceEscapesText(t *testing.T) {
	p := New()
	frag := El("div", Attrs{"data-product-id": "7", "class": "cart-item"},
		El("h4", nil, Txt(`<script>alert("x")</script>`)),
	)
	if err := p.Replace(IDCartItems, frag); err != nil {
		t.Fatalf("replace: %v", err)
	}

	out, err := p.InnerHTML(IDCartItems)
	if err != nil {
		t.Fatalf("inner html: %v", err)
	}
	want := `<div class="cart-item" data-product-id="7"><h4>&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;</h4></div>`
	if out != want {
		t.Fatalf("unexpected markup\n got: %s\nwant: %s", out, want)
	}
}

func TestClassHelpers(t *testing.T) {
	n := El("button", Attrs{"class": "category-btn active"})
	RemoveClass(n, ClassActive)
	if got := GetAttr(n, "class"); got != "category-btn" {
		t.Fatalf("unexpected class after remove %q", got)
	}
	AddClass(n, ClassActive)
	AddClass(n, ClassActive)
	if got := GetAttr(n, "class"); got != "category-btn active" {
		t.Fatalf("unexpected class after add %q", got)
	}
	if !HasClass(n, ClassCategory) {
		t.Fatal("expected category class")
	}
}

func TestWalkVisitsI18nNodes(t *testing.T) {
	p := New()
	var keys []string
	p.Walk(func(n *html.Node) {
		if HasAttr(n, AttrI18n) {
			keys = append(keys, GetAttr(n, AttrI18n))
		}
	})
	for _, want := range []string{"cart_empty", "process_order"} {
		if !slices.Contains(keys, want) {
			t.Fatalf("expected %s among %v", want, keys)
		}
	}
}

func TestParseAndRender(t *testing.T) {
	p, err := Parse(strings.NewReader(`<html><body><span id="subtotal">₹1.00</span></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := p.SetText(IDSubtotal, "₹2.00"); err != nil {
		t.Fatalf("set text: %v", err)
	}

	var b strings.Builder
	if err := p.Render(&b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(b.String(), `<span id="subtotal">₹2.00</span>`) {
		t.Fatalf("expected updated subtotal in %s", b.String())
	}
}

func TestLoadSwapsDocument(t *testing.T) {
	p := New()
	if err := p.Load(strings.NewReader(`<html><body><div id="cart-items">server</div></body></html>`)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := p.Text(IDCartItems); got != "server" {
		t.Fatalf("expected server document, got %q", got)
	}
	if p.Has(IDProductModal) {
		t.Fatal("expected the old document gone")
	}
}
