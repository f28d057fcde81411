// Package page holds the terminal's in-memory billing page: an HTML node tree that components
// update in place and the kiosk serves to the display shell.
package page

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

//go:embed shell.html
var shellHTML string

// ErrElementNotFound is returned when an id of the page contract is missing from the tree.
var ErrElementNotFound = errors.New("element not found")

// Page guards one document tree. Every method holds the lock only for the duration of the
// tree access, so callers never block on network calls made elsewhere.
type Page struct {
	mu  sync.Mutex
	doc *html.Node
}

// New returns the built-in billing page.
func New() *Page {
	p, err := Parse(strings.NewReader(shellHTML))
	if err != nil {
		panic(fmt.Sprintf("page: parse embedded shell: %v", err))
	}
	return p
}

// Parse builds a page from server-rendered HTML.
func Parse(r io.Reader) (*Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{doc: doc}, nil
}

// Load replaces the whole document, as a browser does on a full page load.
func (p *Page) Load(r io.Reader) error {
	doc, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("parse page: %w", err)
	}
	p.mu.Lock()
	p.doc = doc
	p.mu.Unlock()
	return nil
}

// Replace swaps all children of the element with the given nodes.
func (p *Page) Replace(id string, nodes ...*html.Node) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return notFound(id)
	}
	ReplaceChildren(el, nodes...)
	return nil
}

// SetText replaces the element's content with a single text node.
func (p *Page) SetText(id, text string) error {
	return p.Replace(id, Txt(text))
}

// Text returns the concatenated text content of the element.
func (p *Page) Text(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return ""
	}
	return TextContent(el)
}

// Value reads a form control: the value attribute for inputs, the text for textareas.
func (p *Page) Value(id string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return ""
	}
	if el.Data == "textarea" {
		return TextContent(el)
	}
	return GetAttr(el, "value")
}

// SetValue writes a form control value.
func (p *Page) SetValue(id, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return notFound(id)
	}
	if el.Data == "textarea" {
		ReplaceChildren(el, Txt(value))
		return nil
	}
	SetAttr(el, "value", value)
	return nil
}

// Attr returns an attribute of the element, or "" when either is missing.
func (p *Page) Attr(id, key string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return ""
	}
	return GetAttr(el, key)
}

// SetAttr sets an attribute on the element.
func (p *Page) SetAttr(id, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return notFound(id)
	}
	SetAttr(el, key, value)
	return nil
}

// Show sets display: block on the element.
func (p *Page) Show(id string) error {
	return p.SetAttr(id, "style", "display: block")
}

// Hide sets display: none on the element.
func (p *Page) Hide(id string) error {
	return p.SetAttr(id, "style", "display: none")
}

// Visible reports whether the element exists and is not display: none.
func (p *Page) Visible(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return false
	}
	style := strings.ReplaceAll(GetAttr(el, "style"), " ", "")
	return !strings.Contains(style, "display:none")
}

// Has reports whether the element is part of the tree.
func (p *Page) Has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return findByID(p.doc, id) != nil
}

// Walk visits every element node in document order while holding the page lock.
// fn may mutate the visited node but must not call back into the Page.
func (p *Page) Walk(fn func(n *html.Node)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	walk(p.doc, fn)
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return html.Render(w, p.doc)
}

// InnerHTML renders the children of the element.
func (p *Page) InnerHTML(id string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	el := findByID(p.doc, id)
	if el == nil {
		return "", notFound(id)
	}
	var buf bytes.Buffer
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		walk(c, fn)
		c = next
	}
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && GetAttr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("#%s: %w", id, ErrElementNotFound)
}
