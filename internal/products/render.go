package products

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/page"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const ActionAdd = "product-add"

// Capitalize upper-cases the first letter and keeps the rest as is.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(r)) + s[size:]
}

func (s *service) imageSrc(name string) string {
	prefix := s.cfg.ImagePath
	if prefix == "" {
		prefix = "/static/images/products/"
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(name, "/")
}

func (s *service) productItem(p backend.Product, broken bool) *html.Node {
	id := strconv.FormatInt(p.ID, 10)

	var image *html.Node
	if p.ImageURL != "" && !broken {
		image = page.El("img", page.Attrs{
			"src":              s.imageSrc(p.ImageURL),
			"alt":              p.Name,
			page.AttrAction:    "image",
			page.AttrProductID: id,
		})
	} else {
		image = placeholder(p.Name)
	}

	return page.El("div", page.Attrs{"class": "product-item", page.AttrProductID: id, page.AttrCategory: p.Category},
		page.El("div", page.Attrs{"class": "product-item-image"}, image),
		page.El("div", page.Attrs{"class": "product-item-info"},
			page.El("h4", nil, page.Txt(p.Name)),
			page.El("p", page.Attrs{"class": "product-category"}, page.Txt(Capitalize(p.Category))),
		),
		page.El("div", page.Attrs{"class": "product-item-actions"},
			page.El("span", page.Attrs{"class": "product-price"}, page.Txt(s.cfg.Currency.Format(p.Price))),
			page.El("button", page.Attrs{
				"class":            "btn btn-sm btn-primary",
				"type":             "button",
				page.AttrAction:    ActionAdd,
				page.AttrProductID: id,
			}, page.Txt("Add")),
		),
	)
}

func placeholder(name string) *html.Node {
	glyph := "?"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		glyph = string(r)
	}
	return page.El("div", page.Attrs{"class": page.ClassPlaceholder}, page.Txt(glyph))
}
