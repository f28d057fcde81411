package backend

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is one entry of GET /api/products.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	Stock       int             `json:"stock"`
	Barcode     string          `json:"barcode,omitempty"`
}

// ProductQuery selects products. Barcode lookups ignore the other fields.
type ProductQuery struct {
	Barcode  string
	Category string
	Search   string
}

// CartItem is one cart line as held in the server session.
type CartItem struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// Cart is the server-authoritative cart snapshot keyed by product id.
type Cart map[int64]CartItem

// OrderRequest is the checkout payload.
type OrderRequest struct {
	Discount      decimal.Decimal
	CustomerName  string
	CustomerPhone string
}

// OrderResult identifies the order created by a successful checkout.
type OrderResult struct {
	OrderID       int64
	InvoiceNumber string
}

// FileUpload is an image attached to a product form post.
type FileUpload struct {
	Filename string
	Content  []byte
}

type cartLine struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type cartEnvelope struct {
	Success bool                `json:"success"`
	Cart    map[string]cartLine `json:"cart"`
	Error   string              `json:"error"`
}

type orderEnvelope struct {
	Success       bool   `json:"success"`
	OrderID       int64  `json:"order_id"`
	InvoiceNumber string `json:"invoice_number"`
	Error         string `json:"error"`
}

type cartMutation struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity,omitempty"`
}

type orderPayload struct {
	Discount      json.Number `json:"discount"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerPhone string      `json:"customer_phone,omitempty"`
}

func toCart(lines map[string]cartLine) (Cart, error) {
	cart := make(Cart, len(lines))
	for key, line := range lines {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, err
		}
		cart[id] = CartItem{
			ProductID: id,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Quantity,
		}
	}
	return cart, nil
}
