// Package backend is the terminal's HTTP client for the POS backend: product queries, the
// session cart, order processing and the admin product form posts.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/trio-pos/pkg/errors"
	"github.com/google/uuid"
)

const (
	pathProducts     = "/api/products"
	pathCart         = "/api/cart"
	pathCartAdd      = "/api/cart/add"
	pathCartUpdate   = "/api/cart/update"
	pathCartRemove   = "/api/cart/remove"
	pathCartClear    = "/api/cart/clear"
	pathOrderProcess = "/api/order/process"
	pathLogin        = "/login"

	headerRequestID = "X-Request-Id"

	errorBodyReadLimit int64 = 1024
	responseReadLimit  int64 = 8 << 20
)

var errBaseURLRequired = errors.New("backend base url is required")

// Client talks to one POS backend. The session cookie lives in the client's cookie jar so the
// server-side session cart stays stable across calls.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	session    *http.Cookie
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithSessionCookie seeds the jar with an existing backend session.
func WithSessionCookie(name, value string) Option {
	return func(c *Client) {
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if name != "" && value != "" {
			c.session = &http.Cookie{Name: name, Value: value, Path: "/"}
		}
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		client.httpClient.Jar = jar
	}
	if client.session != nil {
		client.httpClient.Jar.SetCookies(client.baseURL, []*http.Cookie{client.session})
	}

	return client, nil
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// ListProducts runs GET /api/products with either a barcode or a category/search filter.
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	params := url.Values{}
	if barcode := strings.TrimSpace(q.Barcode); barcode != "" {
		params.Set("barcode", barcode)
	} else {
		category := strings.TrimSpace(q.Category)
		if category == "" {
			category = "all"
		}
		params.Set("category", category)
		params.Set("search", strings.TrimSpace(q.Search))
	}

	var products []Product
	if err := c.doJSON(ctx, http.MethodGet, pathProducts+"?"+params.Encode(), nil, &products, "list products"); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// GetCart returns the session cart.
func (c *Client) GetCart(ctx context.Context) (Cart, error) {
	return c.cartCall(ctx, http.MethodGet, pathCart, nil, "load cart")
}

// AddToCart adds quantity units of the product and returns the new snapshot.
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) (Cart, error) {
	return c.cartCall(ctx, http.MethodPost, pathCartAdd, cartMutation{ProductID: productID, Quantity: &quantity}, "add to cart")
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) (Cart, error) {
	return c.cartCall(ctx, http.MethodPost, pathCartUpdate, cartMutation{ProductID: productID, Quantity: &quantity}, "update cart")
}

// RemoveFromCart drops a cart line.
func (c *Client) RemoveFromCart(ctx context.Context, productID int64) (Cart, error) {
	return c.cartCall(ctx, http.MethodPost, pathCartRemove, cartMutation{ProductID: productID}, "remove from cart")
}

// ClearCart empties the session cart. The backend acknowledges with {success} only.
func (c *Client) ClearCart(ctx context.Context) (Cart, error) {
	var env cartEnvelope
	if err := c.doJSON(ctx, http.MethodPost, pathCartClear, nil, &env, "clear cart"); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, pkgerrors.New(pkgerrors.CodeRejected, env.Error)
	}
	if !env.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "clear cart not acknowledged")
	}
	return Cart{}, nil
}

// ProcessOrder checks out the session cart.
func (c *Client) ProcessOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	payload := orderPayload{
		Discount:      json.Number(req.Discount.String()),
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
	}

	var env orderEnvelope
	if err := c.doJSON(ctx, http.MethodPost, pathOrderProcess, payload, &env, "process order"); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, pkgerrors.New(pkgerrors.CodeRejected, env.Error)
	}
	if !env.Success {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order not acknowledged")
	}
	return &OrderResult{OrderID: env.OrderID, InvoiceNumber: env.InvoiceNumber}, nil
}

// SubmitForm posts a multipart form to a backend admin action and returns the rendered page.
func (c *Client) SubmitForm(ctx context.Context, action string, fields url.Values, image *FileUpload) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, values := range fields {
		for _, v := range values {
			if err := writer.WriteField(key, v); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode form field")
			}
		}
	}
	if image != nil && len(image.Content) > 0 {
		part, err := writer.CreateFormFile("image", image.Filename)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode form file")
		}
		if _, err := part.Write(image.Content); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode form file")
		}
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode form")
	}

	return c.doRaw(ctx, http.MethodPost, action, &body, writer.FormDataContentType(), "submit "+action)
}

// DeleteProduct posts the empty delete form for a product.
func (c *Client) DeleteProduct(ctx context.Context, productID int64) ([]byte, error) {
	action := "/admin/products/" + strconv.FormatInt(productID, 10) + "/delete"
	return c.doRaw(ctx, http.MethodPost, action, strings.NewReader(""), "application/x-www-form-urlencoded", "delete product")
}

// Login authenticates the terminal operator with the backend form login. The backend answers a
// failed login by rendering the login page again, so landing back on /login means rejection.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, pathLogin, strings.NewReader(form.Encode()))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build login request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute login request")
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, responseReadLimit))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, nil, "login")
	}
	if resp.Request != nil && resp.Request.URL.Path == pathLogin {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid username or password")
	}
	return nil
}

// FetchPage loads a server-rendered page such as /billing or /orders/{id}.
func (c *Client) FetchPage(ctx context.Context, path string) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, path, nil, "", "fetch "+path)
}

// InvoicePDF downloads the invoice of an order.
func (c *Client) InvoicePDF(ctx context.Context, orderID int64) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/invoice/"+strconv.FormatInt(orderID, 10)+"/pdf", nil, "", "download invoice")
}

// ImageExists reports whether an image path resolves on the backend.
func (c *Client) ImageExists(ctx context.Context, path string) bool {
	req, err := c.newRequest(ctx, http.MethodHead, path, nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (c *Client) cartCall(ctx context.Context, method, path string, payload any, op string) (Cart, error) {
	var env cartEnvelope
	if err := c.doJSON(ctx, method, path, payload, &env, op); err != nil {
		return nil, err
	}
	if env.Error != "" {
		return nil, pkgerrors.New(pkgerrors.CodeRejected, env.Error)
	}
	cart, err := toCart(env.Cart)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return cart, nil
}

// doJSON sends an optional JSON payload and decodes the response. A JSON {error} body on a
// non-2xx status is handed back to the caller through out so the message stays verbatim.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any, op string) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+op+" response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var rejected struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &rejected) == nil && rejected.Error != "" {
			return pkgerrors.New(pkgerrors.CodeRejected, rejected.Error)
		}
		return statusError(resp.StatusCode, raw, op)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" response")
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType, op string) ([]byte, error) {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+op+" request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+op+" response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, raw, op)
	}
	return raw, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.ResolveReference(ref).String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(headerRequestID, uuid.NewString())
	return req, nil
}

func statusError(status int, raw []byte, op string) error {
	msg := raw
	if int64(len(msg)) > errorBodyReadLimit {
		msg = msg[:errorBodyReadLimit]
	}
	cause := fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(msg)))
	if status == http.StatusNotFound {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, cause, op+" failed")
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, cause, op+" failed")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, cause, op+" failed")
}
