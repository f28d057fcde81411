package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/trio-pos/internal/backend"
	"github.com/angelmondragon/trio-pos/internal/localstore"
	"github.com/angelmondragon/trio-pos/internal/terminal"
	"github.com/angelmondragon/trio-pos/pkg/clock"
	"github.com/angelmondragon/trio-pos/pkg/config"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/angelmondragon/trio-pos/pkg/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

// posBackend serves a cart holding one line until it is cleared.
type posBackend struct {
	mu      sync.Mutex
	cleared int
}

func (p *posBackend) handler() http.Handler {
	mux := http.NewServeMux()
	write := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{})
	})
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		defer p.mu.Unlock()
		cart := map[string]any{}
		if p.cleared == 0 {
			cart["3"] = map[string]any{"name": "Tea", "price": 12, "quantity": 2}
		}
		write(w, map[string]any{"success": true, "cart": cart})
	})
	mux.HandleFunc("/api/cart/clear", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.cleared++
		p.mu.Unlock()
		write(w, map[string]any{"success": true})
	})
	return mux
}

func (p *posBackend) clears() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cleared
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Env:         "test",
			TerminalID:  "till-test",
			CORSOrigins: []string{"http://shell.local"},
		},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
		Terminal: config.TerminalConfig{
			BarcodeIdleTimeout: 100 * time.Millisecond,
			BarcodeMinLength:   5,
			MaxImageBytes:      5 << 20,
			CurrencySymbol:     "₹",
			DefaultLanguage:    "en",
		},
	}
}

func newTestRouter(t *testing.T, pinger stubPinger) (http.Handler, *posBackend) {
	t.Helper()
	pos := &posBackend{}
	srv := httptest.NewServer(pos.handler())
	t.Cleanup(srv.Close)

	client, err := backend.NewClient(srv.URL)
	if err != nil {
		t.Fatalf("new backend client: %v", err)
	}

	cfg := testConfig()
	registry := prometheus.NewRegistry()
	term, err := terminal.New(terminal.Deps{
		Config:  cfg.Terminal,
		Backend: client,
		Store:   localstore.NewMemoryStore(),
		Clock:   clock.NewManual(time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)),
		Metrics: metrics.NewTerminalMetrics(registry),
		Logger:  logger.Nop(),
	})
	if err != nil {
		t.Fatalf("new terminal: %v", err)
	}
	t.Cleanup(term.Close)
	if err := term.Start(context.Background()); err != nil {
		t.Fatalf("start terminal: %v", err)
	}

	return NewRouter(cfg, logger.Nop(), pinger, term, registry), pos
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectBody(t *testing.T, rec *httptest.ResponseRecorder, fragment string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), fragment) {
		t.Fatalf("expected %s in body %s", fragment, rec.Body.String())
	}
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) terminal.State {
	t.Helper()
	var body struct {
		Data terminal.State `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	return body.Data
}

func TestHealthRoutes(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	expectStatus(t, rec, http.StatusOK)
	if env := rec.Header().Get("X-TrioPOS-Env"); env != "test" {
		t.Fatalf("expected env header test, got %q", env)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected a request id header")
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "till-test")
}

func TestHealthReadyReportsStoreFailure(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{err: errors.New("disk gone")})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	expectStatus(t, rec, http.StatusBadGateway)
}

func TestMetricsExposeTerminalCounters(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, "terminal_operation_duration_seconds")
}

func TestIndexServesPage(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))
	expectStatus(t, rec, http.StatusOK)
	expectBody(t, rec, `id="products-list"`)
	expectBody(t, rec, "Tea")
}

func TestClearCartNeedsConfirmationHeader(t *testing.T) {
	router, pos := newTestRouter(t, stubPinger{})
	click := func(confirm string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/terminal/events/click", strings.NewReader(`{"action":"cart-clear"}`))
		req.Header.Set("Content-Type", "application/json")
		if confirm != "" {
			req.Header.Set("X-Confirm", confirm)
		}
		return serve(router, req)
	}

	rec := click("")
	expectStatus(t, rec, http.StatusConflict)
	expectBody(t, rec, "Are you sure you want to clear the cart?")
	if n := pos.clears(); n != 0 {
		t.Fatalf("expected no clear without confirmation, got %d", n)
	}

	rec = click("true")
	expectStatus(t, rec, http.StatusOK)
	if n := pos.clears(); n != 1 {
		t.Fatalf("expected one clear, got %d", n)
	}

	state := decodeState(t, rec)
	if len(state.Cart) != 0 {
		t.Fatalf("expected empty cart, got %+v", state.Cart)
	}
	if len(state.Notifications) == 0 {
		t.Fatal("expected a notification")
	}
	if last := state.Notifications[len(state.Notifications)-1].Message; last != "Cart cleared" {
		t.Fatalf("expected Cart cleared, got %q", last)
	}
}

func imageUpload(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/terminal/admin/image", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHugeImageClearsEarlierSelection(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

	rec := serve(router, imageUpload(t, "tea.png", png))
	expectStatus(t, rec, http.StatusOK)
	if name := decodeState(t, rec).Modal.ImageName; name != "tea.png" {
		t.Fatalf("expected tea.png selected, got %q", name)
	}

	limit := testConfig().Terminal.MaxImageBytes
	huge := bytes.Repeat([]byte{1}, int(2*limit+(1<<20)+1))
	rec = serve(router, imageUpload(t, "poster.png", huge))
	expectStatus(t, rec, http.StatusBadRequest)
	expectBody(t, rec, "Image size must be less than 5MB")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/terminal/state", nil))
	expectStatus(t, rec, http.StatusOK)
	state := decodeState(t, rec)
	if state.Modal.ImageName != "" {
		t.Fatalf("expected the earlier selection cleared, got %q", state.Modal.ImageName)
	}
	found := false
	for _, n := range state.Notifications {
		if n.Message == "Image size must be less than 5MB" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected size notification, got %+v", state.Notifications)
	}
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodOptions, "/api/terminal/events/key", nil)
	req.Header.Set("Origin", "http://shell.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := serve(router, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://shell.local" {
		t.Fatalf("expected shell origin allowed, got %q", got)
	}
}

func TestUnknownActionIsValidationError(t *testing.T) {
	router, _ := newTestRouter(t, stubPinger{})

	req := httptest.NewRequest(http.MethodPost, "/api/terminal/events/click", strings.NewReader(`{"action":"launch"}`))
	expectStatus(t, serve(router, req), http.StatusBadRequest)
}
