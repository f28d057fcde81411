// Package ui holds the terminal's operator-facing primitives: transient notifications,
// confirmations and navigation prompts.
package ui

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/trio-pos/internal/page"
	"github.com/angelmondragon/trio-pos/pkg/clock"
	"github.com/angelmondragon/trio-pos/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

const (
	DefaultNotificationTTL = 3 * time.Second
	MaxNotifications       = 20
)

// Notifier shows a transient message to the operator.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Board keeps the active notifications and mirrors them into the page's notifications area.
type Board struct {
	mu    sync.Mutex
	items []Notification
	page  *page.Page
	clock clock.Clock
	ttl   time.Duration
	logg  *logger.Logger
}

func NewBoard(p *page.Page, clk clock.Clock, ttl time.Duration, logg *logger.Logger) *Board {
	if clk == nil {
		clk = clock.Real{}
	}
	if ttl <= 0 {
		ttl = DefaultNotificationTTL
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Board{page: p, clock: clk, ttl: ttl, logg: logg}
}

func (b *Board) Notify(ctx context.Context, severity Severity, message string) {
	now := b.clock.Now()
	n := Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: now,
		ExpiresAt: now.Add(b.ttl),
	}

	b.mu.Lock()
	b.items = append(b.prune(now), n)
	if len(b.items) > MaxNotifications {
		b.items = b.items[len(b.items)-MaxNotifications:]
	}
	snapshot := append([]Notification(nil), b.items...)
	b.mu.Unlock()

	b.logg.Info(b.logg.WithFields(ctx, map[string]any{"severity": string(severity), "notification": message}), "notification")
	b.render(ctx, snapshot)
	detached := context.WithoutCancel(ctx)
	b.clock.AfterFunc(b.ttl, func() { b.expire(detached) })
}

// Active returns the notifications that have not expired yet, oldest first.
func (b *Board) Active() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = b.prune(b.clock.Now())
	return append([]Notification(nil), b.items...)
}

func (b *Board) expire(ctx context.Context) {
	b.mu.Lock()
	b.items = b.prune(b.clock.Now())
	snapshot := append([]Notification(nil), b.items...)
	b.mu.Unlock()
	b.render(ctx, snapshot)
}

func (b *Board) prune(now time.Time) []Notification {
	kept := b.items[:0]
	for _, n := range b.items {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}

func (b *Board) render(ctx context.Context, items []Notification) {
	if b.page == nil {
		return
	}
	nodes := make([]*html.Node, 0, len(items))
	for _, n := range items {
		nodes = append(nodes, page.El("div", page.Attrs{
			"class":   "notification notification-" + string(n.Severity),
			"role":    "status",
			"data-id": n.ID,
		}, page.Txt(n.Message)))
	}
	if err := b.page.Replace(page.IDNotifications, nodes...); err != nil {
		b.logg.Warn(b.logg.WithField(ctx, "error", err.Error()), "notifications area missing")
	}
}
