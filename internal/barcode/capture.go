// Package barcode tells keyboard-wedge scanner bursts apart from human typing in the product
// search box and turns completed scans into cart additions.
package barcode

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/trio-pos/pkg/clock"
)

const (
	DefaultIdleTimeout = 100 * time.Millisecond
	DefaultMinLength   = 5

	KeyEnter = "Enter"
)

// KeyEvent is one keydown in the search box.
type KeyEvent struct {
	Key  string `json:"key" validate:"required"`
	Ctrl bool   `json:"ctrl"`
	Meta bool   `json:"meta"`
	Alt  bool   `json:"alt"`
}

// Printable reports whether the key produces a single character without modifiers.
func (e KeyEvent) Printable() bool {
	return utf8.RuneCountInString(e.Key) == 1 && !e.Ctrl && !e.Meta && !e.Alt
}

// Outcome tells the caller what a key or paste did.
type Outcome string

const (
	OutcomeBuffered Outcome = "buffered"
	OutcomeScan     Outcome = "scan"
	OutcomeSearch   Outcome = "search"
	OutcomeIgnored  Outcome = "ignored"
)

// PreventDefault reports whether the input must not receive the event.
func (o Outcome) PreventDefault() bool {
	return o == OutcomeScan
}

type CaptureConfig struct {
	Clock       clock.Clock
	IdleTimeout time.Duration
	// MinLength is exclusive: a scan needs more characters than this.
	MinLength int
	// OnScan runs once per completed scan with the scanned code.
	OnScan func(ctx context.Context, code string)
	// OnSearch runs when Enter ends ordinary typing.
	OnSearch func(ctx context.Context)
}

// Capture is the keystroke buffer. The idle timer is replaced on every key and never stacked.
type Capture struct {
	cfg CaptureConfig

	mu     sync.Mutex
	buffer strings.Builder
	timer  clock.Timer
	epoch  uint64
}

func NewCapture(cfg CaptureConfig) *Capture {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultMinLength
	}
	return &Capture{cfg: cfg}
}

// Buffer returns the characters collected so far.
func (c *Capture) Buffer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.String()
}

// HandleKey feeds one keydown.
func (c *Capture) HandleKey(ctx context.Context, ev KeyEvent) Outcome {
	c.mu.Lock()
	c.stopTimerLocked()

	if ev.Key == KeyEnter {
		code := c.buffer.String()
		c.buffer.Reset()
		c.mu.Unlock()

		if c.looksLikeScan(code) {
			if c.cfg.OnScan != nil {
				c.cfg.OnScan(ctx, code)
			}
			return OutcomeScan
		}
		if c.cfg.OnSearch != nil {
			c.cfg.OnSearch(ctx)
		}
		return OutcomeSearch
	}

	outcome := OutcomeIgnored
	if ev.Printable() {
		c.buffer.WriteString(ev.Key)
		outcome = OutcomeBuffered
	}
	if c.buffer.Len() > 0 {
		c.armTimerLocked()
	}
	c.mu.Unlock()
	return outcome
}

// HandlePaste treats pasted text that looks like a code as a scan.
func (c *Capture) HandlePaste(ctx context.Context, text string) Outcome {
	if !c.looksLikeScan(text) {
		return OutcomeIgnored
	}
	if c.cfg.OnScan != nil {
		c.cfg.OnScan(ctx, strings.TrimSpace(text))
	}
	return OutcomeScan
}

// Stop cancels a pending idle timer.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Capture) looksLikeScan(text string) bool {
	return utf8.RuneCountInString(text) > c.cfg.MinLength && !strings.Contains(text, " ")
}

func (c *Capture) armTimerLocked() {
	c.epoch++
	epoch := c.epoch
	c.timer = c.cfg.Clock.AfterFunc(c.cfg.IdleTimeout, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A timer that lost the race with Stop must not clear a newer burst.
		if c.epoch == epoch {
			c.buffer.Reset()
			c.timer = nil
		}
	})
}

func (c *Capture) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.epoch++
}
