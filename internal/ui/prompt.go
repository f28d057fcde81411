package ui

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Navigator moves the display to another backend page.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Location is the page the display shell should show. It starts empty, meaning the billing page.
type Location struct {
	mu   sync.RWMutex
	path string
}

func (l *Location) Navigate(_ context.Context, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = strings.TrimSpace(path)
	return nil
}

func (l *Location) Current() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.path
}

// Prompt is a yes/no question whose acceptance navigates to Target.
type Prompt struct {
	Message   string    `json:"message"`
	Target    string    `json:"target"`
	OfferedAt time.Time `json:"offered_at"`
}

// Prompter offers a navigation that the operator may accept later.
type Prompter interface {
	Offer(ctx context.Context, message, target string)
}

// Prompts holds at most one pending prompt. A newer offer replaces the older one.
type Prompts struct {
	mu        sync.Mutex
	pending   *Prompt
	navigator Navigator
	now       func() time.Time
}

func NewPrompts(nav Navigator, now func() time.Time) *Prompts {
	if now == nil {
		now = time.Now
	}
	return &Prompts{navigator: nav, now: now}
}

func (p *Prompts) Offer(_ context.Context, message, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &Prompt{Message: message, Target: target, OfferedAt: p.now()}
}

// Pending returns a copy of the open prompt.
func (p *Prompts) Pending() (Prompt, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return Prompt{}, false
	}
	return *p.pending, true
}

// Answer resolves the open prompt. Accepting navigates to its target.
func (p *Prompts) Answer(ctx context.Context, accept bool) (Prompt, bool, error) {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	if pending == nil {
		return Prompt{}, false, nil
	}
	if accept && p.navigator != nil {
		if err := p.navigator.Navigate(ctx, pending.Target); err != nil {
			return *pending, true, err
		}
	}
	return *pending, true, nil
}
