package ui

import (
	"context"
	"sync"
)

// Confirmer asks the operator to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type confirmKey struct{}

type confirmation struct {
	mu        sync.Mutex
	confirmed bool
	asked     string
}

// WithConfirmation attaches the operator's answer for the actions triggered by one event.
func WithConfirmation(ctx context.Context, confirmed bool) context.Context {
	return context.WithValue(ctx, confirmKey{}, &confirmation{confirmed: confirmed})
}

// ConfirmationRequested returns the last prompt that was asked and declined within ctx.
func ConfirmationRequested(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(confirmKey{}).(*confirmation)
	if !ok {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.asked, c.asked != ""
}

// ContextConfirmer answers with the confirmation attached to the event context. Events without
// one are treated as declined.
type ContextConfirmer struct{}

func (ContextConfirmer) Confirm(ctx context.Context, prompt string) bool {
	c, ok := ctx.Value(confirmKey{}).(*confirmation)
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.confirmed {
		c.asked = prompt
	}
	return c.confirmed
}
