package clock

import (
	"slices"
	"testing"
	"time"
)

func TestManualFiresInDeadlineOrder(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	var fired []string
	c.AfterFunc(200*time.Millisecond, func() { fired = append(fired, "late") })
	c.AfterFunc(100*time.Millisecond, func() { fired = append(fired, "early") })

	c.Advance(99 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("expected nothing fired yet, got %v", fired)
	}
	if n := c.Pending(); n != 2 {
		t.Fatalf("expected 2 pending timers, got %d", n)
	}

	c.Advance(200 * time.Millisecond)
	if !slices.Equal(fired, []string{"early", "late"}) {
		t.Fatalf("expected deadline order, got %v", fired)
	}
	if n := c.Pending(); n != 0 {
		t.Fatalf("expected no pending timers, got %d", n)
	}
}

func TestManualStop(t *testing.T) {
	c := NewManual(time.Unix(0, 0))
	called := false
	timer := c.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Fatal("expected first Stop to report an active timer")
	}
	if timer.Stop() {
		t.Fatal("expected second Stop to report an inactive timer")
	}
	c.Advance(2 * time.Second)
	if called {
		t.Fatal("stopped timer fired")
	}
}

func TestRealAfterFunc(t *testing.T) {
	done := make(chan struct{})
	Real{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}
