package ratelimit

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := New(limit, window)
	l.now = clock.now
	return l, clock
}

func TestAllowExhaustsAndRefills(t *testing.T) {
	l, clock := newTestLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d rejected", i)
		}
	}
	if l.Allow("a") {
		t.Error("fourth request allowed")
	}
	if !l.Allow("b") {
		t.Error("independent key rejected")
	}

	clock.t = clock.t.Add(20 * time.Second)
	if !l.Allow("a") {
		t.Error("token not refilled after a third of the window")
	}
	if l.Allow("a") {
		t.Error("more than one token refilled")
	}
}

func TestDisabledLimiter(t *testing.T) {
	l, _ := newTestLimiter(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatal("disabled limiter rejected a request")
		}
	}
}

func TestSweepAndReset(t *testing.T) {
	l, clock := newTestLimiter(1, time.Second)
	l.Allow("old")
	clock.t = clock.t.Add(time.Minute)
	l.Allow("new")
	if n := l.sweep(); n != 1 {
		t.Errorf("sweep removed %d entries, want 1", n)
	}
	if l.Allow("new") {
		t.Error("exhausted key allowed")
	}
	l.Reset("new")
	if !l.Allow("new") {
		t.Error("reset key rejected")
	}
}
