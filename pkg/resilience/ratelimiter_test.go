package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLimiterBurstThenRefill(t *testing.T) {
	clk := &fakeClock{t: time.Unix(0, 0)}
	l := newLimiter(LimiterOpts{Rate: 2, Burst: 3}, clk.now)

	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d should be allowed within burst", i)
		}
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	clk.advance(500 * time.Millisecond)
	if !l.Allow() {
		t.Fatal("one token should have refilled after 0.5s at 2/s")
	}
	if l.Allow() {
		t.Fatal("only one token should have refilled")
	}

	clk.advance(time.Hour)
	for i := 0; i < 3; i++ {
		l.Allow()
	}
	if l.Allow() {
		t.Fatal("refill must be capped at burst")
	}
}

func TestLimiterDefaults(t *testing.T) {
	l := NewLimiter(LimiterOpts{})
	if !l.Allow() {
		t.Fatal("zero opts should still allow one call")
	}
}

func TestLimiterWait(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 100, Burst: 1})
	l.Allow()

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Wait took too long at 100/s")
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want deadline exceeded, got %v", err)
	}
}

func TestKeyedLimiterIsolatesKeys(t *testing.T) {
	k := NewKeyedLimiter(LimiterOpts{Rate: 1, Burst: 1}, time.Minute)
	if !k.Allow("a") || k.Allow("a") {
		t.Fatal("key a should get exactly one token")
	}
	if !k.Allow("b") {
		t.Fatal("key b has its own bucket")
	}
	if k.Len() != 2 {
		t.Fatalf("Len = %d", k.Len())
	}
}

func TestKeyedLimiterEvictsIdle(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	k := NewKeyedLimiter(LimiterOpts{Rate: 1, Burst: 1}, time.Minute)
	k.now = clk.now

	k.Allow("old")
	clk.advance(2 * time.Minute)
	k.Allow("new")

	if k.Len() != 1 {
		t.Fatalf("idle bucket should be evicted, Len = %d", k.Len())
	}
}
