// Package resilience provides token-bucket rate limiting: a single bucket for
// pacing calls to an upstream API, and a keyed set of buckets for throttling
// inbound clients.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrRateLimited = errors.New("rate limited")

// LimiterOpts configures the token bucket rate limiter.
type LimiterOpts struct {
	// Rate is the number of tokens added per second.
	Rate float64
	// Burst is the maximum number of tokens (bucket capacity).
	Burst int
}

// Limiter implements a token bucket rate limiter.
type Limiter struct {
	mu     sync.Mutex
	opts   LimiterOpts
	tokens float64
	last   time.Time
	now    func() time.Time
}

// NewLimiter creates a full token bucket.
func NewLimiter(opts LimiterOpts) *Limiter {
	return newLimiter(opts, time.Now)
}

func newLimiter(opts LimiterOpts, now func() time.Time) *Limiter {
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Rate <= 0 {
		opts.Rate = 1
	}
	return &Limiter{opts: opts, tokens: float64(opts.Burst), last: now(), now: now}
}

// Allow takes a token if one is available.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refill()
	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		l.refill()
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) / l.opts.Rate * float64(time.Second))
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(max(wait, time.Millisecond)):
		}
	}
}

// idleSince reports when the bucket was last touched.
func (l *Limiter) idleSince() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// refill adds tokens based on elapsed time. Must hold mu.
func (l *Limiter) refill() {
	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.opts.Rate
	if l.tokens > float64(l.opts.Burst) {
		l.tokens = float64(l.opts.Burst)
	}
	l.last = now
}

// KeyedLimiter keeps one bucket per key (client address, API key, ...).
// Buckets idle for longer than ttl are dropped on the next sweep.
type KeyedLimiter struct {
	mu        sync.Mutex
	opts      LimiterOpts
	ttl       time.Duration
	buckets   map[string]*Limiter
	lastSweep time.Time
	now       func() time.Time
}

// NewKeyedLimiter creates a KeyedLimiter. ttl <= 0 defaults to ten minutes.
func NewKeyedLimiter(opts LimiterOpts, ttl time.Duration) *KeyedLimiter {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &KeyedLimiter{
		opts:    opts,
		ttl:     ttl,
		buckets: make(map[string]*Limiter),
		now:     time.Now,
	}
}

// Allow takes a token from key's bucket.
func (k *KeyedLimiter) Allow(key string) bool {
	return k.bucket(key).Allow()
}

// Len returns the number of live buckets.
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *KeyedLimiter) bucket(key string) *Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) > k.ttl {
		for key, b := range k.buckets {
			if now.Sub(b.idleSince()) > k.ttl {
				delete(k.buckets, key)
			}
		}
		k.lastSweep = now
	}

	b, ok := k.buckets[key]
	if !ok {
		b = newLimiter(k.opts, k.now)
		k.buckets[key] = b
	}
	return b
}
