package notify

import (
	"sync"
	"time"
)

// TokenBucket caps notification throughput. The bucket starts full and
// refills one token every window/capacity, so a burst of threshold
// crossings right after startup still gets through while a misconfigured
// one-minute nudge interval cannot flood the desktop.
type TokenBucket struct {
	capacity   int
	tokens     int
	refillRate time.Duration
	lastRefill time.Time
	now        func() time.Time

	mu sync.Mutex
}

// NewTokenBucket returns a bucket allowing capacity sends per window.
// A capacity of zero or less disables limiting and Allow always succeeds.
func NewTokenBucket(capacity int, window time.Duration) *TokenBucket {
	tb := &TokenBucket{
		capacity: capacity,
		tokens:   capacity,
		now:      time.Now,
	}
	if capacity > 0 && window > 0 {
		tb.refillRate = window / time.Duration(capacity)
	}
	tb.lastRefill = time.Now()
	return tb
}

// Allow consumes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.capacity <= 0 || tb.refillRate <= 0 {
		return true
	}

	now := tb.now()
	if tokensToAdd := int(now.Sub(tb.lastRefill) / tb.refillRate); tokensToAdd > 0 {
		tb.tokens = min(tb.capacity, tb.tokens+tokensToAdd)
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Reset refills the bucket to capacity.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.now()
}
