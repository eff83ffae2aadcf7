// Package service holds the firewall's stateful building blocks: the
// fixed-window rate limiter, the blocked identity set and the request shape
// inspector. Each is an explicit instance, constructed once and injected,
// never package-level state.
package service

import (
	"sync"
	"time"

	"github.com/maisonhub/sentinel/internal/clock"
)

// counter tracks one identity's requests in the current window.
type counter struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window request counter keyed by client identity.
// The window does not slide: the first request for an identity opens a
// window, every request inside it is counted, and the counter is recreated
// once the window elapses.
type RateLimiter struct {
	window      time.Duration
	maxRequests int
	clock       clock.Clock

	mu       sync.Mutex
	counters map[string]*counter
}

// NewRateLimiter creates a RateLimiter admitting maxRequests per window.
func NewRateLimiter(window time.Duration, maxRequests int, clk clock.Clock) *RateLimiter {
	return &RateLimiter{
		window:      window,
		maxRequests: maxRequests,
		clock:       clk,
		counters:    make(map[string]*counter),
	}
}

// Admit charges one request against the identity and reports whether it is
// within quota. The check-and-increment is a single critical section so a
// burst of concurrent callers cannot all observe an under-limit count. The
// request stays charged even when denied or later aborted.
func (l *RateLimiter) Admit(identity string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.counters[identity]
	if !ok || !now.Before(c.resetAt) {
		l.counters[identity] = &counter{count: 1, resetAt: now.Add(l.window)}
		return true
	}

	c.count++
	return c.count <= l.maxRequests
}

// Sweep deletes counters whose window has elapsed and returns how many were
// removed. Safe to run concurrently with Admit.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, c := range l.counters {
		if !now.Before(c.resetAt) {
			delete(l.counters, identity)
			removed++
		}
	}
	return removed
}
