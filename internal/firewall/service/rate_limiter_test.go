package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/maisonhub/sentinel/internal/clock"
)

func newLimiter(maxRequests int) (*RateLimiter, *clock.Fake) {
	clk := clock.NewFake(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	return NewRateLimiter(60*time.Second, maxRequests, clk), clk
}

func TestAdmitWithinQuota(t *testing.T) {
	limiter, _ := newLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Admit("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, limiter.Admit("1.2.3.4"))
}

func TestAdmitExactQuotaBoundary(t *testing.T) {
	limiter, _ := newLimiter(100)

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Admit("1.2.3.4"), "request %d", i+1)
	}
	assert.False(t, limiter.Admit("1.2.3.4"))
	assert.False(t, limiter.Admit("1.2.3.4"))
}

func TestAdmitIsolatesIdentities(t *testing.T) {
	limiter, _ := newLimiter(1)

	assert.True(t, limiter.Admit("1.2.3.4"))
	assert.False(t, limiter.Admit("1.2.3.4"))
	assert.True(t, limiter.Admit("5.6.7.8"))
}

func TestAdmitResetsOnWindowElapse(t *testing.T) {
	limiter, clk := newLimiter(1)

	assert.True(t, limiter.Admit("1.2.3.4"))
	assert.False(t, limiter.Admit("1.2.3.4"))

	clk.Advance(60 * time.Second)
	assert.True(t, limiter.Admit("1.2.3.4"))
}

func TestAdmitDeniedRequestsStayCharged(t *testing.T) {
	limiter, clk := newLimiter(2)

	assert.True(t, limiter.Admit("1.2.3.4"))
	assert.True(t, limiter.Admit("1.2.3.4"))
	assert.False(t, limiter.Admit("1.2.3.4"))

	// Still inside the window, still denied.
	clk.Advance(30 * time.Second)
	assert.False(t, limiter.Admit("1.2.3.4"))
}

func TestSweepRemovesElapsedCounters(t *testing.T) {
	limiter, clk := newLimiter(10)

	limiter.Admit("1.2.3.4")
	clk.Advance(30 * time.Second)
	limiter.Admit("5.6.7.8")

	clk.Advance(45 * time.Second)
	removed := limiter.Sweep(clk.Now())
	assert.Equal(t, 1, removed)
}

func TestAdmitConcurrentBurst(t *testing.T) {
	limiter, _ := newLimiter(50)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Admit("1.2.3.4") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, allowed)
}
