package infra

import (
	"context"
	"sync"
	"time"
)

// RateLimiter serializes calls with a minimum inter-call spacing.
// A single pacing token exists: the next caller may proceed only
// minInterval after the previous slot. Thread-safe; each signal source
// gets its own limiter.
type RateLimiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	lastRequest time.Time
}

// NewRateLimiter creates a limiter with the given minimum spacing
// between consecutive calls.
func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		// Allow the first request immediately.
		lastRequest: time.Now().Add(-minInterval),
	}
}

// Wait blocks until the spacing from the previous slot has elapsed or
// the context is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	next := r.lastRequest.Add(r.minInterval)
	if !next.After(now) {
		r.lastRequest = now
		r.mu.Unlock()
		return nil
	}
	// Reserve the slot before sleeping so concurrent callers queue
	// behind it instead of racing for the same gap.
	r.lastRequest = next
	r.mu.Unlock()

	timer := time.NewTimer(next.Sub(now))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TryAcquire attempts to take the next slot without blocking.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if now.Sub(r.lastRequest) < r.minInterval {
		return false
	}
	r.lastRequest = now
	return true
}
