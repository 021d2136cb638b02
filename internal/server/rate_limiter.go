package server

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window counter keyed by API key or client IP. State
// is in-process; multi-replica deployments get a per-replica budget.
type rateLimiter struct {
	limit     int
	window    time.Duration
	mu        sync.Mutex
	items     map[string]*rateLimitEntry
	lastPrune time.Time
}

type rateLimitEntry struct {
	windowStart time.Time
	count       int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:  limit,
		window: window,
		items:  make(map[string]*rateLimitEntry),
	}
}

// Allow reports whether the key may proceed. When denied, the second return
// is how long until the key's window resets, for the Retry-After header.
func (r *rateLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		return false, r.window
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pruneLocked(now)

	entry := r.items[key]
	if entry == nil || now.Sub(entry.windowStart) > r.window {
		entry = &rateLimitEntry{windowStart: now}
		r.items[key] = entry
	}

	if entry.count >= r.limit {
		return false, r.window - now.Sub(entry.windowStart)
	}

	entry.count++
	return true, 0
}

// pruneLocked drops expired windows at most once per window so the map does
// not grow with every key ever seen.
func (r *rateLimiter) pruneLocked(now time.Time) {
	if now.Sub(r.lastPrune) < r.window {
		return
	}
	r.lastPrune = now
	for key, entry := range r.items {
		if now.Sub(entry.windowStart) > r.window {
			delete(r.items, key)
		}
	}
}
