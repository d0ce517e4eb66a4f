// Package ratelimit implements the contact form's fixed-window counter.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is the capability interface handlers depend on, so the in-memory
// counter can later be swapped for a shared store with TTLs.
type Limiter interface {
	Allow(key string) bool
}

type window struct {
	count     int
	resetTime time.Time
}

// FixedWindow counts requests per key within a reset-bounded window.
// Windows reset lazily on the next request after expiry; no background
// sweep runs, so stale entries persist until process restart.
type FixedWindow struct {
	mu       sync.Mutex
	entries  map[string]*window
	limit    int
	duration time.Duration
	now      func() time.Time
}

// NewFixedWindow creates a limiter allowing limit requests per duration
// per key
func NewFixedWindow(limit int, duration time.Duration) *FixedWindow {
	return &FixedWindow{
		entries:  make(map[string]*window),
		limit:    limit,
		duration: duration,
		now:      time.Now,
	}
}

// Allow reports whether the key may proceed, counting this request.
// The first request in a window initializes the counter; once the limit is
// reached further requests are rejected until the window expires.
func (fw *FixedWindow) Allow(key string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()
	w, ok := fw.entries[key]
	if !ok || now.After(w.resetTime) {
		fw.entries[key] = &window{count: 1, resetTime: now.Add(fw.duration)}
		return true
	}

	if w.count >= fw.limit {
		return false
	}

	w.count++
	return true
}
