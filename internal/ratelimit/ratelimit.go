// Package ratelimit provides a per-caller request limiter. The in-memory
// implementation is process-local and best-effort; the Limiter interface
// leaves room for a distributed backend without touching call sites.
package ratelimit

import (
	"sync"
	"time"
)

// Decision is the outcome of a limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a keyed caller may proceed.
type Limiter interface {
	Allow(key string) Decision
}

type windowEntry struct {
	count       int
	windowStart time.Time
}

// FixedWindow is an in-memory fixed-window limiter. Counters reset at
// window boundaries; stale entries are evicted opportunistically on access.
type FixedWindow struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	limit  int
	window time.Duration
	now    func() time.Time

	lastSweep time.Time
}

// NewFixedWindow creates a limiter allowing limit requests per window per key.
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		entries: make(map[string]*windowEntry),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow records one request attempt for key and reports whether it is within
// the current window's budget.
func (f *FixedWindow) Allow(key string) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.maybeSweep(now)

	entry, ok := f.entries[key]
	if !ok || now.Sub(entry.windowStart) >= f.window {
		entry = &windowEntry{windowStart: now}
		f.entries[key] = entry
	}

	if entry.count >= f.limit {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			RetryAfter: entry.windowStart.Add(f.window).Sub(now),
		}
	}

	entry.count++
	return Decision{
		Allowed:   true,
		Remaining: f.limit - entry.count,
	}
}

// maybeSweep drops entries whose window has fully expired. Runs at most once
// per window so hot paths stay cheap. Caller must hold mu.
func (f *FixedWindow) maybeSweep(now time.Time) {
	if now.Sub(f.lastSweep) < f.window {
		return
	}
	f.lastSweep = now
	for key, entry := range f.entries {
		if now.Sub(entry.windowStart) >= f.window {
			delete(f.entries, key)
		}
	}
}
