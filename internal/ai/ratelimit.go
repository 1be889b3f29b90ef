package ai

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window admission check over outbound
// completion calls. All sessions share one upstream credential and one
// rate budget, so the window is a single shared structure guarded by a
// mutex. Timestamps older than the window are pruned lazily on every
// admission check.
type RateLimiter struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      int
	window     time.Duration
	now        func() time.Time
}

// NewRateLimiter creates a rate limiter admitting at most limit calls
// per sliding window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether one more upstream call may be made now. On
// admission the current time is recorded against the window; a rejected
// call is not recorded.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	i := 0
	for i < len(r.timestamps) && !r.timestamps[i].After(cutoff) {
		i++
	}
	r.timestamps = r.timestamps[i:]

	if len(r.timestamps) >= r.limit {
		return false
	}

	r.timestamps = append(r.timestamps, now)
	return true
}
