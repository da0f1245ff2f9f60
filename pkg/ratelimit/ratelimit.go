// Package ratelimit implements per-user sliding window admission control.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRequestsPerMinute is the per-user cap applied when no explicit
// limit is configured.
const DefaultRequestsPerMinute = 10

// window is the sliding window horizon.
const window = time.Minute

// pollInterval is how long WaitForSlot sleeps between admission checks.
// Variable so tests can shorten it.
var pollInterval = time.Second

// Limiter tracks request timestamps per user over a sliding window.
type Limiter struct {
	mu           sync.Mutex
	maxPerMinute int
	requests     map[string][]time.Time
}

// New creates a limiter allowing maxPerMinute requests per user. A
// non-positive value falls back to DefaultRequestsPerMinute.
func New(maxPerMinute int) *Limiter {
	if maxPerMinute <= 0 {
		maxPerMinute = DefaultRequestsPerMinute
	}
	return &Limiter{
		maxPerMinute: maxPerMinute,
		requests:     make(map[string][]time.Time),
	}
}

// CheckLimit prunes expired timestamps for the user and, if the window has
// room, records the current request and admits it.
func (l *Limiter) CheckLimit(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-window)

	valid := l.requests[userID][:0]
	for _, ts := range l.requests[userID] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= l.maxPerMinute {
		l.requests[userID] = valid
		return false
	}

	l.requests[userID] = append(valid, now)
	return true
}

// WaitForSlot blocks until CheckLimit admits the user or the context is
// cancelled. This is a poll-and-sleep loop, not a fair queue: under
// sustained overload late arrivals can starve.
func (l *Limiter) WaitForSlot(ctx context.Context, userID string) error {
	for {
		if l.CheckLimit(userID) {
			return nil
		}

		log.Debug().Str("user_id", userID).Msg("Rate limit reached, waiting for slot")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Count returns the number of requests currently inside the user's window.
func (l *Limiter) Count(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-window)
	n := 0
	for _, ts := range l.requests[userID] {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}
