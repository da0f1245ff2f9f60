// Package circuit implements a per-provider circuit breaker used by the
// orchestrator to exclude failing providers from selection.
package circuit

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State represents the state of a provider's circuit.
type State int

const (
	// StateClosed allows requests through.
	StateClosed State = iota
	// StateOpen blocks requests until the timeout elapses.
	StateOpen
	// StateHalfOpen allows a trial request after the timeout.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Defaults applied when New receives non-positive values.
const (
	DefaultThreshold = 5
	DefaultTimeout   = 60 * time.Second
)

type providerState struct {
	state       State
	failures    int
	lastFailure time.Time
}

// Breaker tracks failures per provider name. Unknown names start closed
// with a zero failure count.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	timeout   time.Duration
	providers map[string]*providerState
}

// New creates a breaker that opens a provider's circuit after threshold
// consecutive failures and allows a trial attempt once timeout has elapsed
// since the last recorded failure.
func New(threshold int, timeout time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Breaker{
		threshold: threshold,
		timeout:   timeout,
		providers: make(map[string]*providerState),
	}
}

func (b *Breaker) state(name string) *providerState {
	ps, ok := b.providers[name]
	if !ok {
		ps = &providerState{state: StateClosed}
		b.providers[name] = ps
	}
	return ps
}

// RecordSuccess clears the failure count and closes the circuit.
func (b *Breaker) RecordSuccess(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.state(name)
	if ps.state != StateClosed {
		log.Info().Str("provider", name).Str("from", ps.state.String()).Msg("Circuit closed after success")
	}
	ps.failures = 0
	ps.state = StateClosed
}

// RecordFailure increments the failure count and stamps the failure time.
// At or above the threshold the circuit opens.
//
// The failure count is deliberately not reset when a circuit moves to
// half-open, so a single failure during the trial attempt re-opens the
// circuit immediately.
func (b *Breaker) RecordFailure(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.state(name)
	ps.failures++
	ps.lastFailure = time.Now()

	if ps.failures >= b.threshold && ps.state != StateOpen {
		ps.state = StateOpen
		log.Warn().
			Str("provider", name).
			Int("failures", ps.failures).
			Msg("Circuit opened")
	}
}

// IsOpen reports whether attempts to the provider should be blocked. An
// open circuit whose timeout has elapsed transitions to half-open and lets
// the caller through for a trial attempt.
func (b *Breaker) IsOpen(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	ps := b.state(name)
	if ps.state != StateOpen {
		return false
	}

	if time.Since(ps.lastFailure) > b.timeout {
		ps.state = StateHalfOpen
		log.Info().Str("provider", name).Msg("Circuit half-open, allowing trial attempt")
		return false
	}

	return true
}

// State returns the current circuit state for the provider.
func (b *Breaker) State(name string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state(name).state
}

// Failures returns the current failure count for the provider.
func (b *Breaker) Failures(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state(name).failures
}
