// Package orchestrator dispatches tool executions across interchangeable
// AI providers with per-user admission control, circuit breaking and
// provider failover.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/klarsikt/agentcore/internal/metrics"
	"github.com/klarsikt/agentcore/pkg/audit"
	"github.com/klarsikt/agentcore/pkg/cache"
	"github.com/klarsikt/agentcore/pkg/circuit"
	"github.com/klarsikt/agentcore/pkg/provider"
	"github.com/klarsikt/agentcore/pkg/ratelimit"
	"github.com/klarsikt/agentcore/pkg/tool"
)

// DefaultMaxConcurrentPerUser caps simultaneous executions per user.
const DefaultMaxConcurrentPerUser = 5

// Orchestration-level errors. These are returned as errors, unlike
// tool-level failures which resolve into a tool.Result.
var (
	ErrUnknownTool        = errors.New("unknown tool")
	ErrConcurrencyLimit   = errors.New("concurrency limit exceeded")
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// ProviderErrorListener is notified whenever a provider call fails with an
// infrastructure error.
type ProviderErrorListener func(providerName string, err error)

// ToolInfo is the read-only registry view exposed for UI tool pickers.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Options configures an Orchestrator. Zero values get defaults.
type Options struct {
	// MaxConcurrentPerUser caps in-flight ExecuteTool calls per user.
	MaxConcurrentPerUser int

	// Limiter is the shared per-user rate limiter.
	Limiter *ratelimit.Limiter

	// Breaker tracks provider health.
	Breaker *circuit.Breaker

	// Cache is shared across all tool invocations.
	Cache *cache.Cache

	// Audit receives one entry per execution attempt.
	Audit audit.Sink

	// Confirm presents proposals for confirmation-gated tools.
	Confirm tool.ConfirmFunc

	// Metrics is optional instrumentation.
	Metrics *metrics.Metrics
}

// Orchestrator holds the tool registry and the ordered provider list, and
// composes rate limiting, concurrency capping, circuit breaking and
// provider failover around tool execution.
type Orchestrator struct {
	mu        sync.RWMutex
	tools     map[string]*tool.Tool
	providers []provider.Provider
	listeners []ProviderErrorListener

	limiter       *ratelimit.Limiter
	breaker       *circuit.Breaker
	cache         *cache.Cache
	auditSink     audit.Sink
	confirm       tool.ConfirmFunc
	metrics       *metrics.Metrics
	maxConcurrent int

	inflightMu sync.Mutex
	inflight   map[string]int
}

// New creates an orchestrator. Nil limiter and breaker get defaults.
func New(opts Options) *Orchestrator {
	if opts.MaxConcurrentPerUser <= 0 {
		opts.MaxConcurrentPerUser = DefaultMaxConcurrentPerUser
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(ratelimit.DefaultRequestsPerMinute)
	}
	if opts.Breaker == nil {
		opts.Breaker = circuit.New(circuit.DefaultThreshold, circuit.DefaultTimeout)
	}
	return &Orchestrator{
		tools:         make(map[string]*tool.Tool),
		limiter:       opts.Limiter,
		breaker:       opts.Breaker,
		cache:         opts.Cache,
		auditSink:     opts.Audit,
		confirm:       opts.Confirm,
		metrics:       opts.Metrics,
		maxConcurrent: opts.MaxConcurrentPerUser,
		inflight:      make(map[string]int),
	}
}

// RegisterTool compiles the definition and stores it in the registry.
// Registering a name twice replaces the earlier tool.
func (o *Orchestrator) RegisterTool(def tool.Definition) error {
	t, err := tool.New(def)
	if err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.tools[def.Name]; exists {
		log.Warn().Str("tool", def.Name).Msg("Tool re-registered, replacing earlier definition")
	}
	o.tools[def.Name] = t

	log.Info().Str("tool", def.Name).Msg("Tool registered")
	return nil
}

// RegisterProvider appends the provider to the trial order. Providers are
// always tried in registration order; re-registering a name replaces the
// provider in place without changing its position.
func (o *Orchestrator) RegisterProvider(p provider.Provider) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, existing := range o.providers {
		if existing.Name() == p.Name() {
			o.providers[i] = p
			log.Warn().Str("provider", p.Name()).Msg("Provider re-registered, replacing in place")
			return
		}
	}

	o.providers = append(o.providers, p)
	log.Info().Str("provider", p.Name()).Int("priority", len(o.providers)).Msg("Provider registered")
}

// OnProviderError adds a listener invoked whenever a provider call fails
// with an infrastructure error.
func (o *Orchestrator) OnProviderError(l ProviderErrorListener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.listeners = append(o.listeners, l)
}

// GetAvailableTools returns the registered tools, sorted by name.
func (o *Orchestrator) GetAvailableTools() []ToolInfo {
	o.mu.RLock()
	defer o.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(o.tools))
	for _, t := range o.tools {
		infos = append(infos, ToolInfo{Name: t.Name(), Description: t.Description()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// ExecuteTool dispatches one tool execution for the user.
//
// Admission: the call blocks on the rate limiter until the sliding window
// admits the user, then the per-user concurrency cap is checked and a call
// at the cap is rejected immediately with ErrConcurrencyLimit.
//
// Dispatch: providers are tried strictly in registration order, skipping
// any whose circuit is open. A resolved result, successful or not, is
// returned immediately: tool-level failures do not drive provider failover
// and are never audited twice. Only a provider infrastructure error
// records a circuit failure and advances to the next provider. Exhausting
// the provider list returns ErrAllProvidersFailed.
func (o *Orchestrator) ExecuteTool(ctx context.Context, name string, params map[string]interface{}, userID, language string) (tool.Result, error) {
	o.mu.RLock()
	t := o.tools[name]
	providers := make([]provider.Provider, len(o.providers))
	copy(providers, o.providers)
	o.mu.RUnlock()

	if t == nil {
		return tool.Result{}, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err := o.limiter.WaitForSlot(ctx, userID); err != nil {
		return tool.Result{}, fmt.Errorf("rate limit wait aborted: %w", err)
	}
	if o.metrics != nil {
		o.metrics.RateLimitWaitsTotal.Inc()
	}

	if err := o.acquireSlot(userID); err != nil {
		return tool.Result{}, err
	}
	defer o.releaseSlot(userID)

	var lastErr error
	for _, p := range providers {
		if o.breaker.IsOpen(p.Name()) {
			log.Debug().Str("provider", p.Name()).Str("tool", name).Msg("Skipping provider with open circuit")
			continue
		}

		tc := &tool.Context{
			UserID:       userID,
			Language:     language,
			ProviderName: p.Name(),
			Provider:     p,
			Confirm:      o.confirm,
			Audit:        o.auditSink,
			Cache:        o.cache,
			Limiter:      o.limiter,
		}

		res, err := t.Execute(ctx, params, tc)
		if err != nil {
			if provider.IsProviderError(err) {
				o.breaker.RecordFailure(p.Name())
				o.notifyProviderError(p.Name(), err)
				o.observeFailure(name, p.Name())
				log.Warn().Str("provider", p.Name()).Str("tool", name).Err(err).Msg("Provider failed, trying next")
				lastErr = err
				continue
			}
			// Plumbing fault (for example the audit sink), not a
			// provider problem.
			return tool.Result{}, err
		}

		if res.Success {
			o.breaker.RecordSuccess(p.Name())
		}
		o.observeResult(name, res)
		return res, nil
	}

	if lastErr != nil {
		return tool.Result{}, fmt.Errorf("%w for tool %s: %v", ErrAllProvidersFailed, name, lastErr)
	}
	return tool.Result{}, fmt.Errorf("%w for tool %s: no provider available", ErrAllProvidersFailed, name)
}

func (o *Orchestrator) acquireSlot(userID string) error {
	o.inflightMu.Lock()
	defer o.inflightMu.Unlock()

	if o.inflight[userID] >= o.maxConcurrent {
		if o.metrics != nil {
			o.metrics.ConcurrencyRejectsTotal.Inc()
		}
		return fmt.Errorf("%w: user %s has %d in-flight executions", ErrConcurrencyLimit, userID, o.inflight[userID])
	}
	o.inflight[userID]++
	return nil
}

func (o *Orchestrator) releaseSlot(userID string) {
	o.inflightMu.Lock()
	defer o.inflightMu.Unlock()

	o.inflight[userID]--
	if o.inflight[userID] <= 0 {
		delete(o.inflight, userID)
	}
}

func (o *Orchestrator) notifyProviderError(providerName string, err error) {
	o.mu.RLock()
	listeners := make([]ProviderErrorListener, len(o.listeners))
	copy(listeners, o.listeners)
	o.mu.RUnlock()

	for _, l := range listeners {
		l(providerName, err)
	}
}

func (o *Orchestrator) observeResult(toolName string, res tool.Result) {
	if o.metrics == nil {
		return
	}
	status := "failure"
	if res.Success {
		status = "success"
	}
	o.metrics.ToolExecutionsTotal.WithLabelValues(toolName, status).Inc()
	o.metrics.ToolExecutionDuration.WithLabelValues(toolName).Observe(res.Duration.Seconds())
}

func (o *Orchestrator) observeFailure(toolName, providerName string) {
	if o.metrics == nil {
		return
	}
	o.metrics.ProviderFailuresTotal.WithLabelValues(providerName).Inc()
	o.metrics.CircuitState.WithLabelValues(providerName).Set(float64(o.breaker.State(providerName)))
}
