package tool

import (
	"context"

	"github.com/klarsikt/agentcore/pkg/audit"
	"github.com/klarsikt/agentcore/pkg/cache"
	"github.com/klarsikt/agentcore/pkg/provider"
	"github.com/klarsikt/agentcore/pkg/ratelimit"
)

// ConfirmFunc presents a proposal to a human and returns their decision.
// It may block for as long as the context allows.
type ConfirmFunc func(ctx context.Context, p Proposal) (bool, error)

// Context is the capability bundle handed to a single tool execution. The
// orchestrator builds a fresh Context for every provider attempt.
type Context struct {
	UserID       string
	Language     string
	ProviderName string

	// Provider is the backend selected for this attempt.
	Provider provider.Provider

	// Confirm presents proposals for tools requiring confirmation. When
	// nil, executions requiring confirmation are rejected.
	Confirm ConfirmFunc

	// Audit receives exactly one entry per execution attempt. When nil,
	// auditing is skipped.
	Audit audit.Sink

	// Cache is shared across all invocations and users.
	Cache *cache.Cache

	// Limiter is the shared rate limiter, exposed so tools can apply
	// their own admission control on nested work.
	Limiter *ratelimit.Limiter
}
