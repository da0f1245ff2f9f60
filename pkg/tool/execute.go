package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/klarsikt/agentcore/pkg/audit"
	"github.com/klarsikt/agentcore/pkg/provider"
)

// Execute runs the tool pipeline: schema validation, security hook,
// confirmation gate, run hook, audit. Exactly one audit entry is written
// per call regardless of outcome.
//
// Execute resolves every tool-level failure into a Result with Success
// false and a nil error. A non-nil error is returned only for provider
// infrastructure failures surfaced by the run hook (so the orchestrator can
// fail over to the next provider) and for audit sink failures.
func (t *Tool) Execute(ctx context.Context, params map[string]interface{}, tc *Context) (Result, error) {
	start := time.Now()
	toolID := uuid.NewString()

	fail := func(msg string) (Result, error) {
		res := Result{
			Success:   false,
			Error:     msg,
			Duration:  time.Since(start),
			ToolID:    toolID,
			Timestamp: time.Now(),
		}
		if err := t.recordAudit(ctx, tc, params, res); err != nil {
			return Result{}, err
		}
		return res, nil
	}

	if err := t.validateParams(params); err != nil {
		log.Warn().Str("tool", t.def.Name).Err(err).Msg("Parameter validation failed")
		return fail(fmt.Sprintf("parameter validation failed: %v", err))
	}

	if t.def.ValidateSecurity != nil {
		if err := t.def.ValidateSecurity(params, tc); err != nil {
			log.Warn().Str("tool", t.def.Name).Str("user_id", tc.UserID).Err(err).Msg("Security validation failed")
			return fail(fmt.Sprintf("security validation failed: %v", err))
		}
	}

	if t.def.RequiresConfirmation {
		if tc.Confirm == nil {
			return fail("proposal rejected: no confirmation handler configured")
		}
		prop := t.proposal(params)
		log.Info().Str("tool", t.def.Name).Str("proposal_id", prop.ID).Msg("Requesting confirmation")

		approved, err := tc.Confirm(ctx, prop)
		if err != nil {
			return fail(fmt.Sprintf("proposal rejected: confirmation failed: %v", err))
		}
		if !approved {
			log.Info().Str("tool", t.def.Name).Str("proposal_id", prop.ID).Msg("Proposal rejected by user")
			return fail("proposal rejected by user")
		}
	}

	output, err := t.def.Run(ctx, params, tc)
	if err != nil {
		if provider.IsProviderError(err) {
			res := Result{
				Success:   false,
				Error:     err.Error(),
				Duration:  time.Since(start),
				ToolID:    toolID,
				Timestamp: time.Now(),
			}
			if aerr := t.recordAudit(ctx, tc, params, res); aerr != nil {
				return Result{}, aerr
			}
			return Result{}, err
		}
		log.Error().Str("tool", t.def.Name).Err(err).Msg("Tool execution failed")
		return fail(err.Error())
	}

	res := Result{
		Success:   true,
		Data:      output,
		Duration:  time.Since(start),
		ToolID:    toolID,
		Timestamp: time.Now(),
	}
	if err := t.recordAudit(ctx, tc, params, res); err != nil {
		return Result{}, err
	}

	log.Debug().
		Str("tool", t.def.Name).
		Str("provider", tc.ProviderName).
		Dur("duration", res.Duration).
		Msg("Tool execution completed")

	return res, nil
}

func (t *Tool) recordAudit(ctx context.Context, tc *Context, params map[string]interface{}, res Result) error {
	if tc.Audit == nil {
		return nil
	}
	entry := audit.Entry{
		ToolID:    res.ToolID,
		Tool:      t.def.Name,
		Params:    params,
		Result:    res.Data,
		Error:     res.Error,
		Duration:  res.Duration,
		UserID:    tc.UserID,
		Timestamp: res.Timestamp,
	}
	if err := tc.Audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("audit sink failed: %w", err)
	}
	return nil
}
