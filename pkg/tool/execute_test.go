package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klarsikt/agentcore/pkg/audit"
	"github.com/klarsikt/agentcore/pkg/provider"
)

type failingSink struct{}

func (failingSink) Record(ctx context.Context, entry audit.Entry) error {
	return errors.New("disk full")
}

func echoDefinition() Definition {
	return Definition{
		Name:        "echo",
		Description: "Echoes the message back",
		Parameters: []Parameter{
			{Name: "message", Type: "string", Description: "Message to echo", Required: true},
		},
		Run: func(ctx context.Context, params map[string]interface{}, tc *Context) (interface{}, error) {
			return params["message"], nil
		},
	}
}

func TestNew_InvalidDefinitions(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty name", Definition{Description: "d", Run: func(ctx context.Context, p map[string]interface{}, tc *Context) (interface{}, error) { return nil, nil }}},
		{"empty description", Definition{Name: "t", Run: func(ctx context.Context, p map[string]interface{}, tc *Context) (interface{}, error) { return nil, nil }}},
		{"nil run hook", Definition{Name: "t", Description: "d"}},
		{"bad parameter type", Definition{
			Name: "t", Description: "d",
			Parameters: []Parameter{{Name: "x", Type: "decimal"}},
			Run:        func(ctx context.Context, p map[string]interface{}, tc *Context) (interface{}, error) { return nil, nil },
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			assert.Error(t, err)
		})
	}
}

func TestExecute_Success(t *testing.T) {
	tl, err := New(echoDefinition())
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	tc := &Context{UserID: "alice", ProviderName: "local", Audit: sink}

	res, err := tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, tc)
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, "hej", res.Data)
	assert.NotEmpty(t, res.ToolID)
	assert.GreaterOrEqual(t, res.Duration, int64(0))

	entries := sink.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "echo", entries[0].Tool)
	assert.Equal(t, "alice", entries[0].UserID)
	assert.Equal(t, res.ToolID, entries[0].ToolID)
}

func TestExecute_SchemaValidationFailure(t *testing.T) {
	tl, err := New(echoDefinition())
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	tc := &Context{UserID: "alice", Audit: sink}

	res, err := tl.Execute(context.Background(), map[string]interface{}{}, tc)
	require.NoError(t, err, "validation failures must resolve, not error")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "validation")
	assert.NotEmpty(t, res.ToolID)
	assert.Len(t, sink.Entries(), 1, "failed validation is still audited")
}

func TestExecute_RejectsUndeclaredParams(t *testing.T) {
	tl, err := New(echoDefinition())
	require.NoError(t, err)

	res, err := tl.Execute(context.Background(), map[string]interface{}{
		"message": "hej",
		"extra":   true,
	}, &Context{UserID: "alice"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestExecute_SecurityHookFailure(t *testing.T) {
	def := echoDefinition()
	def.ValidateSecurity = func(params map[string]interface{}, tc *Context) error {
		return errors.New("query is not read-only")
	}
	tl, err := New(def)
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	res, err := tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, &Context{UserID: "alice", Audit: sink})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "security validation failed")
	assert.Len(t, sink.Entries(), 1)
}

func TestExecute_ConfirmationRejected(t *testing.T) {
	// End-to-end: one confirmation-gated tool with a numeric parameter,
	// handler declines, result fails with "rejected" and exactly one
	// audit entry exists.
	var seen Proposal
	def := Definition{
		Name:        "adjust_forecast",
		Description: "Adjusts a forecast value",
		Parameters: []Parameter{
			{Name: "value", Type: "number", Description: "New value", Required: true},
		},
		RequiresConfirmation: true,
		Run: func(ctx context.Context, params map[string]interface{}, tc *Context) (interface{}, error) {
			t.Fatal("run hook must not execute after rejection")
			return nil, nil
		},
	}
	tl, err := New(def)
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	tc := &Context{
		UserID: "alice",
		Audit:  sink,
		Confirm: func(ctx context.Context, p Proposal) (bool, error) {
			seen = p
			return false, nil
		},
	}

	res, err := tl.Execute(context.Background(), map[string]interface{}{"value": 5}, tc)
	require.NoError(t, err, "rejection must resolve, not error")

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "rejected")
	assert.Len(t, sink.Entries(), 1)

	assert.NotEmpty(t, seen.ID)
	assert.Equal(t, "adjust_forecast", seen.Tool)
	assert.Equal(t, "this action will modify data", seen.Impact)
	assert.InDelta(t, 0.8, seen.Confidence, 0.0001)
}

func TestExecute_ConfirmationApproved(t *testing.T) {
	def := echoDefinition()
	def.RequiresConfirmation = true
	tl, err := New(def)
	require.NoError(t, err)

	tc := &Context{
		UserID:  "alice",
		Confirm: func(ctx context.Context, p Proposal) (bool, error) { return true, nil },
	}

	res, err := tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, tc)
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestExecute_NoConfirmationHandler(t *testing.T) {
	def := echoDefinition()
	def.RequiresConfirmation = true
	tl, err := New(def)
	require.NoError(t, err)

	res, err := tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, &Context{UserID: "alice"})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "rejected")
}

func TestExecute_CustomProposal(t *testing.T) {
	def := echoDefinition()
	def.RequiresConfirmation = true
	def.BuildProposal = func(params map[string]interface{}) Proposal {
		return Proposal{
			Tool:       "echo",
			Action:     "echo_message",
			Impact:     "repeats the message",
			Confidence: 0.95,
		}
	}
	tl, err := New(def)
	require.NoError(t, err)

	var seen Proposal
	tc := &Context{
		UserID: "alice",
		Confirm: func(ctx context.Context, p Proposal) (bool, error) {
			seen = p
			return true, nil
		},
	}

	_, err = tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, tc)
	require.NoError(t, err)

	assert.Equal(t, "echo_message", seen.Action)
	assert.NotEmpty(t, seen.ID, "missing proposal IDs are filled in")
	assert.InDelta(t, 0.95, seen.Confidence, 0.0001)
}

func TestExecute_BusinessErrorResolves(t *testing.T) {
	def := echoDefinition()
	def.Run = func(ctx context.Context, params map[string]interface{}, tc *Context) (interface{}, error) {
		return nil, errors.New("insight not found")
	}
	tl, err := New(def)
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	res, err := tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, &Context{UserID: "alice", Audit: sink})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, "insight not found", res.Error)
	assert.Len(t, sink.Entries(), 1)
}

func TestExecute_ProviderErrorPropagates(t *testing.T) {
	def := echoDefinition()
	def.Run = func(ctx context.Context, params map[string]interface{}, tc *Context) (interface{}, error) {
		return nil, provider.NewError("openai", errors.New("connection reset"))
	}
	tl, err := New(def)
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	_, err = tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, &Context{UserID: "alice", Audit: sink})

	require.Error(t, err, "infrastructure failures must propagate for failover")
	assert.True(t, provider.IsProviderError(err))
	assert.Len(t, sink.Entries(), 1, "infrastructure failures are still audited")
}

func TestExecute_AuditSinkFailureLeaks(t *testing.T) {
	tl, err := New(echoDefinition())
	require.NoError(t, err)

	_, err = tl.Execute(context.Background(), map[string]interface{}{"message": "hej"}, &Context{UserID: "alice", Audit: failingSink{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit sink failed")
}

func TestExecute_AuditEntryPerOutcome(t *testing.T) {
	// Every pipeline stage failure still produces exactly one entry with
	// a non-empty tool ID.
	def := echoDefinition()
	def.ValidateSecurity = func(params map[string]interface{}, tc *Context) error {
		if params["message"] == "blocked" {
			return errors.New("blocked")
		}
		return nil
	}
	tl, err := New(def)
	require.NoError(t, err)

	sink := &audit.MemorySink{}
	tc := &Context{UserID: "alice", Audit: sink}
	ctx := context.Background()

	_, _ = tl.Execute(ctx, map[string]interface{}{}, tc)                       // schema failure
	_, _ = tl.Execute(ctx, map[string]interface{}{"message": "blocked"}, tc)   // security failure
	_, _ = tl.Execute(ctx, map[string]interface{}{"message": "hej"}, tc)       // success

	entries := sink.Entries()
	require.Len(t, entries, 3)
	for _, e := range entries {
		assert.NotEmpty(t, e.ToolID)
		assert.GreaterOrEqual(t, e.Duration, int64(0))
	}
}
