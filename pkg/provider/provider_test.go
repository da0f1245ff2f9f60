package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_WrapsAndUnwraps(t *testing.T) {
	inner := errors.New("connection refused")
	err := NewError("openai", inner)

	assert.Contains(t, err.Error(), "openai")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)
}

func TestIsProviderError(t *testing.T) {
	inner := errors.New("timeout")

	assert.True(t, IsProviderError(NewError("anthropic", inner)))
	assert.True(t, IsProviderError(fmt.Errorf("attempt failed: %w", NewError("anthropic", inner))))
	assert.False(t, IsProviderError(inner))
	assert.False(t, IsProviderError(nil))
}

func TestStaticProvider_Response(t *testing.T) {
	p := &StaticProvider{ProviderName: "local", Response: "ok"}

	assert.Equal(t, "local", p.Name())
	assert.True(t, p.IsAvailable(context.Background()))

	result, err := p.Execute(context.Background(), "prompt", nil)
	assert.NoError(t, err)
	assert.Equal(t, "ok", result)
}

func TestStaticProvider_Error(t *testing.T) {
	p := &StaticProvider{ProviderName: "local", Err: errors.New("boom")}

	_, err := p.Execute(context.Background(), "prompt", nil)
	assert.Error(t, err)
	assert.True(t, IsProviderError(err))
}

func TestStaticProvider_Unavailable(t *testing.T) {
	p := &StaticProvider{ProviderName: "local", Unavailable: true}
	assert.False(t, p.IsAvailable(context.Background()))
}

func TestOpenAIProvider_Availability(t *testing.T) {
	assert.False(t, NewOpenAIProvider("", "").IsAvailable(context.Background()))
	assert.True(t, NewOpenAIProvider("sk-test", "").IsAvailable(context.Background()))
	assert.Equal(t, "openai", NewOpenAIProvider("sk-test", "").Name())
}

func TestAnthropicProvider_Availability(t *testing.T) {
	assert.False(t, NewAnthropicProvider("", "").IsAvailable(context.Background()))
	assert.True(t, NewAnthropicProvider("sk-ant-test", "").IsAvailable(context.Background()))
	assert.Equal(t, "anthropic", NewAnthropicProvider("sk-ant-test", "").Name())
}
