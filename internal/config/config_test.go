package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Orchestrator.MaxConcurrentPerUser)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Equal(t, 60, cfg.Circuit.TimeoutSeconds)
	assert.Equal(t, "log", cfg.Audit.Sink)
	assert.NoError(t, Validate(cfg))
}

func TestLoader_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.json")).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentcore.json")
	content := `{
		"orchestrator": {"max_concurrent_per_user": 3},
		"rate_limit": {"requests_per_minute": 20},
		"providers": [
			{"name": "anthropic", "api_key": "sk-ant-test", "model": "claude-sonnet-4-20250514"},
			{"name": "openai", "api_key": "sk-test"}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Orchestrator.MaxConcurrentPerUser)
	assert.Equal(t, 20, cfg.RateLimit.RequestsPerMinute)
	// Untouched sections keep defaults.
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "anthropic", cfg.Providers[0].Name, "provider order is trial order")
}

func TestLoader_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentcore.json")
	content := `{"rate_limit": {"requests_per_minute": -1}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewLoader(path).Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"zero concurrency", func(c *Config) { c.Orchestrator.MaxConcurrentPerUser = 0 }, "max_concurrent_per_user"},
		{"negative rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = -5 }, "requests_per_minute"},
		{"zero threshold", func(c *Config) { c.Circuit.FailureThreshold = 0 }, "failure_threshold"},
		{"zero circuit timeout", func(c *Config) { c.Circuit.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"zero cache size", func(c *Config) { c.Cache.Size = 0 }, "cache.size"},
		{"unknown provider", func(c *Config) {
			c.Providers = []ProviderConfig{{Name: "mistral", APIKey: "k"}}
		}, "not supported"},
		{"provider missing key", func(c *Config) {
			c.Providers = []ProviderConfig{{Name: "openai"}}
		}, "api_key"},
		{"unknown sink", func(c *Config) { c.Audit.Sink = "kafka" }, "audit.sink"},
		{"sqlite sink without path", func(c *Config) { c.Audit.Sink = "sqlite" }, "audit.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agentcore.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0644))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`{"rate_limit": {"requests_per_minute": 42}}`), 0644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 42, cfg.RateLimit.RequestsPerMinute)
	case <-time.After(3 * time.Second):
		t.Fatal("config reload was not triggered")
	}
}
