// Package config loads and validates the orchestration layer's
// configuration.
package config

// Config is the root configuration.
type Config struct {
	Orchestrator OrchestratorConfig `json:"orchestrator" mapstructure:"orchestrator"`
	RateLimit    RateLimitConfig    `json:"rate_limit" mapstructure:"rate_limit"`
	Circuit      CircuitConfig      `json:"circuit" mapstructure:"circuit"`
	Cache        CacheConfig        `json:"cache" mapstructure:"cache"`
	Providers    []ProviderConfig   `json:"providers" mapstructure:"providers"`
	Audit        AuditConfig        `json:"audit" mapstructure:"audit"`
	Logging      LoggingConfig      `json:"logging" mapstructure:"logging"`
}

// OrchestratorConfig bounds dispatch behavior.
type OrchestratorConfig struct {
	MaxConcurrentPerUser int `json:"max_concurrent_per_user" mapstructure:"max_concurrent_per_user"`
}

// RateLimitConfig bounds per-user admission.
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// CircuitConfig tunes the per-provider circuit breaker.
type CircuitConfig struct {
	FailureThreshold int `json:"failure_threshold" mapstructure:"failure_threshold"`
	TimeoutSeconds   int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

// CacheConfig tunes the shared result cache.
type CacheConfig struct {
	Size          int    `json:"size" mapstructure:"size"`
	TTLSeconds    int    `json:"ttl_seconds" mapstructure:"ttl_seconds"`
	PruneSchedule string `json:"prune_schedule" mapstructure:"prune_schedule"`
}

// ProviderConfig declares one AI provider. List order is trial order.
type ProviderConfig struct {
	Name   string `json:"name" mapstructure:"name"` // openai, anthropic
	APIKey string `json:"api_key" mapstructure:"api_key"`
	Model  string `json:"model" mapstructure:"model"`
}

// AuditConfig selects the audit sink.
type AuditConfig struct {
	Sink          string `json:"sink" mapstructure:"sink"` // log, sqlite
	Path          string `json:"path" mapstructure:"path"`
	RetentionDays int    `json:"retention_days" mapstructure:"retention_days"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Orchestrator: OrchestratorConfig{
			MaxConcurrentPerUser: 5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 10,
		},
		Circuit: CircuitConfig{
			FailureThreshold: 5,
			TimeoutSeconds:   60,
		},
		Cache: CacheConfig{
			Size:          512,
			TTLSeconds:    300,
			PruneSchedule: "@every 1m",
		},
		Audit: AuditConfig{
			Sink:          "log",
			RetentionDays: 90,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
	}
}
