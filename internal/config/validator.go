package config

import "fmt"

var validProviderNames = map[string]bool{
	"openai":    true,
	"anthropic": true,
}

var validAuditSinks = map[string]bool{
	"log":    true,
	"sqlite": true,
}

// Validate checks the configuration for values the orchestrator cannot
// operate with.
func Validate(cfg *Config) error {
	if cfg.Orchestrator.MaxConcurrentPerUser <= 0 {
		return fmt.Errorf("orchestrator.max_concurrent_per_user must be positive")
	}
	if cfg.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.requests_per_minute must be positive")
	}
	if cfg.Circuit.FailureThreshold <= 0 {
		return fmt.Errorf("circuit.failure_threshold must be positive")
	}
	if cfg.Circuit.TimeoutSeconds <= 0 {
		return fmt.Errorf("circuit.timeout_seconds must be positive")
	}
	if cfg.Cache.Size <= 0 {
		return fmt.Errorf("cache.size must be positive")
	}
	if cfg.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be positive")
	}

	for i, p := range cfg.Providers {
		if !validProviderNames[p.Name] {
			return fmt.Errorf("providers[%d].name %q is not supported", i, p.Name)
		}
		if p.APIKey == "" {
			return fmt.Errorf("providers[%d] (%s) is missing an api_key", i, p.Name)
		}
	}

	if !validAuditSinks[cfg.Audit.Sink] {
		return fmt.Errorf("audit.sink %q is not supported", cfg.Audit.Sink)
	}
	if cfg.Audit.Sink == "sqlite" && cfg.Audit.Path == "" {
		return fmt.Errorf("audit.path is required for the sqlite sink")
	}

	return nil
}
