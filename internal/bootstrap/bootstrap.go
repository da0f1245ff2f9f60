// Package bootstrap assembles the orchestration layer from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/klarsikt/agentcore/internal/config"
	"github.com/klarsikt/agentcore/internal/logger"
	"github.com/klarsikt/agentcore/internal/metrics"
	"github.com/klarsikt/agentcore/pkg/audit"
	"github.com/klarsikt/agentcore/pkg/cache"
	"github.com/klarsikt/agentcore/pkg/circuit"
	"github.com/klarsikt/agentcore/pkg/orchestrator"
	"github.com/klarsikt/agentcore/pkg/provider"
	"github.com/klarsikt/agentcore/pkg/ratelimit"
	"github.com/klarsikt/agentcore/pkg/tool"
)

// Runtime bundles the assembled components and their lifecycle.
type Runtime struct {
	Orchestrator *orchestrator.Orchestrator
	Metrics      *metrics.Metrics
	Cache        *cache.Cache

	log        *logger.Logger
	janitor    *cache.Janitor
	sweeper    *cron.Cron
	auditClose func() error
}

// Build assembles a Runtime from the configuration. The confirm function
// is supplied by the embedding application (chat UI, CLI prompt); a nil
// confirm rejects every confirmation-gated execution.
func Build(cfg *config.Config, confirm tool.ConfirmFunc) (*Runtime, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	lg, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	c, err := cache.New(cfg.Cache.Size, time.Duration(cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	janitor := cache.NewJanitor(c, cfg.Cache.PruneSchedule)
	if err := janitor.Start(); err != nil {
		return nil, fmt.Errorf("failed to start cache janitor: %w", err)
	}

	rt := &Runtime{Cache: c, log: lg, janitor: janitor}

	sink, err := rt.buildAuditSink(cfg.Audit)
	if err != nil {
		janitor.Stop()
		return nil, err
	}

	m := metrics.New()

	orch := orchestrator.New(orchestrator.Options{
		MaxConcurrentPerUser: cfg.Orchestrator.MaxConcurrentPerUser,
		Limiter:              ratelimit.New(cfg.RateLimit.RequestsPerMinute),
		Breaker: circuit.New(
			cfg.Circuit.FailureThreshold,
			time.Duration(cfg.Circuit.TimeoutSeconds)*time.Second,
		),
		Cache:   c,
		Audit:   sink,
		Confirm: confirm,
		Metrics: m,
	})

	for _, pc := range cfg.Providers {
		orch.RegisterProvider(buildProvider(pc))
	}

	orch.OnProviderError(func(providerName string, err error) {
		log.Error().Str("provider", providerName).Err(err).Msg("Provider error")
	})

	rt.Orchestrator = orch
	rt.Metrics = m
	return rt, nil
}

// Close stops background jobs and releases file handles.
func (rt *Runtime) Close() error {
	rt.janitor.Stop()
	if rt.sweeper != nil {
		rt.sweeper.Stop()
	}
	if rt.auditClose != nil {
		if err := rt.auditClose(); err != nil {
			return err
		}
	}
	return rt.log.Close()
}

func (rt *Runtime) buildAuditSink(cfg config.AuditConfig) (audit.Sink, error) {
	switch cfg.Sink {
	case "sqlite":
		sink, err := audit.NewSQLiteSink(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit sink: %w", err)
		}
		rt.auditClose = sink.Close
		rt.scheduleSweep(sink, cfg.RetentionDays)
		return sink, nil

	case "log":
		if cfg.Path != "" {
			sink, err := audit.NewFileLogSink(cfg.Path)
			if err != nil {
				return nil, fmt.Errorf("failed to open audit log: %w", err)
			}
			rt.auditClose = sink.Close
			return sink, nil
		}
		return &audit.MemorySink{}, nil

	default:
		return nil, fmt.Errorf("unsupported audit sink %q", cfg.Sink)
	}
}

func (rt *Runtime) scheduleSweep(sink *audit.SQLiteSink, retentionDays int) {
	if retentionDays <= 0 {
		return
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	rt.sweeper = cron.New()
	rt.sweeper.AddFunc("@daily", func() {
		if _, err := sink.Sweep(context.Background(), retention); err != nil {
			log.Error().Err(err).Msg("Audit retention sweep failed")
		}
	})
	rt.sweeper.Start()
}

func buildProvider(pc config.ProviderConfig) provider.Provider {
	switch pc.Name {
	case "anthropic":
		return provider.NewAnthropicProvider(pc.APIKey, pc.Model)
	default:
		return provider.NewOpenAIProvider(pc.APIKey, pc.Model)
	}
}
