package server

import (
	"log/slog"

	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/providers/fixture"
)

// providerFactory assembles the provider chain with shared wrappers (fallback, rate limit, retry).
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder) providerFactory {
	return providerFactory{logger: logger, metrics: metrics}
}

func (f providerFactory) build(cfg config.Config) providers.FixtureProvider {
	chain := make([]providers.NamedProvider, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		if p := selectProvider(name, cfg, f.logger); p != nil {
			chain = append(chain, providers.NamedProvider{Name: name, Provider: p})
		}
	}
	if len(chain) == 0 {
		chain = append(chain, providers.NamedProvider{Name: config.ProviderFixture, Provider: fixture.New()})
	}

	base := providers.NewFallbackProvider(f.logger, chain...)
	// One limiter for every upstream call, whichever caller makes it.
	limited := providers.NewRateLimitedProvider(base, providers.NewLimiter(cfg.Upstream.RequestsPerMinute), f.logger)
	return providers.NewRetryingProvider(limited, f.logger, f.metrics, normalizeProviderName(cfg.Providers), providers.RetryConfig{
		MaxRetries:  cfg.Upstream.MaxRetries,
		BaseDelay:   cfg.Upstream.BackoffBase,
		MaxDelay:    cfg.Upstream.BackoffMax,
		CallTimeout: cfg.Upstream.CallTimeout,
	})
}
