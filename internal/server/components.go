package server

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/app/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/cache"
	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/fetcher"
	"github.com/preston-bernstein/fixture-data-service/internal/freshness"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/reconciler"
	"github.com/preston-bernstein/fixture-data-service/internal/snapshots"
)

// Components is the wired fixture pipeline without any listeners.
type Components struct {
	Provider   providers.FixtureProvider
	Cache      *cache.FixtureCache
	Service    *fixtures.Service
	Reconciler *reconciler.Reconciler
	Warmer     *snapshots.Warmer
}

// BuildComponents wires provider, cache, service, reconciler and warmer from cfg.
// A nil provider builds the configured chain. The caller owns Close.
func BuildComponents(ctx context.Context, cfg config.Config, logger *slog.Logger, rec *metrics.Recorder, provider providers.FixtureProvider) (*Components, error) {
	if provider == nil {
		provider = newProviderFactory(logger, rec).build(cfg)
	}
	backend, err := buildBackend(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s cache backend", cfg.Cache.Backend)
	}

	loc := cfg.Location()
	fc := cache.New(backend)
	f := fetcher.New(provider, fetcher.Config{
		BatchSize:  cfg.Window.BatchSize,
		BatchPause: cfg.Window.BatchPause,
		Location:   loc,
	}, logger, rec)
	policy := freshness.NewPolicy(freshness.TTLs{
		Past:   cfg.TTLs.Past,
		Today:  cfg.TTLs.Today,
		Future: cfg.TTLs.Future,
		Live:   cfg.TTLs.Live,
		ByID:   cfg.TTLs.Fixture,
	}, loc)

	svc := fixtures.NewService(fixtures.Deps{
		Provider: provider,
		Fetcher:  f,
		Cache:    fc,
		Policy:   policy,
		Logger:   logger,
		Metrics:  rec,
	}, fixtures.Config{
		Location:          loc,
		ActiveWindow:      cfg.ActiveWindow,
		PopularLeagues:    cfg.PopularLeagues,
		ReconcileInterval: cfg.Reconcile.Interval,
	})

	recon, err := reconciler.New(provider, fc, reconciler.Config{
		Interval:  cfg.Reconcile.Interval,
		Tolerance: cfg.Reconcile.DriftTolerance,
		Inclusive: cfg.Reconcile.DriftInclusive,
		Window:    cfg.ActiveWindow,
		Location:  loc,
		Workers:   cfg.Reconcile.Workers,
	}, logger, rec)
	if err != nil {
		_ = fc.Close()
		return nil, err
	}
	svc.SetLive(recon)

	warmer := snapshots.NewWarmer(svc, snapshots.WarmConfig{
		Enabled:      cfg.Warm.Enabled,
		Days:         cfg.Warm.Days,
		FutureDays:   cfg.Warm.FutureDays,
		Interval:     cfg.Warm.Interval,
		DailyHourUTC: cfg.Warm.DailyHourUTC,
	}, logger)

	return &Components{
		Provider:   provider,
		Cache:      fc,
		Service:    svc,
		Reconciler: recon,
		Warmer:     warmer,
	}, nil
}

// Close releases the cache backend.
func (c *Components) Close() error {
	if c == nil || c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}
