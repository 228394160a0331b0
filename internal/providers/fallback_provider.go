package providers

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// fallbackProvider tries providers in order and moves on only when one is unavailable.
type fallbackProvider struct {
	providers []NamedProvider
	logger    *slog.Logger
}

// NewFallbackProvider returns the single provider unchanged, or a chain that falls back on ErrUpstreamUnavailable.
func NewFallbackProvider(logger *slog.Logger, providers ...NamedProvider) FixtureProvider {
	usable := make([]NamedProvider, 0, len(providers))
	for _, p := range providers {
		if p.Provider != nil {
			usable = append(usable, p)
		}
	}
	if len(usable) == 1 {
		return usable[0].Provider
	}
	return &fallbackProvider{providers: usable, logger: logger}
}

func (f *fallbackProvider) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	return firstAvailable(ctx, f, func(p FixtureProvider) ([]fixtures.Fixture, error) {
		return p.FetchByDate(ctx, date)
	})
}

func (f *fallbackProvider) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	return firstAvailable(ctx, f, func(p FixtureProvider) ([]fixtures.Fixture, error) {
		return p.FetchLive(ctx)
	})
}

func (f *fallbackProvider) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	res, err := firstAvailable(ctx, f, func(p FixtureProvider) (lookup, error) {
		fx, ok, err := p.FetchByID(ctx, id)
		return lookup{fixture: fx, found: ok}, err
	})
	return res.fixture, res.found, err
}

func firstAvailable[T any](ctx context.Context, f *fallbackProvider, call func(FixtureProvider) (T, error)) (T, error) {
	var zero T
	lastErr := Unavailable("fallback", errors.New("no providers configured"))
	for _, np := range f.providers {
		value, err := call(np.Provider)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrUpstreamUnavailable) {
			return zero, err
		}
		logWithProvider(ctx, f.logger, slog.LevelWarn, np.Name, "provider unavailable, trying next", "err", err)
		lastErr = err
	}
	return zero, lastErr
}
