package providers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

const defaultRequestsPerMinute = 30

// NewLimiter builds the token bucket shared by every caller of the upstream.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = defaultRequestsPerMinute
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
}

// rateLimitedProvider waits on a shared limiter before each upstream call.
type rateLimitedProvider struct {
	next    FixtureProvider
	limiter *rate.Limiter
	logger  *slog.Logger
	name    string
}

// NewRateLimitedProvider returns a FixtureProvider whose calls block until the limiter allows them.
// Pass the same limiter to every chain that hits one upstream quota.
func NewRateLimitedProvider(next FixtureProvider, limiter *rate.Limiter, logger *slog.Logger) FixtureProvider {
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	return &rateLimitedProvider{
		next:    next,
		limiter: limiter,
		logger:  logger,
		name:    "rate-limited",
	}
}

func (p *rateLimitedProvider) wait(ctx context.Context) error {
	if p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "provider unavailable")
		return Unavailable(p.name, nil)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, p.name, "rate-limited fetch canceled", "err", err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func (p *rateLimitedProvider) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, p.name, "rate-limited provider fetch", "date", date)
	return p.next.FetchByDate(ctx, date)
}

func (p *rateLimitedProvider) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	return p.next.FetchLive(ctx)
}

func (p *rateLimitedProvider) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	if err := p.wait(ctx); err != nil {
		return fixtures.Fixture{}, false, err
	}
	return p.next.FetchByID(ctx, id)
}
