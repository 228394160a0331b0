package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
)

const (
	defaultMaxRetries   = 3
	defaultBaseDelay    = 2 * time.Second
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
	defaultCallTimeout  = 10 * time.Second
	defaultProviderName = "provider"
)

// RetryConfig controls rate-limit retries and the per-attempt timeout.
type RetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	CallTimeout time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = defaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = defaultMaxDelay
	}
	if c.Multiplier <= 1 {
		c.Multiplier = defaultMultiplier
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	return c
}

// retryingProvider wraps a FixtureProvider and retries rate-limited calls with exponential backoff.
type retryingProvider struct {
	inner        FixtureProvider
	logger       *slog.Logger
	metrics      *metrics.Recorder
	providerName string
	cfg          RetryConfig
	newBackOff   func() backoff.BackOff
}

// NewRetryingProvider wraps the given provider with rate-limit retries. Zero config values use defaults.
func NewRetryingProvider(inner FixtureProvider, logger *slog.Logger, rec *metrics.Recorder, providerName string, cfg RetryConfig) FixtureProvider {
	if providerName == "" {
		providerName = defaultProviderName
	}
	cfg = cfg.withDefaults()
	rp := &retryingProvider{
		inner:        inner,
		logger:       logger,
		metrics:      rec,
		providerName: providerName,
		cfg:          cfg,
	}
	rp.newBackOff = rp.exponential
	return rp
}

func (r *retryingProvider) exponential() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.BaseDelay
	b.Multiplier = r.cfg.Multiplier
	b.MaxInterval = r.cfg.MaxDelay
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (r *retryingProvider) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return retry(ctx, r, "by_date", func(attemptCtx context.Context) ([]fixtures.Fixture, error) {
		return r.inner.FetchByDate(attemptCtx, date)
	})
}

func (r *retryingProvider) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	return retry(ctx, r, "live", func(attemptCtx context.Context) ([]fixtures.Fixture, error) {
		return r.inner.FetchLive(attemptCtx)
	})
}

type lookup struct {
	fixture fixtures.Fixture
	found   bool
}

func (r *retryingProvider) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	res, err := retry(ctx, r, "by_id", func(attemptCtx context.Context) (lookup, error) {
		f, ok, err := r.inner.FetchByID(attemptCtx, id)
		return lookup{fixture: f, found: ok}, err
	})
	return res.fixture, res.found, err
}

func retry[T any](ctx context.Context, r *retryingProvider, op string, call func(context.Context) (T, error)) (T, error) {
	var zero T
	if r.inner == nil {
		return zero, Unavailable(r.providerName, errors.New("no provider configured"))
	}

	hint := &retryAfterBackOff{BackOff: r.newBackOff()}
	policy := backoff.WithContext(backoff.WithMaxRetries(hint, uint64(r.cfg.MaxRetries)), ctx)

	var result T
	attempt := 0
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		attempt++
		value, err := attemptOnce(ctx, r, call)
		if err == nil {
			result = value
			return nil
		}
		if rlErr, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(r.providerName, rlErr.RetryAfter)
			hint.raise(rlErr.RetryAfter)
			return err
		}
		if errors.Is(err, ErrUpstreamRateLimited) {
			r.metrics.RecordRateLimit(r.providerName, 0)
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider rate limited, backing off",
			"op", op, "attempt", attempt, "max_retries", r.cfg.MaxRetries, "delay", delay, "err", err)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, ErrUpstreamRateLimited) {
			logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider retries exhausted",
				"op", op, "attempts", attempt, "err", err)
		}
		return zero, err
	}
	return result, nil
}

// attemptOnce runs one call under its own timeout, separate from the backoff budget.
func attemptOnce[T any](ctx context.Context, r *retryingProvider, call func(context.Context) (T, error)) (T, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	value, err := call(attemptCtx)
	r.metrics.RecordProviderAttempt(r.providerName, time.Since(start), err)
	if err == nil {
		return value, nil
	}
	if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrUpstreamUnavailable) {
		err = Unavailable(r.providerName, errors.Wrapf(err, "attempt exceeded %s", r.cfg.CallTimeout))
	}
	return value, err
}

// retryAfterBackOff raises the next delay to an upstream Retry-After hint.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) raise(d time.Duration) {
	if d > b.hint {
		b.hint = d
	}
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = b.hint
	}
	b.hint = 0
	return next
}
