package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

const (
	defaultBatchSize  = 3
	defaultBatchPause = 250 * time.Millisecond
)

// windowOffsets are the days fetched around a target date, in canonical order.
var windowOffsets = []int{-1, 0, 1}

// Config controls batching and which day counts as today.
type Config struct {
	BatchSize  int
	BatchPause time.Duration
	Location   *time.Location
	// Clock overrides time.Now when deciding whether the target is today.
	Clock func() time.Time
}

// Window is the outcome of one date call.
type Window struct {
	Date     string
	Fixtures []fixtures.Fixture
	Err      error
}

// Result holds every window plus the optional live call.
type Result struct {
	Target     string
	Windows    []Window
	Live       []fixtures.Fixture
	LiveCalled bool
	LiveErr    error
}

// Sources returns merge inputs in canonical order: live first, then windows in window order.
func (r Result) Sources() []Source {
	sources := make([]Source, 0, len(r.Windows)+1)
	if r.LiveCalled && r.LiveErr == nil {
		sources = append(sources, Source{Kind: SourceLive, Fixtures: r.Live})
	}
	for _, w := range r.Windows {
		if w.Err == nil {
			sources = append(sources, Source{Kind: SourceDate, Fixtures: w.Fixtures})
		}
	}
	return sources
}

// Failed returns the number of windows that errored.
func (r Result) Failed() int {
	n := 0
	for _, w := range r.Windows {
		if w.Err != nil {
			n++
		}
	}
	return n
}

// Fetcher queries the days around a target date and the live feed.
type Fetcher struct {
	provider providers.FixtureProvider
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

// New constructs a Fetcher. Zero config values use defaults.
func New(provider providers.FixtureProvider, cfg Config, logger *slog.Logger, rec *metrics.Recorder) *Fetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BatchPause < 0 {
		cfg.BatchPause = defaultBatchPause
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Fetcher{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
		metrics:  rec,
		now:      cfg.Clock,
	}
}

// Fetch runs the window calls for target, plus the live call when target is today.
// Individual failures are recorded on the result; only a failure of every window
// is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, target string) (Result, error) {
	if err := providers.ValidateDate(target); err != nil {
		return Result{}, err
	}

	res := Result{Target: target, Windows: make([]Window, len(windowOffsets))}
	for i, offset := range windowOffsets {
		date, _ := timeutil.AddDays(target, offset)
		res.Windows[i].Date = date
	}
	res.LiveCalled = target == timeutil.DateIn(f.now(), f.cfg.Location)

	for start := 0; start < len(res.Windows); start += f.cfg.BatchSize {
		if start > 0 && f.cfg.BatchPause > 0 {
			if err := sleep(ctx, f.cfg.BatchPause); err != nil {
				return res, err
			}
		}
		end := min(start+f.cfg.BatchSize, len(res.Windows))

		var wg conc.WaitGroup
		for i := start; i < end; i++ {
			wg.Go(func() {
				w := &res.Windows[i]
				w.Fixtures, w.Err = f.provider.FetchByDate(ctx, w.Date)
			})
		}
		if start == 0 && res.LiveCalled {
			wg.Go(func() {
				res.Live, res.LiveErr = f.provider.FetchLive(ctx)
			})
		}
		wg.Wait()
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, f.settle(ctx, &res)
}

// settle wraps per-window failures and decides whether the fetch as a whole failed.
func (f *Fetcher) settle(ctx context.Context, res *Result) error {
	logger := logging.FromContext(ctx, f.logger)
	var first error
	for i := range res.Windows {
		w := &res.Windows[i]
		if w.Err == nil {
			continue
		}
		if first == nil {
			first = w.Err
		}
		w.Err = errors.Mark(errors.Wrapf(w.Err, "window %s", w.Date), providers.ErrPartialWindowFailure)
		f.metrics.RecordWindowFailure(w.Date)
		logging.Warn(logger, "window fetch failed",
			logging.FieldDate, w.Date,
			"target", res.Target,
			"err", w.Err,
		)
	}
	if res.LiveErr != nil {
		logging.Warn(logger, "live fetch failed", "target", res.Target, "err", res.LiveErr)
	}

	if res.Failed() == len(res.Windows) {
		return errors.Mark(errors.Wrapf(first, "all windows failed for %s", res.Target), providers.ErrUpstreamUnavailable)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
