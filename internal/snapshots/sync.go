package snapshots

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// Refresher refreshes and inspects cached dates.
type Refresher interface {
	Refresh(ctx context.Context, date string) error
	HasDate(ctx context.Context, date string) bool
}

// Warmer keeps recent and upcoming dates in the cache on a schedule.
type Warmer struct {
	refresher Refresher
	cfg       WarmConfig
	logger    *slog.Logger
	now       func() time.Time
	newTicker func(time.Duration) *time.Ticker
}

// WarmConfig controls warmer behavior.
type WarmConfig struct {
	Enabled      bool
	Days         int
	FutureDays   int
	Interval     time.Duration
	DailyHourUTC int
}

// NewWarmer constructs a cache warmer.
func NewWarmer(refresher Refresher, cfg WarmConfig, logger *slog.Logger) *Warmer {
	if cfg.Days <= 0 {
		cfg.Days = 3
	}
	if cfg.FutureDays < 0 {
		cfg.FutureDays = 0
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.DailyHourUTC < 0 || cfg.DailyHourUTC > 23 {
		cfg.DailyHourUTC = 2
	}

	return &Warmer{
		refresher: refresher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		newTicker: time.NewTicker,
	}
}

// Run performs a one-time warm of the configured range, then schedules the daily pass.
// Callers should run this in a goroutine.
func (w *Warmer) Run(ctx context.Context) {
	if w == nil || !w.cfg.Enabled || w.refresher == nil {
		return
	}
	w.logInfo(
		"cache warm starting",
		"past_days", w.cfg.Days,
		"future_days", w.cfg.FutureDays,
		"interval", w.cfg.Interval.String(),
		"daily_hour_utc", w.cfg.DailyHourUTC,
	)
	w.warm(ctx, w.now().UTC())
	go w.daily(ctx)
}

func (w *Warmer) warm(ctx context.Context, now time.Time) {
	dates := w.buildDates(ctx, now)
	for i, date := range dates {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.refresh(ctx, date)
		if i < len(dates)-1 {
			w.sleep(ctx, w.cfg.Interval)
		}
	}
}

func (w *Warmer) daily(ctx context.Context) {
	ticker := w.newTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.UTC().Hour() == w.cfg.DailyHourUTC {
				w.warm(ctx, w.now().UTC())
			}
		}
	}
}

func (w *Warmer) buildDates(ctx context.Context, now time.Time) []string {
	today := timeutil.FormatDate(now)
	dates := []string{today, timeutil.FormatDate(now.AddDate(0, 0, -1))}

	for i := 2; i < w.cfg.Days; i++ {
		date := timeutil.FormatDate(now.AddDate(0, 0, -i))
		if !w.refresher.HasDate(ctx, date) {
			dates = append(dates, date)
		}
	}
	for i := 1; i <= w.cfg.FutureDays; i++ {
		date := timeutil.FormatDate(now.AddDate(0, 0, i))
		if !w.refresher.HasDate(ctx, date) {
			dates = append(dates, date)
		}
	}
	return dates
}

func (w *Warmer) refresh(ctx context.Context, date string) {
	start := time.Now()
	if err := w.refresher.Refresh(ctx, date); err != nil {
		w.logWarn("cache warm refresh failed", "date", date, "err", err)
		return
	}
	w.logInfo("cache warmed", "date", date, "duration_ms", time.Since(start).Milliseconds())
}

func (w *Warmer) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (w *Warmer) logInfo(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Warmer) logWarn(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
