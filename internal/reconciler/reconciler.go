// Package reconciler overlays live upstream data onto cached fixtures that are inside the active window.
package reconciler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/preston-bernstein/fixture-data-service/internal/cache"
	"github.com/preston-bernstein/fixture-data-service/internal/classify"
	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/scheduler"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

const (
	defaultInterval  = 2 * time.Minute
	defaultTolerance = 3
	defaultWorkers   = 4
)

// Config controls the reconciler loop. Start from DefaultConfig for the stock
// drift settings; a zero Config has no tolerance and snaps on any drift.
type Config struct {
	Interval time.Duration
	// Tolerance is the elapsed drift in minutes absorbed without a visible jump.
	// Zero snaps to every authoritative minute; negative uses the default of 3.
	Tolerance int
	Inclusive bool
	Window    time.Duration
	Location  *time.Location
	Workers   int
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
	if c.Tolerance < 0 {
		c.Tolerance = defaultTolerance
	}
	if c.Window <= 0 {
		c.Window = classify.DefaultWindow
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	return c
}

// DefaultConfig returns the stock settings: 2m ticks, 3 minute inclusive tolerance.
func DefaultConfig() Config {
	return Config{Tolerance: defaultTolerance, Inclusive: true}.withDefaults()
}

// Status reports loop health plus the number of tracked fixtures.
type Status struct {
	scheduler.Status
	Tracked int
}

// Reconciler keeps tracked fixtures in step with the live endpoint.
type Reconciler struct {
	provider providers.FixtureProvider
	cache    *cache.FixtureCache
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	pool     *ants.Pool
	task     *scheduler.Task

	tickMu   sync.Mutex
	mu       sync.RWMutex
	tracked  map[int64]*Tracked
	latest   []fixtures.Fixture
	latestAt time.Time
}

// New builds a reconciler. Call Start to run it on its interval.
func New(provider providers.FixtureProvider, fc *cache.FixtureCache, cfg Config, logger *slog.Logger, recorder *metrics.Recorder) (*Reconciler, error) {
	cfg = cfg.withDefaults()
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "create confirmation pool")
	}
	r := &Reconciler{
		provider: provider,
		cache:    fc,
		cfg:      cfg,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
		pool:     pool,
		tracked:  make(map[int64]*Tracked),
	}
	r.task = scheduler.New("reconciler", cfg.Interval, r.Tick, logger)
	return r, nil
}

// Start runs an immediate tick and then one per interval until Stop or ctx cancellation.
func (r *Reconciler) Start(ctx context.Context) {
	r.task.Start(ctx)
}

// Stop halts the loop, waits for the current tick and releases the worker pool.
func (r *Reconciler) Stop(ctx context.Context) error {
	err := r.task.Stop(ctx)
	r.pool.Release()
	return err
}

// Done is closed once the loop has exited.
func (r *Reconciler) Done() <-chan struct{} {
	return r.task.Done()
}

// Status returns loop health for readiness checks.
func (r *Reconciler) Status() Status {
	r.mu.RLock()
	n := len(r.tracked)
	r.mu.RUnlock()
	return Status{Status: r.task.Status(), Tracked: n}
}

// Latest returns the live list from the last successful tick.
func (r *Reconciler) Latest() ([]fixtures.Fixture, time.Time, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latestAt.IsZero() {
		return nil, time.Time{}, false
	}
	return append([]fixtures.Fixture(nil), r.latest...), r.latestAt, true
}

// Tracked returns a copy of the tracking state for id.
func (r *Reconciler) Tracked(id int64) (Tracked, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tracked[id]
	if !ok {
		return Tracked{}, false
	}
	return *t, true
}

// DisplayElapsed returns the derived elapsed minute for a tracked fixture.
func (r *Reconciler) DisplayElapsed(id int64, now time.Time) (int, bool) {
	t, ok := r.Tracked(id)
	if !ok || !t.anchored {
		return 0, false
	}
	return t.DisplayElapsed(now), true
}

// Tick runs one reconciliation pass.
func (r *Reconciler) Tick(ctx context.Context) error {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	start := time.Now()
	now := r.now()
	err := r.tick(ctx, now)
	r.metrics.RecordReconcileTick(r.trackedCount(), time.Since(start), err)
	return err
}

func (r *Reconciler) tick(ctx context.Context, now time.Time) error {
	if r.provider == nil {
		return errors.Mark(errors.New("no live provider configured"), providers.ErrUpstreamUnavailable)
	}
	if err := r.refreshTracking(ctx, now); err != nil {
		r.logWarn(ctx, "reconciler tracking refresh failed", "err", err)
	}

	live, err := r.provider.FetchLive(ctx)
	if err != nil {
		return errors.Wrap(err, "fetch live")
	}

	changed := make(map[int64]fixtures.Fixture)
	seen := make(map[int64]struct{}, len(live))
	r.mu.Lock()
	for _, lf := range live {
		seen[lf.ID] = struct{}{}
		t, ok := r.tracked[lf.ID]
		if !ok {
			lf.UpdatedAt = now
			r.tracked[lf.ID] = newTracked(lf, now)
			changed[lf.ID] = lf
			continue
		}
		if r.apply(ctx, t, lf, now) {
			changed[lf.ID] = t.Fixture
		}
	}
	missing := make([]int64, 0)
	for id, t := range r.tracked {
		if _, ok := seen[id]; ok {
			continue
		}
		if t.Fixture.Status.Code.IsLive() || !now.Before(t.Fixture.Kickoff) {
			missing = append(missing, id)
		}
	}
	r.mu.Unlock()

	for id, f := range r.confirm(ctx, missing, now) {
		changed[id] = f
	}

	r.mu.Lock()
	out := make([]fixtures.Fixture, 0, len(live))
	for _, lf := range live {
		if t, ok := r.tracked[lf.ID]; ok {
			out = append(out, t.Fixture)
		} else {
			out = append(out, lf)
		}
	}
	for id, t := range r.tracked {
		if t.Fixture.Status.Code.IsTerminal() || !classify.InActiveWindow(t.Fixture, now, r.cfg.Window) {
			delete(r.tracked, id)
		}
	}
	r.latest = out
	r.latestAt = now
	r.mu.Unlock()

	r.writeBack(ctx, changed, out)
	return nil
}

// refreshTracking picks up cached fixtures for today and yesterday that are inside the active window.
func (r *Reconciler) refreshTracking(ctx context.Context, now time.Time) error {
	if r.cache == nil {
		return nil
	}
	today := timeutil.FormatDate(now.In(r.cfg.Location))
	yesterday := timeutil.FormatDate(now.In(r.cfg.Location).AddDate(0, 0, -1))

	var firstErr error
	for _, date := range []string{today, yesterday} {
		entries, err := r.cache.GetByDate(ctx, date)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		r.mu.Lock()
		for _, entry := range entries {
			for _, f := range entry.Fixtures {
				if _, ok := r.tracked[f.ID]; ok {
					continue
				}
				if f.Status.Code.IsTerminal() || !classify.InActiveWindow(f, now, r.cfg.Window) {
					continue
				}
				synced := f.UpdatedAt
				if synced.IsZero() {
					synced = entry.WrittenAt
				}
				r.tracked[f.ID] = newTracked(f, synced)
			}
		}
		r.mu.Unlock()
	}
	return firstErr
}

// apply merges an authoritative copy into t. Callers hold r.mu.
func (r *Reconciler) apply(ctx context.Context, t *Tracked, incoming fixtures.Fixture, now time.Time) bool {
	from := t.phase
	to := incoming.Status.Code.PhaseAfter(from)
	if !fixtures.CanTransition(from, to) {
		r.logDebug(ctx, "reconciler rejected status regression",
			logging.FieldFixtureID, t.Fixture.ID,
			"from", from.String(),
			"to", to.String(),
		)
		return false
	}

	prev := t.Fixture
	next := prev
	next.Status.Code = incoming.Status.Code
	next.Status.Label = incoming.Status.Label
	next.Score = incoming.Score
	t.Fixture = next
	t.phase = to

	if incoming.Status.Elapsed != nil {
		auth := *incoming.Status.Elapsed
		if from != to || !t.anchored {
			t.anchor(auth, now)
		} else if _, snapped := ReconcileElapsed(t.DisplayElapsed(now), auth, r.cfg.Tolerance, r.cfg.Inclusive); snapped {
			t.anchor(auth, now)
		}
	}
	if t.anchored {
		t.Fixture.Status.Elapsed = fixtures.IntPtr(t.DisplayElapsed(now))
	}

	if sameState(prev, t.Fixture) {
		t.Fixture.UpdatedAt = prev.UpdatedAt
		return false
	}
	t.Fixture.UpdatedAt = now
	return true
}

type confirmation struct {
	id    int64
	f     fixtures.Fixture
	found bool
	err   error
}

// confirm asks the provider about tracked fixtures that dropped off the live list.
func (r *Reconciler) confirm(ctx context.Context, ids []int64, now time.Time) map[int64]fixtures.Fixture {
	results := make([]confirmation, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		i, id := i, id
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			f, ok, err := r.provider.FetchByID(ctx, id)
			results[i] = confirmation{id: id, f: f, found: ok, err: err}
		})
		if err != nil {
			wg.Done()
			results[i] = confirmation{id: id, err: err}
		}
	}
	wg.Wait()

	changed := make(map[int64]fixtures.Fixture)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range results {
		t, ok := r.tracked[res.id]
		if !ok {
			continue
		}
		if res.err != nil || !res.found {
			r.logWarn(ctx, "reconciler confirmation inconclusive",
				logging.FieldFixtureID, res.id,
				"found", res.found,
				"err", res.err,
			)
			continue
		}
		if r.apply(ctx, t, res.f, now) {
			changed[res.id] = t.Fixture
		}
	}
	return changed
}

// writeBack persists changed fixtures and the live list. Failures are logged; tracking state already holds the result.
func (r *Reconciler) writeBack(ctx context.Context, changed map[int64]fixtures.Fixture, live []fixtures.Fixture) {
	if r.cache == nil {
		return
	}
	var errs error
	for _, f := range changed {
		if _, err := r.cache.OverlayFixture(ctx, f, scopesFor(f, r.cfg.Location)...); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		if _, err := r.cache.PutFixture(ctx, f); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	if _, err := r.cache.Put(ctx, cache.LiveKey(), live); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	if errs != nil {
		r.logWarn(ctx, "reconciler write back failed", "err", errs)
	}
}

// scopesFor lists the entries that may hold f: the three windows around its kickoff date, the date and its league.
func scopesFor(f fixtures.Fixture, loc *time.Location) []cache.ScopeKey {
	date := f.LocalDate(loc)
	keys := []cache.ScopeKey{cache.WindowKey(date), cache.DateKey(date)}
	for _, offset := range []int{-1, 1} {
		if d, err := timeutil.AddDays(date, offset); err == nil {
			keys = append(keys, cache.WindowKey(d))
		}
	}
	if f.League.ID != 0 {
		keys = append(keys, cache.LeagueKey(f.League.ID, date))
	}
	return keys
}

func sameState(a, b fixtures.Fixture) bool {
	return a.Status.Code == b.Status.Code &&
		a.Status.Label == b.Status.Label &&
		equalInt(a.Status.Elapsed, b.Status.Elapsed) &&
		equalInt(a.Score.Home, b.Score.Home) &&
		equalInt(a.Score.Away, b.Score.Away)
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *Reconciler) trackedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tracked)
}

func (r *Reconciler) logWarn(ctx context.Context, msg string, args ...any) {
	logging.Warn(logging.FromContext(ctx, r.logger), msg, args...)
}

func (r *Reconciler) logDebug(ctx context.Context, msg string, args ...any) {
	logging.Debug(logging.FromContext(ctx, r.logger), msg, args...)
}
