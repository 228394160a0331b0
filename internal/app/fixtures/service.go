// Package fixtures serves fixture lookups from the cache, refreshing through the window fetcher when entries go stale.
package fixtures

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/fixture-data-service/internal/cache"
	"github.com/preston-bernstein/fixture-data-service/internal/classify"
	domainfixtures "github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/fetcher"
	"github.com/preston-bernstein/fixture-data-service/internal/freshness"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/metrics"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// LatestLive is implemented by the reconciler.
type LatestLive interface {
	Latest() ([]domainfixtures.Fixture, time.Time, bool)
}

// Config holds the request-pipeline settings.
type Config struct {
	Location       *time.Location
	ActiveWindow   time.Duration
	PopularLeagues []int64
	// ReconcileInterval is how often the reconciler ticks. Its last tick stays
	// servable for one interval plus reconcileSlack even past TTL_LIVE.
	ReconcileInterval time.Duration
}

const reconcileSlack = 30 * time.Second

// Deps are the collaborators a Service needs. Live and Metrics may be nil.
type Deps struct {
	Provider providers.FixtureProvider
	Fetcher  *fetcher.Fetcher
	Cache    *cache.FixtureCache
	Policy   *freshness.Policy
	Live     LatestLive
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Clock    func() time.Time
}

// Service coordinates cache reads, refreshes and classification.
type Service struct {
	provider providers.FixtureProvider
	fetcher  *fetcher.Fetcher
	cache    *cache.FixtureCache
	policy   *freshness.Policy
	live     LatestLive
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
	cfg      Config
	popular  map[int64]struct{}
	group    singleflight.Group
}

// NewService constructs a Service.
func NewService(deps Deps, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.ActiveWindow <= 0 {
		cfg.ActiveWindow = classify.DefaultWindow
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Policy == nil {
		deps.Policy = freshness.NewPolicy(freshness.DefaultTTLs(), cfg.Location)
	}
	if deps.Cache == nil {
		deps.Cache = cache.New(nil)
	}
	if deps.Fetcher == nil {
		deps.Fetcher = fetcher.New(deps.Provider, fetcher.Config{Location: cfg.Location, Clock: deps.Clock}, deps.Logger, deps.Metrics)
	}
	popular := make(map[int64]struct{}, len(cfg.PopularLeagues))
	for _, id := range cfg.PopularLeagues {
		popular[id] = struct{}{}
	}
	return &Service{
		provider: deps.Provider,
		fetcher:  deps.Fetcher,
		cache:    deps.Cache,
		policy:   deps.Policy,
		live:     deps.Live,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
		now:      deps.Clock,
		cfg:      cfg,
		popular:  popular,
	}
}

// SetLive attaches the reconciler once it exists.
func (s *Service) SetLive(live LatestLive) {
	s.live = live
}

// ByDate returns the fixtures for date. A stale entry is served when the refresh fails,
// and an empty list when there is nothing cached at all.
func (s *Service) ByDate(ctx context.Context, date string, q Query) (DateResult, error) {
	if err := providers.ValidateDate(date); err != nil {
		return DateResult{}, err
	}
	now := s.now()
	entry, source, err := s.windowEntry(ctx, date, now)
	if err != nil {
		return DateResult{}, err
	}
	return s.result(date, entry, source, q, now), nil
}

// windowEntry resolves the window:{date} entry through the freshness policy.
func (s *Service) windowEntry(ctx context.Context, date string, now time.Time) (cache.Entry, Source, error) {
	logger := logging.FromContext(ctx, s.logger)
	entry, found, err := s.cache.GetByKey(ctx, cache.WindowKey(date))
	if err != nil {
		logging.Warn(logger, "cache read failed", logging.FieldDate, date, "err", err)
		found = false
	}

	switch s.policy.Decide(entry.WrittenAt, found, s.policy.Classify(date, now), now) {
	case freshness.ServeCached:
		s.metrics.RecordCacheLookup(metrics.CacheHit)
		return entry, SourceCache, nil
	case freshness.Refetch:
		s.metrics.RecordCacheLookup(metrics.CacheStale)
	default:
		s.metrics.RecordCacheLookup(metrics.CacheMiss)
	}

	fresh, err := s.refresh(ctx, date)
	if err == nil {
		return fresh, SourceFresh, nil
	}
	if errors.Is(err, providers.ErrInvalidDateFormat) {
		return cache.Entry{}, "", err
	}
	if found {
		logging.Warn(logger, "serving stale fixtures after refresh failure", logging.FieldDate, date, "err", err)
		return entry, SourceStale, nil
	}
	logging.Warn(logger, "no fixtures available after refresh failure", logging.FieldDate, date, "err", err)
	return cache.Entry{Key: cache.WindowKey(date)}, SourceEmpty, nil
}

// refresh fetches and merges the window for date. Concurrent callers for one date share a single fetch.
func (s *Service) refresh(ctx context.Context, date string) (cache.Entry, error) {
	key := cache.WindowKey(date)
	v, err, _ := s.group.Do(key.String(), func() (any, error) {
		// Detached so one caller going away does not fail the others.
		fctx := context.WithoutCancel(ctx)
		res, err := s.fetcher.Fetch(fctx, date)
		if err != nil {
			return cache.Entry{}, err
		}
		merged := fetcher.Merge(res.Sources()...)
		entry, err := s.cache.Put(fctx, key, merged)
		if err != nil {
			return cache.Entry{}, err
		}
		if res.LiveCalled && res.LiveErr == nil {
			if _, err := s.cache.Put(fctx, cache.LiveKey(), res.Live); err != nil {
				logging.Warn(logging.FromContext(ctx, s.logger), "live cache write failed", "err", err)
			}
		}
		return entry, nil
	})
	if err != nil {
		return cache.Entry{}, err
	}
	return v.(cache.Entry), nil
}

// Refresh forces a refetch of date regardless of freshness.
func (s *Service) Refresh(ctx context.Context, date string) error {
	if err := providers.ValidateDate(date); err != nil {
		return err
	}
	_, err := s.refresh(ctx, date)
	return err
}

// HasDate reports whether a window entry exists for date, fresh or not.
func (s *Service) HasDate(ctx context.Context, date string) bool {
	_, found, err := s.cache.GetByKey(ctx, cache.WindowKey(date))
	return err == nil && found
}

// ByLeague returns one league's fixtures for date and keeps them under the league scope.
func (s *Service) ByLeague(ctx context.Context, leagueID int64, date string) (DateResult, error) {
	if err := providers.ValidateDate(date); err != nil {
		return DateResult{}, err
	}
	now := s.now()
	key := cache.LeagueKey(leagueID, date)
	class := s.policy.Classify(date, now)
	if entry, found, err := s.cache.GetByKey(ctx, key); err == nil && s.policy.Decide(entry.WrittenAt, found, class, now) == freshness.ServeCached {
		s.metrics.RecordCacheLookup(metrics.CacheHit)
		return s.result(date, entry, SourceCache, Query{}, now), nil
	}

	window, source, err := s.windowEntry(ctx, date, now)
	if err != nil {
		return DateResult{}, err
	}
	filtered := make([]domainfixtures.Fixture, 0)
	for _, f := range window.Fixtures {
		if f.League.ID == leagueID && f.LocalDate(s.cfg.Location) == date {
			filtered = append(filtered, f)
		}
	}
	entry := cache.Entry{Key: key, Fixtures: filtered, WrittenAt: window.WrittenAt}
	if source == SourceFresh || source == SourceCache {
		if stored, err := s.cache.Put(ctx, key, filtered); err == nil {
			entry = stored
		} else {
			logging.Warn(logging.FromContext(ctx, s.logger), "league cache write failed", logging.FieldScope, key.String(), "err", err)
		}
	}
	return s.result(date, entry, source, Query{}, now), nil
}

// tickMaxAge bounds the age of a servable reconciler tick.
func (s *Service) tickMaxAge(ttl time.Duration) time.Duration {
	if s.cfg.ReconcileInterval <= 0 {
		return ttl
	}
	return max(ttl, s.cfg.ReconcileInterval+reconcileSlack)
}

// Live returns in-play fixtures: the reconciler's last tick, then the live cache,
// then upstream, then live fixtures from today's window, then nothing.
func (s *Service) Live(ctx context.Context) LiveResult {
	now := s.now()
	maxAge := s.policy.MaxAge(freshness.ClassLive)

	if s.live != nil {
		if list, at, ok := s.live.Latest(); ok && freshness.IsFresh(at, s.tickMaxAge(maxAge), now) {
			return LiveResult{Fixtures: nonNil(list), Source: LiveFromReconciler, UpdatedAt: at}
		}
	}
	if entry, found, err := s.cache.GetByKey(ctx, cache.LiveKey()); err == nil && found && freshness.IsFresh(entry.WrittenAt, maxAge, now) {
		return LiveResult{Fixtures: nonNil(entry.Fixtures), Source: LiveFromCache, UpdatedAt: entry.WrittenAt}
	}

	logger := logging.FromContext(ctx, s.logger)
	if s.provider != nil {
		list, err := s.provider.FetchLive(ctx)
		if err == nil {
			entry, putErr := s.cache.Put(ctx, cache.LiveKey(), list)
			if putErr != nil {
				logging.Warn(logger, "live cache write failed", "err", putErr)
				entry.WrittenAt = now
			}
			return LiveResult{Fixtures: nonNil(list), Source: LiveFromUpstream, UpdatedAt: entry.WrittenAt}
		}
		logging.Warn(logger, "live fetch failed, falling back to cached window", "err", err)
	}

	today := timeutil.DateIn(now, s.cfg.Location)
	if entry, found, err := s.cache.GetByKey(ctx, cache.WindowKey(today)); err == nil && found {
		live := make([]domainfixtures.Fixture, 0)
		for _, f := range entry.Fixtures {
			if f.Status.Code.IsLive() {
				live = append(live, f)
			}
		}
		return LiveResult{Fixtures: live, Source: LiveFromWindow, UpdatedAt: entry.WrittenAt}
	}
	return LiveResult{Fixtures: []domainfixtures.Fixture{}, Source: LiveFromNone}
}

// ByID returns a single fixture: a fresh cached copy, then upstream, then any cached copy.
func (s *Service) ByID(ctx context.Context, id int64) (FixtureResult, error) {
	now := s.now()
	entry, found, err := s.cache.GetByKey(ctx, cache.FixtureKey(id))
	if err == nil && found && len(entry.Fixtures) > 0 {
		if freshness.IsFresh(entry.WrittenAt, s.policy.MaxAge(freshness.ClassByID), now) {
			s.metrics.RecordCacheLookup(metrics.CacheHit)
			return FixtureResult{Fixture: entry.Fixtures[0], Source: SourceCache, WrittenAt: entry.WrittenAt}, nil
		}
		s.metrics.RecordCacheLookup(metrics.CacheStale)
	} else {
		s.metrics.RecordCacheLookup(metrics.CacheMiss)
	}

	logger := logging.FromContext(ctx, s.logger)
	if s.provider != nil {
		key := cache.FixtureKey(id)
		v, err, _ := s.group.Do(key.String(), func() (any, error) {
			fctx := context.WithoutCancel(ctx)
			f, ok, err := s.provider.FetchByID(fctx, id)
			if err != nil || !ok {
				return nil, err
			}
			stored, err := s.cache.PutFixture(fctx, f)
			if err != nil {
				logging.Warn(logger, "fixture cache write failed", logging.FieldFixtureID, id, "err", err)
				stored = cache.Entry{Key: key, Fixtures: []domainfixtures.Fixture{f}, WrittenAt: now}
			}
			return stored, nil
		})
		if err != nil {
			logging.Warn(logger, "fixture fetch failed", logging.FieldFixtureID, id, "err", err)
		} else if stored, ok := v.(cache.Entry); ok {
			return FixtureResult{Fixture: stored.Fixtures[0], Source: SourceFresh, WrittenAt: stored.WrittenAt}, nil
		}
	}

	cached, found, err := s.cache.GetFixture(ctx, id)
	if err != nil {
		logging.Warn(logger, "fixture cache scan failed", logging.FieldFixtureID, id, "err", err)
	}
	if found {
		return FixtureResult{Fixture: cached.Fixtures[0], Source: SourceStale, WrittenAt: cached.WrittenAt}, nil
	}
	return FixtureResult{}, errors.Mark(errors.Newf("fixture %d", id), providers.ErrFixtureNotFound)
}

func (s *Service) result(date string, entry cache.Entry, source Source, q Query, now time.Time) DateResult {
	loc := q.Location
	if loc == nil {
		loc = s.cfg.Location
	}
	reference := q.Reference
	if reference == "" {
		reference = timeutil.DateIn(now, loc)
	}
	opts := classify.Options{Now: now, Location: loc, Window: s.cfg.ActiveWindow}

	views := make([]View, 0, len(entry.Fixtures))
	for _, f := range entry.Fixtures {
		if !q.All && f.LocalDate(loc) != date {
			continue
		}
		if q.PopularOnly && !s.isPopular(f.League.ID) {
			continue
		}
		v := View{Fixture: f}
		if q.Classify {
			c := classify.Classify(f, reference, opts)
			v.Classification = &c
		}
		views = append(views, v)
	}
	return DateResult{Date: date, Fixtures: views, Source: source, WrittenAt: entry.WrittenAt}
}

func (s *Service) isPopular(leagueID int64) bool {
	_, ok := s.popular[leagueID]
	return ok
}

// PopularLeagues returns the configured popular league ids in ascending order.
func (s *Service) PopularLeagues() []int64 {
	out := make([]int64, 0, len(s.popular))
	for id := range s.popular {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func nonNil(list []domainfixtures.Fixture) []domainfixtures.Fixture {
	if list == nil {
		return []domainfixtures.Fixture{}
	}
	return list
}
