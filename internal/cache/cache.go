// Package cache stores merged fixture lists by scope on top of a pluggable backend.
package cache

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

const lockStripes = 64

// Entry is a cached fixture list with the time it was written.
type Entry struct {
	Key       ScopeKey
	Fixtures  []fixtures.Fixture
	WrittenAt time.Time
}

// FixtureCache is safe for concurrent use. Writes to one key are serialized.
type FixtureCache struct {
	backend store.Backend
	now     func() time.Time
	locks   [lockStripes]sync.Mutex
}

// Option customizes a FixtureCache.
type Option func(*FixtureCache)

// WithClock sets the clock used to stamp WrittenAt.
func WithClock(now func() time.Time) Option {
	return func(c *FixtureCache) {
		if now != nil {
			c.now = now
		}
	}
}

// New wraps a backend. A nil backend gets an in-memory store.
func New(backend store.Backend, opts ...Option) *FixtureCache {
	if backend == nil {
		backend = store.NewMemoryStore()
	}
	c := &FixtureCache{
		backend: backend,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the backend.
func (c *FixtureCache) Close() error {
	return c.backend.Close()
}

func (c *FixtureCache) GetByKey(ctx context.Context, key ScopeKey) (Entry, bool, error) {
	rec, ok, err := c.backend.Get(ctx, key.String())
	if err != nil || !ok {
		return Entry{}, false, err
	}
	return Entry{Key: key, Fixtures: rec.Fixtures, WrittenAt: rec.WrittenAt}, true, nil
}

// Put replaces the entry under key. WrittenAt is the current time unless the stored entry is newer.
func (c *FixtureCache) Put(ctx context.Context, key ScopeKey, list []fixtures.Fixture) (Entry, error) {
	mu := c.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	writtenAt := c.now().UTC()
	existing, ok, err := c.backend.Get(ctx, key.String())
	if err != nil {
		return Entry{}, errors.Wrapf(err, "read %s", key)
	}
	if ok && existing.WrittenAt.After(writtenAt) {
		writtenAt = existing.WrittenAt
	}
	if list == nil {
		list = []fixtures.Fixture{}
	}
	rec := store.Record{Key: key.String(), Fixtures: list, WrittenAt: writtenAt}
	if err := c.backend.Set(ctx, rec); err != nil {
		return Entry{}, errors.Wrapf(err, "write %s", key)
	}
	return Entry{Key: key, Fixtures: list, WrittenAt: writtenAt}, nil
}

// GetByDate returns the window, date and league entries scoped to date.
func (c *FixtureCache) GetByDate(ctx context.Context, date string) ([]Entry, error) {
	var out []Entry
	for _, key := range []ScopeKey{WindowKey(date), DateKey(date)} {
		entry, ok, err := c.GetByKey(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	leagues, err := c.GetByScopePrefix(ctx, string(KindLeague)+":")
	if err != nil {
		return nil, err
	}
	for _, entry := range leagues {
		if d, ok := entry.Key.Date(); ok && d == date {
			out = append(out, entry)
		}
	}
	return out, nil
}

// GetByScopePrefix lists entries whose canonical key starts with prefix, ordered by key.
func (c *FixtureCache) GetByScopePrefix(ctx context.Context, prefix string) ([]Entry, error) {
	recs, err := c.backend.List(ctx, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", prefix)
	}
	out := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		key, err := ParseKey(rec.Key)
		if err != nil {
			continue
		}
		out = append(out, Entry{Key: key, Fixtures: rec.Fixtures, WrittenAt: rec.WrittenAt})
	}
	return out, nil
}

// GetFixture looks up fixture:{id} first and then scans the window and date scopes.
// The returned entry holds just that fixture and the WrittenAt of the scope it came from.
func (c *FixtureCache) GetFixture(ctx context.Context, id int64) (Entry, bool, error) {
	entry, ok, err := c.GetByKey(ctx, FixtureKey(id))
	if err != nil {
		return Entry{}, false, err
	}
	if ok && len(entry.Fixtures) > 0 {
		entry.Fixtures = entry.Fixtures[:1]
		return entry, true, nil
	}

	var (
		best  Entry
		found bool
	)
	for _, prefix := range []string{string(KindWindow) + ":", string(KindDate) + ":"} {
		entries, err := c.GetByScopePrefix(ctx, prefix)
		if err != nil {
			return Entry{}, false, err
		}
		for _, entry := range entries {
			for _, f := range entry.Fixtures {
				if f.ID != id {
					continue
				}
				if !found || entry.WrittenAt.After(best.WrittenAt) {
					best = Entry{Key: entry.Key, Fixtures: []fixtures.Fixture{f}, WrittenAt: entry.WrittenAt}
					found = true
				}
			}
		}
	}
	return best, found, nil
}

// PutFixture stores a single fixture under fixture:{id}.
func (c *FixtureCache) PutFixture(ctx context.Context, f fixtures.Fixture) (Entry, error) {
	return c.Put(ctx, FixtureKey(f.ID), []fixtures.Fixture{f})
}

// OverlayFixture swaps f into each listed entry that already contains its id.
// WrittenAt is left untouched. It returns how many entries changed.
func (c *FixtureCache) OverlayFixture(ctx context.Context, f fixtures.Fixture, scopes ...ScopeKey) (int, error) {
	updated := 0
	for _, key := range scopes {
		changed, err := c.overlay(ctx, key, f)
		if err != nil {
			return updated, err
		}
		if changed {
			updated++
		}
	}
	return updated, nil
}

func (c *FixtureCache) overlay(ctx context.Context, key ScopeKey, f fixtures.Fixture) (bool, error) {
	mu := c.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	rec, ok, err := c.backend.Get(ctx, key.String())
	if err != nil {
		return false, errors.Wrapf(err, "read %s", key)
	}
	if !ok {
		return false, nil
	}
	idx := -1
	for i := range rec.Fixtures {
		if rec.Fixtures[i].ID == f.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	rec.Fixtures[idx] = f
	if err := c.backend.Set(ctx, rec); err != nil {
		return false, errors.Wrapf(err, "overlay %s", key)
	}
	return true, nil
}

func (c *FixtureCache) lockFor(key ScopeKey) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key.String()))
	return &c.locks[h.Sum32()%lockStripes]
}
