package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/snapshots"
	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

// NewTempFSStore returns a file-backed store rooted in a temp dir.
func NewTempFSStore(t *testing.T, retention int) *snapshots.FSStore {
	t.Helper()
	return snapshots.NewFSStore(t.TempDir(), retention)
}

// SeedRecord writes a record directly to a backend, bypassing the cache clock.
func SeedRecord(t *testing.T, b store.Backend, key string, writtenAt time.Time, list ...fixtures.Fixture) {
	t.Helper()
	if list == nil {
		list = []fixtures.Fixture{}
	}
	if err := b.Set(context.Background(), store.Record{Key: key, Fixtures: list, WrittenAt: writtenAt}); err != nil {
		t.Fatalf("failed to seed %s: %v", key, err)
	}
}
