package snapshots

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

func newTestStore(t *testing.T, retentionDays int, now time.Time) *FSStore {
	t.Helper()
	s := NewFSStore(t.TempDir(), retentionDays)
	s.now = func() time.Time { return now }
	return s
}

func simpleRecord(key string, ids ...int64) store.Record {
	fx := make([]fixtures.Fixture, 0, len(ids))
	for _, id := range ids {
		fx = append(fx, fixtures.Fixture{ID: id, Provider: "stub"})
	}
	return store.Record{
		Key:       key,
		Fixtures:  fx,
		WrittenAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
}

func writeRecord(t *testing.T, s *FSStore, rec store.Record) {
	t.Helper()
	if err := s.Set(context.Background(), rec); err != nil {
		t.Fatalf("failed to write %s: %v", rec.Key, err)
	}
}

func requireEntryExists(t *testing.T, s *FSStore, key string) {
	t.Helper()
	if _, err := os.Stat(EntryPath(s.BasePath(), key)); err != nil {
		t.Fatalf("expected entry for %s to be written: %v", key, err)
	}
}

func assertDatesEqual(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("dates length mismatch: got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("dates mismatch at %d: got %v, want %v", i, got, want)
		}
	}
}
