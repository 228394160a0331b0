package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/snapshots"
	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

func TestBuildBackendMemory(t *testing.T) {
	for _, name := range []string{"", config.BackendMemory} {
		b, err := buildBackend(context.Background(), config.CacheConfig{Backend: name}, nil)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", name, err)
		}
		if _, ok := b.(*store.MemoryStore); !ok {
			t.Fatalf("expected memory store for %q, got %T", name, b)
		}
	}
}

func TestBuildBackendFile(t *testing.T) {
	b, err := buildBackend(context.Background(), config.CacheConfig{Backend: config.BackendFile, Path: t.TempDir(), RetentionDays: 14}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := b.(*snapshots.FSStore); !ok {
		t.Fatalf("expected fs store, got %T", b)
	}
}

func TestBuildBackendSQLiteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b, err := buildBackend(context.Background(), config.CacheConfig{Backend: config.BackendSQLite, Path: dir}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer b.Close()

	rec := store.Record{Key: "window:2025-06-15", WrittenAt: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)}
	if err := b.Set(context.Background(), rec); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	got, ok, err := b.Get(context.Background(), rec.Key)
	if err != nil || !ok {
		t.Fatalf("expected stored record, ok=%v err=%v", ok, err)
	}
	if !got.WrittenAt.Equal(rec.WrittenAt) {
		t.Fatalf("expected writtenAt %s, got %s", rec.WrittenAt, got.WrittenAt)
	}
}

func TestBuildBackendRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := buildBackend(ctx, config.CacheConfig{Backend: config.BackendRedis, RedisAddr: "127.0.0.1:1"}, nil); err == nil {
		t.Fatalf("expected error for unreachable redis")
	}
}

func TestBuildBackendUnknown(t *testing.T) {
	if _, err := buildBackend(context.Background(), config.CacheConfig{Backend: "etcd"}, nil); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestSQLitePath(t *testing.T) {
	if got := sqlitePath("/var/cache"); got != filepath.Join("/var/cache", "fixtures.db") {
		t.Fatalf("expected directory join, got %s", got)
	}
	if got := sqlitePath("/var/cache/f.sqlite"); got != "/var/cache/f.sqlite" {
		t.Fatalf("expected file path passthrough, got %s", got)
	}
}
