package server

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/snapshots"
	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

const sqliteFile = "fixtures.db"

// buildBackend opens the cache backend named by CACHE_BACKEND.
func buildBackend(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (store.Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return store.NewMemoryStore(), nil
	case config.BackendFile:
		return snapshots.NewFSStore(cfg.Path, cfg.RetentionDays), nil
	case config.BackendSQLite:
		db, err := store.OpenSQLite(sqlitePath(cfg.Path))
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.BackendRedis:
		rdb, err := store.NewRedisStore(ctx, store.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rdb, nil
	default:
		if logger != nil {
			logger.Warn("unknown cache backend", slog.String("backend", cfg.Backend))
		}
		return nil, errors.Newf("unknown cache backend %q", cfg.Backend)
	}
}

// sqlitePath treats an extensionless CACHE_PATH as a directory.
func sqlitePath(path string) string {
	if filepath.Ext(path) == "" {
		return filepath.Join(path, sqliteFile)
	}
	return path
}
