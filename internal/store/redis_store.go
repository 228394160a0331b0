package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisNamespace = "fixtures:"
	redisScanCount        = 200
)

// RedisConfig selects the redis instance and key namespace.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// RedisStore keeps each record as a JSON string under a namespaced key.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", cfg.Addr)
	}
	return newRedisStore(client, cfg.Namespace), nil
}

func newRedisStore(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = defaultRedisNamespace
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "get %s", key)
	}
	rec, err := DecodeRecord(data)
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "decode %s", key)
	}
	rec.Key = key
	return rec, true, nil
}

// Set writes the record with a single SET; entries never expire, freshness is decided by readers.
func (s *RedisStore) Set(ctx context.Context, rec Record) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return errors.Wrapf(err, "encode %s", rec.Key)
	}
	return errors.Wrapf(s.client.Set(ctx, s.redisKey(rec.Key), data, 0).Err(), "set %s", rec.Key)
}

// List scans the namespace for keys with prefix.
func (s *RedisStore) List(ctx context.Context, prefix string) ([]Record, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.redisKey(prefix)+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan %s", prefix)
	}
	sort.Strings(keys)

	out := make([]Record, 0, len(keys))
	for _, rk := range keys {
		key := s.scopeKey(rk)
		if !hasPrefix(key, prefix) {
			continue
		}
		rec, ok, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) redisKey(key string) string {
	return s.namespace + key
}

func (s *RedisStore) scopeKey(redisKey string) string {
	return strings.TrimPrefix(redisKey, s.namespace)
}
