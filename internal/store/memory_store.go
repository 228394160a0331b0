package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps a thread-safe map of cache records in memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]Record),
	}
}

// Get retrieves a copy of the record stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

// Set replaces the record for rec.Key.
func (s *MemoryStore) Set(ctx context.Context, rec Record) error {
	_ = ctx
	rec = cloneRecord(rec)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

// List returns copies of the records whose key starts with prefix, sorted by key.
func (s *MemoryStore) List(ctx context.Context, prefix string) ([]Record, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Record, 0)
	for key, rec := range s.records {
		if hasPrefix(key, prefix) {
			result = append(result, cloneRecord(rec))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
