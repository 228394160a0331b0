package snapshots

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/store"
)

const defaultRetentionDays = 14

// FSStore keeps cache records as JSON files under basePath, one file per key.
type FSStore struct {
	basePath      string
	retentionDays int
	mu            sync.Mutex
	now           func() time.Time
}

// NewFSStore constructs a file-backed store rooted at basePath.
func NewFSStore(basePath string, retentionDays int) *FSStore {
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	return &FSStore{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// BasePath exposes the store root.
func (s *FSStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

func (s *FSStore) Get(ctx context.Context, key string) (store.Record, bool, error) {
	_ = ctx
	if s == nil {
		return store.Record{}, false, errors.New("file store not configured")
	}
	rec, err := s.readFile(EntryPath(s.basePath, key))
	if os.IsNotExist(err) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	return rec, true, nil
}

// Set writes the record through a tmp file and rename, then prunes expired entries of the same kind.
func (s *FSStore) Set(ctx context.Context, rec store.Record) error {
	_ = ctx
	if s == nil {
		return errors.New("file store not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeEntry(rec)
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]store.Record, error) {
	_ = ctx
	if s == nil {
		return nil, errors.New("file store not configured")
	}
	dirs, err := kindDirs(s.basePath, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]store.Record, 0)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
				continue
			}
			rec, err := s.readFile(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			if prefix == "" || strings.HasPrefix(rec.Key, prefix) {
				out = append(out, rec)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (s *FSStore) Close() error {
	return nil
}

// Manifest returns the current manifest, or an empty one if none was written yet.
func (s *FSStore) Manifest() Manifest {
	m, _ := readManifest(filepath.Join(s.basePath, manifestName), s.retentionDays, s.now().UTC())
	return m
}

func (s *FSStore) readFile(path string) (store.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Record{}, err
	}
	rec, err := store.DecodeRecord(data)
	if err != nil {
		return store.Record{}, errors.Wrapf(err, "decode %s", path)
	}
	return rec, nil
}
