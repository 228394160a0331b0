package snapshots

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/store"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// writeEntry persists one record and refreshes the manifest for its kind. Callers hold s.mu.
func (s *FSStore) writeEntry(rec store.Record) error {
	if rec.Key == "" {
		return errors.New("cache key required")
	}
	target := EntryPath(s.basePath, rec.Key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := sonic.ConfigStd.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", rec.Key)
	}
	if existing, err := os.ReadFile(target); err != nil || !bytes.Equal(existing, data) {
		if err := writeAtomic(target, data); err != nil {
			return errors.Wrapf(err, "write %s", rec.Key)
		}
	}

	kind, _ := splitKey(rec.Key)
	return s.updateManifest(kind)
}

func writeAtomic(target string, data []byte) error {
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}

func (s *FSStore) updateManifest(kind string) error {
	now := s.now().UTC()
	manifestPath := filepath.Join(s.basePath, manifestName)
	m, _ := readManifest(manifestPath, s.retentionDays, now)

	keys, err := s.listKeys(kind)
	if err != nil {
		return err
	}
	m.Kinds[kind] = KindMeta{
		Keys:        s.pruneExpired(keys, now),
		LastWritten: now,
	}
	m.Retention.Days = s.retentionDays

	return writeManifest(s.basePath, m, now)
}

func (s *FSStore) listKeys(kind string) ([]string, error) {
	dir := filepath.Join(s.basePath, kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		rec, err := s.readFile(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		keys = append(keys, rec.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// pruneExpired removes dated entries older than the retention window and returns the survivors.
func (s *FSStore) pruneExpired(keys []string, now time.Time) []string {
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -s.retentionDays)
	keep := make([]string, 0, len(keys))
	for _, key := range keys {
		date, ok := keyDate(key)
		if !ok {
			keep = append(keep, key)
			continue
		}
		parsed, err := timeutil.ParseDate(date)
		if err == nil && parsed.Before(cutoff) {
			_ = os.Remove(EntryPath(s.basePath, key))
			continue
		}
		keep = append(keep, key)
	}
	return keep
}

func kindDirs(basePath, prefix string) ([]string, error) {
	if kind, _, ok := strings.Cut(prefix, ":"); ok && kind != "" {
		return []string{filepath.Join(basePath, kind)}, nil
	}
	entries, err := os.ReadDir(basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(basePath, e.Name()))
		}
	}
	return dirs, nil
}
