package snapshots

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
)

// Manifest tracks which cache files exist per kind.
type Manifest struct {
	Version     int                 `json:"version"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Retention   Retention           `json:"retention"`
	Kinds       map[string]KindMeta `json:"kinds"`
}

type Retention struct {
	Days int `json:"days"`
}

type KindMeta struct {
	Keys        []string  `json:"keys"`
	LastWritten time.Time `json:"lastWritten"`
}

func defaultManifest(retentionDays int, now time.Time) Manifest {
	return Manifest{
		Version:     1,
		GeneratedAt: now,
		Retention: Retention{
			Days: retentionDays,
		},
		Kinds: map[string]KindMeta{},
	}
}

func readManifest(path string, retentionDays int, now time.Time) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultManifest(retentionDays, now), err
	}
	var m Manifest
	if err := sonic.ConfigStd.Unmarshal(data, &m); err != nil {
		return defaultManifest(retentionDays, now), err
	}
	if m.Kinds == nil {
		m.Kinds = map[string]KindMeta{}
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest, now time.Time) error {
	m.GeneratedAt = now
	data, err := sonic.ConfigStd.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(basePath, manifestName), data)
}
