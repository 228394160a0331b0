package snapshots

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

const (
	manifestName = "manifest.json"
	miscKind     = "misc"
)

var fileNameReplacer = strings.NewReplacer(":", "_", "/", "_", `\`, "_")

// EntryPath builds the path for a cache key: {basePath}/{kind}/{value}.json with separators flattened.
func EntryPath(basePath, key string) string {
	kind, value := splitKey(key)
	return filepath.Join(basePath, kind, fmt.Sprintf("%s.json", fileNameReplacer.Replace(value)))
}

func splitKey(key string) (string, string) {
	kind, value, ok := strings.Cut(key, ":")
	if !ok || kind == "" {
		return miscKind, key
	}
	return fileNameReplacer.Replace(kind), value
}

// keyDate returns the trailing YYYY-MM-DD segment of a key, if any.
func keyDate(key string) (string, bool) {
	idx := strings.LastIndex(key, ":")
	if idx < 0 {
		return "", false
	}
	date := key[idx+1:]
	if _, err := timeutil.ParseDate(date); err != nil {
		return "", false
	}
	return date, true
}
