package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// LoadDotEnv copies variables from the first readable file into the process
// environment. Variables already set win. Missing files are ignored.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return
		}
	}
}

func envOrDefault(key, defaultValue string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val != "" {
		return val
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func intEnvOrDefault(key string, defaultValue int) int {
	val, ok := intEnv(key)
	if !ok || val <= 0 {
		return defaultValue
	}
	return val
}

// nonNegativeIntEnvOrDefault accepts zero, for settings where zero is meaningful.
func nonNegativeIntEnvOrDefault(key string, defaultValue int) int {
	val, ok := intEnv(key)
	if !ok || val < 0 {
		return defaultValue
	}
	return val
}

func intEnv(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return val, true
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	if raw == "1" || strings.EqualFold(raw, "true") || strings.EqualFold(raw, "yes") {
		return true
	}
	if raw == "0" || strings.EqualFold(raw, "false") || strings.EqualFold(raw, "no") {
		return false
	}
	return defaultValue
}

// listEnvOrDefault splits a comma list, dropping blanks and lowercasing entries.
func listEnvOrDefault(key, defaultValue string) []string {
	out := splitList(envOrDefault(key, defaultValue))
	if len(out) == 0 {
		return splitList(defaultValue)
	}
	return out
}

// idListEnvOrDefault parses a comma list of positive ids. Bad entries are skipped.
func idListEnvOrDefault(key, defaultValue string) []int64 {
	parse := func(raw string) []int64 {
		var ids []int64
		for _, part := range splitList(raw) {
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			ids = append(ids, id)
		}
		return ids
	}
	if ids := parse(envOrDefault(key, defaultValue)); len(ids) > 0 {
		return ids
	}
	return parse(defaultValue)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
