package server

import "strings"

// normalizeProviderName joins the configured chain into one lower-cased label for metrics and logs.
func normalizeProviderName(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.ToLower(strings.TrimSpace(n)); n != "" {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "provider"
	}
	return strings.Join(parts, "+")
}
