package timeutil

import (
	"strings"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// FormatDate formats a time as YYYY-MM-DD in its current location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(date string, n int) (string, error) {
	parsed, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return FormatDate(parsed.AddDate(0, 0, n)), nil
}

// DateIn returns the calendar date of t as observed in loc (UTC when loc is nil).
func DateIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FormatDate(t.In(loc))
}

// CompareDates orders two YYYY-MM-DD strings; lexical order matches calendar order.
func CompareDates(a, b string) int {
	return strings.Compare(a, b)
}

// LoadLocation resolves an IANA name, falling back to UTC for empty or unknown names.
func LoadLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolveLocation resolves an IANA name and reports whether it was valid.
// An empty name resolves to fallback.
func ResolveLocation(name string, fallback *time.Location) (*time.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		if fallback == nil {
			fallback = time.UTC
		}
		return fallback, true
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, false
	}
	return loc, true
}
