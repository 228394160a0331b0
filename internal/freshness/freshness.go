// Package freshness decides how long a cached fixture list may be served.
package freshness

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// DateClass buckets a date relative to the server's calendar day.
type DateClass string

const (
	ClassPast   DateClass = "past"
	ClassToday  DateClass = "today"
	ClassFuture DateClass = "future"
	ClassLive   DateClass = "live"
	ClassByID   DateClass = "by_id"
)

// Decision is what a caller should do with a cache lookup.
type Decision int

const (
	Miss Decision = iota
	Refetch
	ServeCached
)

func (d Decision) String() string {
	switch d {
	case ServeCached:
		return "serve_cached"
	case Refetch:
		return "refetch"
	default:
		return "miss"
	}
}

// TTLs holds the maximum age per class.
type TTLs struct {
	Past   time.Duration
	Today  time.Duration
	Future time.Duration
	Live   time.Duration
	ByID   time.Duration
}

// DefaultTTLs returns the stock maximum ages.
func DefaultTTLs() TTLs {
	return TTLs{
		Past:   24 * time.Hour,
		Today:  5 * time.Minute,
		Future: 4 * time.Hour,
		Live:   2 * time.Minute,
		ByID:   time.Hour,
	}
}

// Policy classifies dates against the server day and applies TTLs.
type Policy struct {
	ttls TTLs
	loc  *time.Location
}

// NewPolicy builds a policy; zero TTLs fall back to defaults and a nil location means UTC.
func NewPolicy(ttls TTLs, loc *time.Location) *Policy {
	def := DefaultTTLs()
	if ttls.Past <= 0 {
		ttls.Past = def.Past
	}
	if ttls.Today <= 0 {
		ttls.Today = def.Today
	}
	if ttls.Future <= 0 {
		ttls.Future = def.Future
	}
	if ttls.Live <= 0 {
		ttls.Live = def.Live
	}
	if ttls.ByID <= 0 {
		ttls.ByID = def.ByID
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{ttls: ttls, loc: loc}
}

// Location is the timezone that defines "today".
func (p *Policy) Location() *time.Location {
	return p.loc
}

// Classify buckets date as past, today or future relative to now in the policy location.
func (p *Policy) Classify(date string, now time.Time) DateClass {
	switch c := timeutil.CompareDates(date, timeutil.DateIn(now, p.loc)); {
	case c < 0:
		return ClassPast
	case c == 0:
		return ClassToday
	default:
		return ClassFuture
	}
}

// MaxAge returns the TTL for a class.
func (p *Policy) MaxAge(class DateClass) time.Duration {
	switch class {
	case ClassPast:
		return p.ttls.Past
	case ClassToday:
		return p.ttls.Today
	case ClassFuture:
		return p.ttls.Future
	case ClassLive:
		return p.ttls.Live
	case ClassByID:
		return p.ttls.ByID
	default:
		return 0
	}
}

// Decide reports whether an entry written at writtenAt can be served.
// found=false means there is no entry at all.
func (p *Policy) Decide(writtenAt time.Time, found bool, class DateClass, now time.Time) Decision {
	if !found {
		return Miss
	}
	if IsFresh(writtenAt, p.MaxAge(class), now) {
		return ServeCached
	}
	return Refetch
}

// IsFresh reports whether an entry is strictly younger than maxAge.
func IsFresh(writtenAt time.Time, maxAge time.Duration, now time.Time) bool {
	return now.Sub(writtenAt) < maxAge
}
