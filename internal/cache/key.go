package cache

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Kind names the scope an entry was cached under.
type Kind string

const (
	KindDate    Kind = "date"
	KindLeague  Kind = "league"
	KindLive    Kind = "live"
	KindWindow  Kind = "window"
	KindFixture Kind = "fixture"
)

// ErrInvalidKey marks a key string that does not parse as kind:value.
var ErrInvalidKey = errors.New("invalid cache key")

// ScopeKey identifies a cache entry. Its canonical form is kind:value.
type ScopeKey struct {
	Kind  Kind
	Value string
}

func (k ScopeKey) String() string {
	return string(k.Kind) + ":" + k.Value
}

func DateKey(date string) ScopeKey {
	return ScopeKey{Kind: KindDate, Value: date}
}

func WindowKey(date string) ScopeKey {
	return ScopeKey{Kind: KindWindow, Value: date}
}

func LeagueKey(leagueID int64, date string) ScopeKey {
	return ScopeKey{Kind: KindLeague, Value: strconv.FormatInt(leagueID, 10) + ":" + date}
}

func LiveKey() ScopeKey {
	return ScopeKey{Kind: KindLive, Value: "all"}
}

func FixtureKey(id int64) ScopeKey {
	return ScopeKey{Kind: KindFixture, Value: strconv.FormatInt(id, 10)}
}

// ParseKey reverses ScopeKey.String.
func ParseKey(s string) (ScopeKey, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return ScopeKey{}, errors.Mark(errors.Newf("key %q", s), ErrInvalidKey)
	}
	switch Kind(kind) {
	case KindDate, KindLeague, KindLive, KindWindow, KindFixture:
		return ScopeKey{Kind: Kind(kind), Value: value}, nil
	default:
		return ScopeKey{}, errors.Mark(errors.Newf("unknown kind in key %q", s), ErrInvalidKey)
	}
}

// Date returns the calendar date a key is scoped to, if any.
func (k ScopeKey) Date() (string, bool) {
	switch k.Kind {
	case KindDate, KindWindow:
		return k.Value, true
	case KindLeague:
		if _, date, ok := strings.Cut(k.Value, ":"); ok {
			return date, true
		}
	}
	return "", false
}
