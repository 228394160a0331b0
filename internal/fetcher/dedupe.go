package fetcher

import (
	"slices"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// SourceKind ranks where a fixture list came from. Higher values win.
type SourceKind int

const (
	SourceDate SourceKind = iota
	SourceLeague
	SourceLive
)

func (k SourceKind) String() string {
	switch k {
	case SourceLive:
		return "live"
	case SourceLeague:
		return "league"
	default:
		return "date"
	}
}

// Source is one fixture list fed into Merge.
type Source struct {
	Kind     SourceKind
	Fixtures []fixtures.Fixture
}

// Merge collapses sources into one list with a single entry per fixture id.
// Sources are visited live, league, then date. An id already present is only
// replaced by a candidate of higher priority, or of equal priority whose status
// moves the fixture strictly forward. Output order is first-seen order.
func Merge(sources ...Source) []fixtures.Fixture {
	ordered := slices.Clone(sources)
	slices.SortStableFunc(ordered, func(a, b Source) int {
		return int(b.Kind) - int(a.Kind)
	})

	total := 0
	for _, s := range ordered {
		total += len(s.Fixtures)
	}
	out := make([]fixtures.Fixture, 0, total)
	kinds := make([]SourceKind, 0, total)
	index := make(map[int64]int, total)

	for _, src := range ordered {
		for _, f := range src.Fixtures {
			pos, seen := index[f.ID]
			if !seen {
				index[f.ID] = len(out)
				out = append(out, f)
				kinds = append(kinds, src.Kind)
				continue
			}
			if fresher(out[pos], kinds[pos], f, src.Kind) {
				out[pos] = f
				kinds[pos] = src.Kind
			}
		}
	}
	return out
}

func fresher(current fixtures.Fixture, currentKind SourceKind, candidate fixtures.Fixture, candidateKind SourceKind) bool {
	if candidateKind != currentKind {
		return candidateKind > currentKind
	}
	from := current.Status.Code.Phase()
	to := candidate.Status.Code.PhaseAfter(from)
	return from != to && fixtures.CanTransition(from, to)
}

// SameSet reports whether two payloads hold the same fixtures regardless of order.
func SameSet(a, b []fixtures.Fixture) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[int64]fixtures.Fixture, len(a))
	for _, f := range a {
		byID[f.ID] = f
	}
	if len(byID) != len(a) {
		return false
	}
	for _, f := range b {
		other, ok := byID[f.ID]
		if !ok || !sameFixture(f, other) {
			return false
		}
		delete(byID, f.ID)
	}
	return len(byID) == 0
}

func sameFixture(a, b fixtures.Fixture) bool {
	return a.ID == b.ID &&
		a.Provider == b.Provider &&
		a.Kickoff.Equal(b.Kickoff) &&
		a.Status.Code == b.Status.Code &&
		equalInt(a.Status.Elapsed, b.Status.Elapsed) &&
		equalInt(a.Score.Home, b.Score.Home) &&
		equalInt(a.Score.Away, b.Score.Away) &&
		a.League.ID == b.League.ID &&
		a.Home.ID == b.Home.ID &&
		a.Away.ID == b.Away.ID
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
