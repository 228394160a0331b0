package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

func fx(id int64, code fixtures.StatusCode) fixtures.Fixture {
	return fixtures.Fixture{
		ID:       id,
		Provider: "test",
		Kickoff:  time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC),
		Status:   fixtures.Status{Code: code},
	}
}

func ids(list []fixtures.Fixture) []int64 {
	out := make([]int64, 0, len(list))
	for _, f := range list {
		out = append(out, f.ID)
	}
	return out
}

func TestMergeYieldsUniqueIDs(t *testing.T) {
	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeNotStarted), fx(2, fixtures.CodeNotStarted)}},
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(2, fixtures.CodeNotStarted), fx(3, fixtures.CodeNotStarted)}},
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(3, fixtures.CodeNotStarted), fx(1, fixtures.CodeNotStarted)}},
	)
	assert.Equal(t, []int64{1, 2, 3}, ids(out))
}

func TestMergeOutputNoLongerThanInput(t *testing.T) {
	in := []Source{
		{Kind: SourceLive, Fixtures: []fixtures.Fixture{fx(5, fixtures.CodeFirstHalf)}},
		{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(5, fixtures.CodeNotStarted), fx(6, fixtures.CodeNotStarted)}},
	}
	out := Merge(in...)
	assert.LessOrEqual(t, len(out), 3)
	assert.Len(t, out, 2)
}

func TestMergeLiveBeatsDateRegardlessOfOrder(t *testing.T) {
	dateCopy := fx(1035, fixtures.CodeNotStarted)
	liveCopy := fx(1035, fixtures.CodeSecondHalf)
	liveCopy.Status.Elapsed = fixtures.IntPtr(67)

	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{dateCopy}},
		Source{Kind: SourceLive, Fixtures: []fixtures.Fixture{liveCopy}},
	)
	require.Len(t, out, 1)
	assert.Equal(t, fixtures.CodeSecondHalf, out[0].Status.Code)
	require.NotNil(t, out[0].Status.Elapsed)
	assert.Equal(t, 67, *out[0].Status.Elapsed)
}

func TestMergeLeagueBeatsDate(t *testing.T) {
	date := fx(1, fixtures.CodeNotStarted)
	league := fx(1, fixtures.CodeNotStarted)
	league.League.Name = "from league"

	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{date}},
		Source{Kind: SourceLeague, Fixtures: []fixtures.Fixture{league}},
	)
	require.Len(t, out, 1)
	assert.Equal(t, "from league", out[0].League.Name)
}

func TestMergeSamePriorityPrefersForwardProgress(t *testing.T) {
	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeFirstHalf), fx(2, fixtures.CodeFullTime)}},
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeHalftime), fx(2, fixtures.CodeSecondHalf)}},
	)
	require.Len(t, out, 2)
	assert.Equal(t, fixtures.CodeHalftime, out[0].Status.Code, "forward move replaces")
	assert.Equal(t, fixtures.CodeFullTime, out[1].Status.Code, "backward move is ignored")
}

func TestMergeInterruptionDoesNotOutrankSecondHalf(t *testing.T) {
	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeSecondHalf), fx(2, fixtures.CodeInterrupt)}},
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeInterrupt), fx(2, fixtures.CodeHalftime)}},
	)
	require.Len(t, out, 2)
	assert.Equal(t, fixtures.CodeSecondHalf, out[0].Status.Code)
	assert.Equal(t, fixtures.CodeHalftime, out[1].Status.Code, "first-half interruption can still reach halftime")
}

func TestMergeSamePrioritySamePhaseKeepsFirstSeen(t *testing.T) {
	first := fx(1, fixtures.CodeSecondHalf)
	first.Status.Elapsed = fixtures.IntPtr(50)
	second := fx(1, fixtures.CodeSecondHalf)
	second.Status.Elapsed = fixtures.IntPtr(55)

	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{first}},
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{second}},
	)
	require.Len(t, out, 1)
	assert.Equal(t, 50, *out[0].Status.Elapsed)
}

func TestMergeKeepsFirstSeenOrderAfterPriority(t *testing.T) {
	out := Merge(
		Source{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(3, fixtures.CodeNotStarted), fx(1, fixtures.CodeNotStarted)}},
		Source{Kind: SourceLive, Fixtures: []fixtures.Fixture{fx(2, fixtures.CodeFirstHalf)}},
	)
	assert.Equal(t, []int64{2, 3, 1}, ids(out))
}

func TestMergeIsIdempotent(t *testing.T) {
	sources := []Source{
		{Kind: SourceLive, Fixtures: []fixtures.Fixture{fx(2, fixtures.CodeFirstHalf)}},
		{Kind: SourceDate, Fixtures: []fixtures.Fixture{fx(1, fixtures.CodeNotStarted), fx(2, fixtures.CodeNotStarted)}},
	}
	once := Merge(sources...)
	twice := Merge(Source{Kind: SourceDate, Fixtures: once})
	assert.True(t, SameSet(once, twice))
	assert.True(t, SameSet(once, Merge(sources...)))
}

func TestMergeEmpty(t *testing.T) {
	assert.Empty(t, Merge())
	assert.Empty(t, Merge(Source{Kind: SourceDate}))
}

func TestSameSet(t *testing.T) {
	a := []fixtures.Fixture{fx(1, fixtures.CodeNotStarted), fx(2, fixtures.CodeFullTime)}
	b := []fixtures.Fixture{fx(2, fixtures.CodeFullTime), fx(1, fixtures.CodeNotStarted)}
	assert.True(t, SameSet(a, b))

	changed := []fixtures.Fixture{fx(2, fixtures.CodeFullTime), fx(1, fixtures.CodeFirstHalf)}
	assert.False(t, SameSet(a, changed))
	assert.False(t, SameSet(a, a[:1]))

	dup := []fixtures.Fixture{fx(1, fixtures.CodeNotStarted), fx(1, fixtures.CodeNotStarted)}
	assert.False(t, SameSet(dup, a))

	scored := fx(1, fixtures.CodeFullTime)
	scored.Score.Home = fixtures.IntPtr(1)
	otherScore := fx(1, fixtures.CodeFullTime)
	otherScore.Score.Home = fixtures.IntPtr(2)
	assert.False(t, SameSet([]fixtures.Fixture{scored}, []fixtures.Fixture{otherScore}))
}

func TestSourceKindString(t *testing.T) {
	assert.Equal(t, "live", SourceLive.String())
	assert.Equal(t, "league", SourceLeague.String())
	assert.Equal(t, "date", SourceDate.String())
}
