package testutil

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/domain/teams"
)

// SampleFixture returns a Premier League fixture with the given id, kickoff and status.
func SampleFixture(id int64, kickoff time.Time, code fixtures.StatusCode) fixtures.Fixture {
	f := fixtures.Fixture{
		ID:       id,
		Provider: "test",
		Kickoff:  kickoff,
		Status:   fixtures.Status{Code: code, Label: code.DefaultLabel()},
		League:   fixtures.League{ID: 39, Name: "Premier League", Country: "England", Season: kickoff.Year()},
		Home:     teams.Team{ID: 40, Name: "Liverpool"},
		Away:     teams.Team{ID: 50, Name: "Manchester City"},
	}
	if code.Phase() != fixtures.PhaseScheduled {
		f.Score = fixtures.Score{Home: fixtures.IntPtr(0), Away: fixtures.IntPtr(0)}
	}
	return f
}

// InLeague returns f moved to another league.
func InLeague(f fixtures.Fixture, leagueID int64) fixtures.Fixture {
	f.League = fixtures.League{ID: leagueID, Name: "League"}
	return f
}
