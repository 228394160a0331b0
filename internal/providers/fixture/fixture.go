package fixture

import (
	"context"
	"strconv"
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/domain/teams"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

const providerName = "fixture"

type slot struct {
	kickoff time.Duration // offset from UTC midnight
	league  fixtures.League
	home    teams.Team
	away    teams.Team
	goals   [2]int
}

var slots = []slot{
	{
		kickoff: 12 * time.Hour,
		league:  fixtures.League{ID: 39, Name: "Premier League", Country: "England", Season: 2024},
		home:    teams.Team{ID: 33, Name: "Manchester United"},
		away:    teams.Team{ID: 34, Name: "Newcastle"},
		goals:   [2]int{2, 1},
	},
	{
		kickoff: 15 * time.Hour,
		league:  fixtures.League{ID: 140, Name: "La Liga", Country: "Spain", Season: 2024},
		home:    teams.Team{ID: 529, Name: "Barcelona"},
		away:    teams.Team{ID: 541, Name: "Real Madrid"},
		goals:   [2]int{1, 1},
	},
	{
		kickoff: 19 * time.Hour,
		league:  fixtures.League{ID: 135, Name: "Serie A", Country: "Italy", Season: 2024},
		home:    teams.Team{ID: 489, Name: "AC Milan"},
		away:    teams.Team{ID: 505, Name: "Inter"},
		goals:   [2]int{0, 2},
	},
	{
		kickoff: 22*time.Hour + 30*time.Minute,
		league:  fixtures.League{ID: 253, Name: "Major League Soccer", Country: "USA", Season: 2025},
		home:    teams.Team{ID: 1600, Name: "LA Galaxy"},
		away:    teams.Team{ID: 1602, Name: "Seattle Sounders"},
		goals:   [2]int{3, 3},
	},
}

// Provider returns a deterministic set of fixtures useful for local testing and bootstrapping.
// Statuses and scores follow the clock so live reconciliation has something to track.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now: time.Now,
	}
}

// FetchByDate returns the example fixtures for date.
func (p *Provider) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	_ = ctx
	day, err := timeutil.ParseDate(date)
	if err != nil {
		return nil, providers.ValidateDate(date)
	}
	now := p.now()
	out := make([]fixtures.Fixture, 0, len(slots))
	for i := range slots {
		out = append(out, p.build(day, i, now))
	}
	return out, nil
}

// FetchLive returns fixtures from today and yesterday that are in play right now.
func (p *Provider) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	now := p.now().UTC()
	today := now.Truncate(24 * time.Hour)
	var live []fixtures.Fixture
	for _, day := range []time.Time{today.AddDate(0, 0, -1), today} {
		list, err := p.FetchByDate(ctx, timeutil.FormatDate(day))
		if err != nil {
			return nil, err
		}
		for _, f := range list {
			if f.Status.Code.IsLive() {
				live = append(live, f)
			}
		}
	}
	return live, nil
}

// FetchByID rebuilds the fixture encoded in id (yyyymmdd*10 + slot).
func (p *Provider) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	_ = ctx
	idx := int(id % 10)
	if id <= 0 || idx >= len(slots) {
		return fixtures.Fixture{}, false, nil
	}
	day, err := time.Parse("20060102", strconv.FormatInt(id/10, 10))
	if err != nil {
		return fixtures.Fixture{}, false, nil
	}
	return p.build(day, idx, p.now()), true, nil
}

func (p *Provider) build(day time.Time, idx int, now time.Time) fixtures.Fixture {
	s := slots[idx]
	id, _ := strconv.ParseInt(day.Format("20060102"), 10, 64)
	kickoff := day.UTC().Add(s.kickoff)

	f := fixtures.Fixture{
		ID:       id*10 + int64(idx),
		Provider: providerName,
		Kickoff:  kickoff,
		League:   s.league,
		Home:     s.home,
		Away:     s.away,
	}
	code, elapsed := progress(kickoff, now)
	f.Status = fixtures.Status{Code: code, Label: code.DefaultLabel()}
	if code != fixtures.CodeNotStarted {
		f.Status.Elapsed = fixtures.IntPtr(elapsed)
		home, away := s.goals[0], s.goals[1]
		if !code.IsFinished() {
			// goals arrive evenly across the match
			home = home * elapsed / 90
			away = away * elapsed / 90
		}
		f.Score = fixtures.Score{Home: fixtures.IntPtr(home), Away: fixtures.IntPtr(away)}
	}
	return f
}

// progress maps wall-clock minutes since kickoff onto a 90 minute match with a 15 minute break.
func progress(kickoff, now time.Time) (fixtures.StatusCode, int) {
	mins := int(now.Sub(kickoff) / time.Minute)
	switch {
	case mins < 0:
		return fixtures.CodeNotStarted, 0
	case mins < 45:
		return fixtures.CodeFirstHalf, mins
	case mins < 60:
		return fixtures.CodeHalftime, 45
	case mins < 105:
		return fixtures.CodeSecondHalf, mins - 15
	default:
		return fixtures.CodeFullTime, 90
	}
}
