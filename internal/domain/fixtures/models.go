package fixtures

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/teams"
)

// Status carries the provider code, its label and the elapsed match minutes.
type Status struct {
	Code    StatusCode `json:"code"`
	Label   string     `json:"label"`
	Elapsed *int       `json:"elapsed,omitempty"`
}

// League identifies the competition a fixture belongs to.
type League struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Logo    string `json:"logo,omitempty"`
	Season  int    `json:"season,omitempty"`
}

// Score holds goals; both sides are nil before kickoff.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Fixture is the canonical match shape exposed by the service.
type Fixture struct {
	ID        int64      `json:"id"`
	Provider  string     `json:"provider"`
	Kickoff   time.Time  `json:"kickoff"`
	Status    Status     `json:"status"`
	League    League     `json:"league"`
	Home      teams.Team `json:"home"`
	Away      teams.Team `json:"away"`
	Score     Score      `json:"score"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty"`
}

// LocalDate returns the kickoff calendar date in loc (UTC when nil).
func (f Fixture) LocalDate(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return f.Kickoff.In(loc).Format("2006-01-02")
}

// IntPtr is a small helper for building scores and elapsed minutes.
func IntPtr(v int) *int {
	return &v
}
