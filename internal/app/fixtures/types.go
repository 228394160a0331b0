package fixtures

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/classify"
	domainfixtures "github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// Source tells callers how a date result was produced.
type Source string

const (
	SourceFresh Source = "fresh"
	SourceCache Source = "cache"
	SourceStale Source = "stale"
	SourceEmpty Source = "empty"
)

// LiveSource tells callers where a live list came from.
type LiveSource string

const (
	LiveFromReconciler LiveSource = "reconciler"
	LiveFromCache      LiveSource = "cache"
	LiveFromUpstream   LiveSource = "upstream"
	LiveFromWindow     LiveSource = "window"
	LiveFromNone       LiveSource = "empty"
)

// Query shapes a date lookup.
type Query struct {
	// All keeps the neighbouring days of the window instead of only the requested date.
	All bool
	// Location is the caller's timezone for date filtering and labels. Nil uses the server zone.
	Location *time.Location
	// Reference is the date labels are computed against. Empty means today in Location.
	Reference   string
	Classify    bool
	PopularOnly bool
}

// View is a fixture with an optional classification.
type View struct {
	domainfixtures.Fixture
	Classification *classify.Result `json:"classification,omitempty"`
}

// DateResult is the answer for a date or league lookup.
type DateResult struct {
	Date      string    `json:"date"`
	Fixtures  []View    `json:"fixtures"`
	Source    Source    `json:"source"`
	WrittenAt time.Time `json:"writtenAt"`
}

// LiveResult is the answer for the live lookup.
type LiveResult struct {
	Fixtures  []domainfixtures.Fixture `json:"fixtures"`
	Source    LiveSource               `json:"source"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// FixtureResult is the answer for a single fixture lookup.
type FixtureResult struct {
	Fixture   domainfixtures.Fixture `json:"fixture"`
	Source    Source                 `json:"source"`
	WrittenAt time.Time              `json:"writtenAt"`
}
