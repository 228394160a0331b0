// Package classify labels fixtures relative to a reference date and flags the
// ones inside the active window.
package classify

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

// Label is the calendar bucket of a fixture.
type Label string

const (
	LabelToday     Label = "today"
	LabelTomorrow  Label = "tomorrow"
	LabelYesterday Label = "yesterday"
	LabelCustom    Label = "custom"
)

const (
	// DefaultWindow bounds the active window on both sides of now.
	DefaultWindow = 8 * time.Hour
	// AssumedDuration approximates kickoff to final whistle.
	AssumedDuration = 2 * time.Hour
)

// Reasons name the rule that decided the active flag.
const (
	ReasonLive          = "status is live"
	ReasonUpcoming      = "kickoff within window"
	ReasonRecentFinish  = "finished within window"
	ReasonOutsideWindow = "outside active window"
	ReasonCountdown     = "custom date, kickoff within countdown window"
	ReasonCustom        = "custom date outside countdown window"
)

// Options carries the clock and location a classification is computed against.
type Options struct {
	Now      time.Time
	Location *time.Location
	Window   time.Duration
}

func (o Options) normalized() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Result is a derived classification; it depends on Now and is never cached.
type Result struct {
	Label                Label  `json:"label"`
	IsWithinActiveWindow bool   `json:"isWithinActiveWindow"`
	Reason               string `json:"reason"`
}

// Classify labels f against the reference date (YYYY-MM-DD). The label is
// anchored to the kickoff's calendar date in opts.Location; activity is a
// separate flag, so an old finished fixture keeps its date label.
func Classify(f fixtures.Fixture, reference string, opts Options) Result {
	opts = opts.normalized()
	local := f.LocalDate(opts.Location)

	var label Label
	switch local {
	case reference:
		label = LabelToday
	case shift(reference, 1):
		label = LabelTomorrow
	case shift(reference, -1):
		label = LabelYesterday
	default:
		label = LabelCustom
	}

	if label == LabelCustom {
		if !f.Kickoff.Before(opts.Now) && !f.Kickoff.After(opts.Now.Add(opts.Window)) {
			return Result{Label: label, IsWithinActiveWindow: true, Reason: ReasonCountdown}
		}
		return Result{Label: label, Reason: ReasonCustom}
	}

	active, reason := activeWindow(f, opts.Now, opts.Window)
	return Result{Label: label, IsWithinActiveWindow: active, Reason: reason}
}

// InActiveWindow reports whether f is live, kicks off within window after now,
// or finished within window before now.
func InActiveWindow(f fixtures.Fixture, now time.Time, window time.Duration) bool {
	if window <= 0 {
		window = DefaultWindow
	}
	active, _ := activeWindow(f, now, window)
	return active
}

func activeWindow(f fixtures.Fixture, now time.Time, window time.Duration) (bool, string) {
	if f.Status.Code.IsLive() {
		return true, ReasonLive
	}
	if f.Kickoff.After(now) && !f.Kickoff.After(now.Add(window)) {
		return true, ReasonUpcoming
	}
	finish := f.Kickoff.Add(AssumedDuration)
	if !finish.Before(now.Add(-window)) && !finish.After(now) {
		return true, ReasonRecentFinish
	}
	return false, ReasonOutsideWindow
}

func shift(date string, days int) string {
	out, err := timeutil.AddDays(date, days)
	if err != nil {
		return ""
	}
	return out
}
