package reconciler

import (
	"time"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// ReconcileElapsed decides which elapsed minute to show after a sync. It keeps
// the local estimate while the authoritative value is within tolerance and
// snaps to the authoritative value otherwise. With inclusive set, a delta equal
// to tolerance counts as within.
func ReconcileElapsed(local, authoritative, tolerance int, inclusive bool) (int, bool) {
	delta := authoritative - local
	if delta < 0 {
		delta = -delta
	}
	if delta < tolerance || (inclusive && delta == tolerance) {
		return local, false
	}
	return authoritative, true
}

// phaseCap bounds the displayed minute so stoppage time never runs away between syncs.
func phaseCap(p fixtures.Phase) int {
	switch p {
	case fixtures.PhaseFirstHalf:
		return 60
	case fixtures.PhaseSecondHalf:
		return 105
	case fixtures.PhaseExtraTime:
		return 135
	default:
		return 0
	}
}

// Tracked is the reconciler's view of one fixture between ticks.
type Tracked struct {
	Fixture fixtures.Fixture
	// LastKnownElapsed is the minute reported at LastSync.
	LastKnownElapsed int
	LastSync         time.Time
	anchored         bool
	// phase survives codes like INT that do not name one.
	phase fixtures.Phase
}

// DisplayElapsed derives the minute to show at now. The clock only advances
// during active play and is capped per phase.
func (t Tracked) DisplayElapsed(now time.Time) int {
	code := t.Fixture.Status.Code
	if !t.anchored || !code.IsActivePlay() || !now.After(t.LastSync) {
		return t.LastKnownElapsed
	}
	mins := t.LastKnownElapsed + int(now.Sub(t.LastSync)/time.Minute)
	if limit := phaseCap(t.phase); limit > 0 && mins > limit {
		if t.LastKnownElapsed > limit {
			return t.LastKnownElapsed
		}
		return limit
	}
	return mins
}

func (t *Tracked) anchor(elapsed int, at time.Time) {
	t.LastKnownElapsed = elapsed
	t.LastSync = at
	t.anchored = true
}

func newTracked(f fixtures.Fixture, syncedAt time.Time) *Tracked {
	t := &Tracked{Fixture: f, phase: f.Status.Code.Phase()}
	if f.Status.Elapsed != nil {
		t.anchor(*f.Status.Elapsed, syncedAt)
	}
	return t
}
