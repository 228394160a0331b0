package fixtures

// Phase is the coarse lifecycle state used by live reconciliation.
type Phase int

const (
	PhaseScheduled Phase = iota
	PhaseFirstHalf
	PhaseHalftime
	PhaseSecondHalf
	PhaseExtraTime
	PhasePenalties
	PhaseFinished
	PhaseSuspended
	PhasePostponed
	PhaseCancelled
	PhaseAbandoned
)

var phaseNames = [...]string{
	"scheduled", "first_half", "halftime", "second_half", "extra_time",
	"penalties", "finished", "suspended", "postponed", "cancelled", "abandoned",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// IsTerminal reports whether the phase is finished or one of the absorbing alternates.
func (p Phase) IsTerminal() bool {
	return p >= PhaseFinished
}

// IsAbsorbingAlternate reports suspended/postponed/cancelled/abandoned.
func (p Phase) IsAbsorbingAlternate() bool {
	return p > PhaseFinished
}

// Phase maps a status code onto the reconciliation state machine.
// INT and LIVE do not name a half; on their own they map to the first half.
// Use PhaseAfter when the previous phase is known.
func (c StatusCode) Phase() Phase {
	switch c {
	case CodeFirstHalf, CodeLive, CodeInterrupt:
		return PhaseFirstHalf
	case CodeHalftime:
		return PhaseHalftime
	case CodeSecondHalf:
		return PhaseSecondHalf
	case CodeExtraTime, CodeBreakTime:
		return PhaseExtraTime
	case CodePenalties:
		return PhasePenalties
	case CodeFullTime, CodeAfterExtra, CodeAfterPens, CodeAwarded, CodeWalkover:
		return PhaseFinished
	case CodeSuspended:
		return PhaseSuspended
	case CodePostponed:
		return PhasePostponed
	case CodeCancelled:
		return PhaseCancelled
	case CodeAbandoned:
		return PhaseAbandoned
	default:
		return PhaseScheduled
	}
}

// PhaseAfter maps c given the phase the fixture was in. INT and LIVE keep an
// in-play phase unchanged so an interruption never moves the match forward.
func (c StatusCode) PhaseAfter(prev Phase) Phase {
	if (c == CodeInterrupt || c == CodeLive) && prev >= PhaseFirstHalf && prev <= PhasePenalties {
		return prev
	}
	return c.Phase()
}

// CanTransition reports whether a fixture may move from one phase to another.
// Phases only move forward; terminal phases never change.
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	if to.IsAbsorbingAlternate() {
		return true
	}
	return to > from
}
