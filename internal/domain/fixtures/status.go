package fixtures

import "strings"

// StatusCode is the provider short code for a fixture's lifecycle state.
type StatusCode string

const (
	CodeTBD        StatusCode = "TBD"
	CodeNotStarted StatusCode = "NS"
	CodeFirstHalf  StatusCode = "1H"
	CodeHalftime   StatusCode = "HT"
	CodeSecondHalf StatusCode = "2H"
	CodeExtraTime  StatusCode = "ET"
	CodeBreakTime  StatusCode = "BT"
	CodePenalties  StatusCode = "P"
	CodeSuspended  StatusCode = "SUSP"
	CodeInterrupt  StatusCode = "INT"
	CodeFullTime   StatusCode = "FT"
	CodeAfterExtra StatusCode = "AET"
	CodeAfterPens  StatusCode = "PEN"
	CodePostponed  StatusCode = "PST"
	CodeCancelled  StatusCode = "CANC"
	CodeAbandoned  StatusCode = "ABD"
	CodeAwarded    StatusCode = "AWD"
	CodeWalkover   StatusCode = "WO"
	CodeLive       StatusCode = "LIVE"
)

var knownCodes = map[StatusCode]string{
	CodeTBD:        "Time To Be Defined",
	CodeNotStarted: "Not Started",
	CodeFirstHalf:  "First Half",
	CodeHalftime:   "Halftime",
	CodeSecondHalf: "Second Half",
	CodeExtraTime:  "Extra Time",
	CodeBreakTime:  "Break Time",
	CodePenalties:  "Penalty In Progress",
	CodeSuspended:  "Match Suspended",
	CodeInterrupt:  "Match Interrupted",
	CodeFullTime:   "Match Finished",
	CodeAfterExtra: "Match Finished After Extra Time",
	CodeAfterPens:  "Match Finished After Penalty",
	CodePostponed:  "Match Postponed",
	CodeCancelled:  "Match Cancelled",
	CodeAbandoned:  "Match Abandoned",
	CodeAwarded:    "Technical Loss",
	CodeWalkover:   "WalkOver",
	CodeLive:       "In Progress",
}

// ParseStatusCode normalizes a raw provider code; unknown codes map to TBD.
func ParseStatusCode(raw string) StatusCode {
	code := StatusCode(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownCodes[code]; ok {
		return code
	}
	return CodeTBD
}

// DefaultLabel returns the human label used when the provider omits one.
func (c StatusCode) DefaultLabel() string {
	return knownCodes[c]
}

// IsLive reports whether the fixture is currently being played (including breaks).
func (c StatusCode) IsLive() bool {
	switch c {
	case CodeFirstHalf, CodeHalftime, CodeSecondHalf, CodeExtraTime, CodeBreakTime,
		CodePenalties, CodeInterrupt, CodeLive:
		return true
	}
	return false
}

// IsActivePlay reports whether the match clock is running.
func (c StatusCode) IsActivePlay() bool {
	switch c {
	case CodeFirstHalf, CodeSecondHalf, CodeExtraTime, CodeLive:
		return true
	}
	return false
}

// IsFinished reports whether the fixture has a final result.
func (c StatusCode) IsFinished() bool {
	switch c {
	case CodeFullTime, CodeAfterExtra, CodeAfterPens, CodeAwarded, CodeWalkover:
		return true
	}
	return false
}

// IsUpcoming reports whether the fixture has not kicked off yet.
func (c StatusCode) IsUpcoming() bool {
	return c == CodeNotStarted || c == CodeTBD
}

// IsTerminal reports whether no further status changes are expected.
func (c StatusCode) IsTerminal() bool {
	return c.Phase().IsTerminal()
}
