package providers

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/timeutil"
)

var (
	// ErrInvalidDateFormat is returned for empty or malformed dates. Never retried.
	ErrInvalidDateFormat = errors.New("invalid date format")
	// ErrUpstreamRateLimited marks 429 responses and quota errors in the body.
	ErrUpstreamRateLimited = errors.New("upstream rate limited")
	// ErrUpstreamUnavailable marks network failures, 5xx and unexpected statuses.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrPartialWindowFailure marks a single failed window in a multi-window fetch.
	ErrPartialWindowFailure = errors.New("partial window failure")
	// ErrFixtureNotFound is returned when no source knows the requested fixture.
	ErrFixtureNotFound = errors.New("fixture not found")
)

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// Is lets errors.Is(err, ErrUpstreamRateLimited) match a RateLimitError.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrUpstreamRateLimited
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// ValidateDate checks a YYYY-MM-DD date and marks failures as ErrInvalidDateFormat.
func ValidateDate(date string) error {
	if _, err := timeutil.ParseDate(date); err != nil {
		return errors.Mark(errors.Newf("date %q must be YYYY-MM-DD", date), ErrInvalidDateFormat)
	}
	return nil
}

// Unavailable wraps err with provider context and marks it ErrUpstreamUnavailable.
func Unavailable(provider string, err error) error {
	if err == nil {
		err = errors.New("no response")
	}
	return errors.Mark(errors.Wrapf(err, "provider %s", provider), ErrUpstreamUnavailable)
}
