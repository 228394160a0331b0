package providers

import (
	"context"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// FixtureProvider defines how upstream fixture data is fetched and normalized.
// Dates are YYYY-MM-DD strings; implementations return fixtures already parsed
// into the closed domain types.
type FixtureProvider interface {
	FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error)
	FetchLive(ctx context.Context) ([]fixtures.Fixture, error)
	// FetchByID reports found=false with a nil error when the upstream has no such fixture.
	FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error)
}

// NamedProvider pairs a provider with the name used in logs and metrics.
type NamedProvider struct {
	Name     string
	Provider FixtureProvider
}
