package providers

import (
	"testing"

	"github.com/preston-bernstein/fixture-data-service/internal/teststubs"
)

func TestFixtureProviderInterfaceImplemented(t *testing.T) {
	var _ FixtureProvider = (*teststubs.StubProvider)(nil)
	var _ FixtureProvider = (*retryingProvider)(nil)
	var _ FixtureProvider = (*rateLimitedProvider)(nil)
	var _ FixtureProvider = (*fallbackProvider)(nil)
}
