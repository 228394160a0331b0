package server

import (
	"log/slog"

	"github.com/preston-bernstein/fixture-data-service/internal/config"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/providers/apifootball"
	"github.com/preston-bernstein/fixture-data-service/internal/providers/fixture"
)

func selectProvider(name string, cfg config.Config, logger *slog.Logger) providers.FixtureProvider {
	switch name {
	case config.ProviderFixture, "":
		return fixture.New()
	case config.ProviderAPIFootball:
		return apifootball.NewClient(apifootball.Config{
			BaseURL: cfg.APIFootball.BaseURL,
			APIKey:  cfg.APIFootball.APIKey,
			Logger:  logger,
		})
	default:
		if logger != nil {
			logger.Warn("unknown provider, skipping", slog.String("provider", name))
		}
		return nil
	}
}
