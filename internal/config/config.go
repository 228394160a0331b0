package config

import (
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port           string   `validate:"required,numeric"`
	Providers      []string `validate:"min=1,dive,oneof=apifootball fixture"`
	APIFootball    APIFootballConfig
	Upstream       UpstreamConfig
	Window         WindowConfig
	Timezone       string        `validate:"required,timezone"`
	ActiveWindow   time.Duration `validate:"gt=0"`
	TTLs           TTLConfig
	PopularLeagues []int64 `validate:"dive,gt=0"`
	Reconcile      ReconcileConfig
	Cache          CacheConfig
	Warm           WarmConfig
	AdminToken     string
	CORSOrigins    []string `validate:"min=1"`
	Metrics        MetricsConfig
	Log            LogConfig
}

// ReconcileConfig controls the live reconciler.
type ReconcileConfig struct {
	Interval       time.Duration `validate:"gt=0"`
	DriftTolerance int           `validate:"gte=0"`
	DriftInclusive bool
	Workers        int `validate:"gte=1"`
}

// Load reads configuration from environment variables with sensible defaults.
// Unparsable values fall back to defaults; values that parse but make no sense fail Validate.
func Load() (Config, error) {
	warm := loadWarm()
	cfg := Config{
		Port:           envOrDefault(envPort, defaultPort),
		Providers:      listEnvOrDefault(envProviders, defaultProviders),
		APIFootball:    loadAPIFootball(),
		Upstream:       loadUpstream(),
		Window:         loadWindow(),
		Timezone:       envOrDefault(envTimezone, defaultTimezone),
		ActiveWindow:   time.Duration(intEnvOrDefault(envActiveWindowHours, defaultActiveWindowHours)) * time.Hour,
		TTLs:           loadTTLs(),
		PopularLeagues: idListEnvOrDefault(envPopularLeagues, defaultPopularLeagues),
		Reconcile: ReconcileConfig{
			Interval:       durationEnvOrDefault(envReconcileInterval, defaultReconcileInterval),
			DriftTolerance: nonNegativeIntEnvOrDefault(envDriftTolerance, defaultDriftTolerance),
			DriftInclusive: boolEnvOrDefault(envDriftInclusive, defaultDriftInclusive),
			Workers:        intEnvOrDefault(envReconcileWorkers, defaultReconcileWorkers),
		},
		Cache:       loadCache(warm),
		Warm:        warm,
		AdminToken:  envOrDefault(envAdminToken, ""),
		CORSOrigins: listEnvOrDefault(envCORSOrigins, defaultCORSOrigins),
		Metrics:     loadMetrics(),
		Log:         loadLog(),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints and the rules that span fields.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if c.UsesProvider(ProviderAPIFootball) && c.APIFootball.APIKey == "" {
		return errors.Newf("invalid configuration: %s requires %s", ProviderAPIFootball, envAPIFootballKey)
	}
	return nil
}

// UsesProvider reports whether name appears in the provider chain.
func (c Config) UsesProvider(name string) bool {
	return slices.Contains(c.Providers, name)
}

// Location resolves Timezone. Validate has already rejected unknown names.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
