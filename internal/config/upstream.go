package config

import "time"

// ProviderAPIFootball and ProviderFixture are the accepted PROVIDERS entries.
const (
	ProviderAPIFootball = "apifootball"
	ProviderFixture     = "fixture"
)

// APIFootballConfig holds credentials for the API-Football v3 provider.
type APIFootballConfig struct {
	BaseURL string `validate:"required,url"`
	APIKey  string
}

// UpstreamConfig bounds every upstream call: timeout, retries and the shared rate limit.
type UpstreamConfig struct {
	CallTimeout       time.Duration `validate:"gt=0"`
	MaxRetries        int           `validate:"gte=1"`
	BackoffBase       time.Duration `validate:"gt=0"`
	BackoffMax        time.Duration `validate:"gtefield=BackoffBase"`
	RequestsPerMinute int           `validate:"gt=0"`
}

// WindowConfig controls how the three date calls of a window are batched.
type WindowConfig struct {
	BatchSize  int           `validate:"gte=1"`
	BatchPause time.Duration `validate:"gte=0"`
}

func loadAPIFootball() APIFootballConfig {
	return APIFootballConfig{
		BaseURL: envOrDefault(envAPIFootballURL, defaultAPIFootballURL),
		APIKey:  envOrDefault(envAPIFootballKey, ""),
	}
}

func loadUpstream() UpstreamConfig {
	return UpstreamConfig{
		CallTimeout:       durationEnvOrDefault(envCallTimeout, defaultCallTimeout),
		MaxRetries:        intEnvOrDefault(envMaxRetries, defaultMaxRetries),
		BackoffBase:       durationEnvOrDefault(envBackoffBase, defaultBackoffBase),
		BackoffMax:        durationEnvOrDefault(envBackoffMax, defaultBackoffMax),
		RequestsPerMinute: intEnvOrDefault(envRequestsPerMinute, defaultRequestsPerMinute),
	}
}

func loadWindow() WindowConfig {
	return WindowConfig{
		BatchSize:  intEnvOrDefault(envBatchSize, defaultBatchSize),
		BatchPause: durationEnvOrDefault(envBatchPause, defaultBatchPause),
	}
}
