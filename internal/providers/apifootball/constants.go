package apifootball

import "time"

const (
	providerName       = "apifootball"
	defaultBaseURL     = "https://v3.football.api-sports.io"
	defaultHTTPTimeout = 15 * time.Second
	fixturesPath       = "/fixtures"
	apiKeyHeader       = "x-apisports-key"
	remainingHeader    = "x-ratelimit-requests-remaining"
	maxErrorBody       = 512
)
