package config

import "time"

const (
	envPort              = "PORT"
	envProviders         = "PROVIDERS"
	envAPIFootballURL    = "APIFOOTBALL_BASE_URL"
	envAPIFootballKey    = "APIFOOTBALL_API_KEY"
	envCallTimeout       = "UPSTREAM_CALL_TIMEOUT"
	envMaxRetries        = "UPSTREAM_MAX_RETRIES"
	envBackoffBase       = "UPSTREAM_BACKOFF_BASE"
	envBackoffMax        = "UPSTREAM_BACKOFF_MAX"
	envRequestsPerMinute = "UPSTREAM_REQUESTS_PER_MINUTE"
	envBatchSize         = "WINDOW_BATCH_SIZE"
	envBatchPause        = "WINDOW_BATCH_PAUSE"
	envTimezone          = "SERVER_TIMEZONE"
	envActiveWindowHours = "ACTIVE_WINDOW_HOURS"
	envTTLPast           = "TTL_PAST"
	envTTLToday          = "TTL_TODAY"
	envTTLFuture         = "TTL_FUTURE"
	envTTLLive           = "TTL_LIVE"
	envTTLFixture        = "TTL_FIXTURE"
	envPopularLeagues    = "POPULAR_LEAGUES"
	envReconcileInterval = "RECONCILE_INTERVAL"
	envDriftTolerance    = "RECONCILE_DRIFT_TOLERANCE"
	envDriftInclusive    = "RECONCILE_DRIFT_INCLUSIVE"
	envReconcileWorkers  = "RECONCILE_WORKERS"
	envCacheBackend      = "CACHE_BACKEND"
	envCachePath         = "CACHE_PATH"
	envRedisAddr         = "REDIS_ADDR"
	envRedisPassword     = "REDIS_PASSWORD"
	envRedisDB           = "REDIS_DB"
	envWarmEnabled       = "CACHE_WARM_ENABLED"
	envWarmDays          = "CACHE_WARM_DAYS"
	envWarmFutureDays    = "CACHE_WARM_FUTURE_DAYS"
	envWarmInterval      = "CACHE_WARM_INTERVAL"
	envWarmHour          = "CACHE_WARM_DAILY_HOUR"
	envAdminToken        = "ADMIN_TOKEN"
	envCORSOrigins       = "CORS_ALLOWED_ORIGINS"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel          = "LOG_LEVEL"
	envLogFormat         = "LOG_FORMAT"

	defaultPort           = "4000"
	defaultProviders      = "fixture"
	defaultAPIFootballURL = "https://v3.football.api-sports.io"
	defaultCallTimeout    = 10 * time.Second
	defaultMaxRetries     = 3
	defaultBackoffBase    = 2 * time.Second
	defaultBackoffMax     = 30 * time.Second
	// API-Football free plans allow 10 req/min; paid plans are far higher.
	defaultRequestsPerMinute = 30
	defaultBatchSize         = 3
	defaultBatchPause        = 250 * time.Millisecond
	defaultTimezone          = "UTC"
	defaultActiveWindowHours = 8
	defaultTTLPast           = 24 * time.Hour
	defaultTTLToday          = 5 * time.Minute
	defaultTTLFuture         = 4 * time.Hour
	defaultTTLLive           = 2 * time.Minute
	defaultTTLFixture        = time.Hour
	defaultPopularLeagues    = "39,140,135,78,61,2,3"
	defaultReconcileInterval = 2 * time.Minute
	defaultDriftTolerance    = 3
	defaultDriftInclusive    = true
	defaultReconcileWorkers  = 4
	defaultCacheBackend      = "memory"
	defaultCachePath         = "data/cache"
	defaultRetentionDays     = 14
	defaultWarmEnabled       = false
	defaultWarmDays          = 3
	defaultWarmFutureDays    = 3
	defaultWarmInterval      = 30 * time.Second
	// UTC hour to re-warm and prune the cache (2 AM UTC by default).
	defaultWarmDailyHour = 2
	defaultMetricsPort   = "9090"
	defaultCORSOrigins   = "*"
	defaultServiceName   = "fixture-data-service"
	defaultLogLevel      = "info"
	defaultLogFormat     = "text"
)
