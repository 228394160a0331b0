package config

import "time"

// Cache backends accepted by CACHE_BACKEND.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// TTLConfig holds the maximum age per freshness class.
type TTLConfig struct {
	Past    time.Duration `validate:"gt=0"`
	Today   time.Duration `validate:"gt=0"`
	Future  time.Duration `validate:"gt=0"`
	Live    time.Duration `validate:"gt=0"`
	Fixture time.Duration `validate:"gt=0"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `validate:"oneof=memory file sqlite redis"`
	Path          string `validate:"required_if=Backend file,required_if=Backend sqlite"`
	RedisAddr     string `validate:"required_if=Backend redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
	// RetentionDays bounds dated entries in the file backend.
	RetentionDays int `validate:"gte=1"`
}

// WarmConfig controls background cache warming.
type WarmConfig struct {
	Enabled      bool
	Days         int           `validate:"gte=1"`
	FutureDays   int           `validate:"gte=0"`
	Interval     time.Duration `validate:"gt=0"`
	DailyHourUTC int           `validate:"gte=0,lte=23"`
}

func loadTTLs() TTLConfig {
	return TTLConfig{
		Past:    durationEnvOrDefault(envTTLPast, defaultTTLPast),
		Today:   durationEnvOrDefault(envTTLToday, defaultTTLToday),
		Future:  durationEnvOrDefault(envTTLFuture, defaultTTLFuture),
		Live:    durationEnvOrDefault(envTTLLive, defaultTTLLive),
		Fixture: durationEnvOrDefault(envTTLFixture, defaultTTLFixture),
	}
}

func loadCache(warm WarmConfig) CacheConfig {
	return CacheConfig{
		Backend:       envOrDefault(envCacheBackend, defaultCacheBackend),
		Path:          envOrDefault(envCachePath, defaultCachePath),
		RedisAddr:     envOrDefault(envRedisAddr, ""),
		RedisPassword: envOrDefault(envRedisPassword, ""),
		RedisDB:       nonNegativeIntEnvOrDefault(envRedisDB, 0),
		// Never prune days the warmer still maintains, plus the crossover day.
		RetentionDays: max(defaultRetentionDays, warm.Days+1),
	}
}

func loadWarm() WarmConfig {
	return WarmConfig{
		Enabled:      boolEnvOrDefault(envWarmEnabled, defaultWarmEnabled),
		Days:         intEnvOrDefault(envWarmDays, defaultWarmDays),
		FutureDays:   nonNegativeIntEnvOrDefault(envWarmFutureDays, defaultWarmFutureDays),
		Interval:     durationEnvOrDefault(envWarmInterval, defaultWarmInterval),
		DailyHourUTC: nonNegativeIntEnvOrDefault(envWarmHour, defaultWarmDailyHour),
	}
}
