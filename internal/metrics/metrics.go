package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

// Recorder captures in-memory metrics about provider calls, cache lookups and
// reconciliation, and forwards them to OTel instruments when configured.
type Recorder struct {
	mu             sync.Mutex
	stats          map[string]*providerStats
	cacheLookups   map[string]int
	windowFailures int
	reconcileTicks int
	tracked        int
	otel           *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:        make(map[string]*providerStats),
		cacheLookups: make(map[string]int),
		otel:         otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats := r.ensureStatsLocked(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// RecordCacheLookup counts a cache lookup by result (hit, miss, stale).
func (r *Recorder) RecordCacheLookup(result string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.cacheLookups[result]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheLookup(result)
	}
}

// RecordWindowFailure counts a failed date-window fetch.
func (r *Recorder) RecordWindowFailure(date string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.windowFailures++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordWindowFailure(date)
	}
}

// RecordReconcileTick counts a reconciler tick and stores how many fixtures are tracked.
func (r *Recorder) RecordReconcileTick(tracked int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.reconcileTicks++
	r.tracked = tracked
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordReconcileTick(tracked, duration, err)
	}
}

// CacheLookups returns the lookups recorded for a result.
func (r *Recorder) CacheLookups(result string) int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cacheLookups[result]
}

// WindowFailures returns the number of failed window fetches.
func (r *Recorder) WindowFailures() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.windowFailures
}

// ReconcileTicks returns the number of reconciler ticks and the last tracked count.
func (r *Recorder) ReconcileTicks() (ticks int, tracked int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reconcileTicks, r.tracked
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot is a copy of the stats recorded for one provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stats, ok := r.stats[provider]
	if !ok || stats == nil {
		return Snapshot{}
	}
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

func (r *Recorder) ensureStatsLocked(provider string) *providerStats {
	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}
