package freshness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestClassify(t *testing.T) {
	p := NewPolicy(TTLs{}, nil)
	assert.Equal(t, ClassPast, p.Classify("2025-06-14", now))
	assert.Equal(t, ClassToday, p.Classify("2025-06-15", now))
	assert.Equal(t, ClassFuture, p.Classify("2025-06-16", now))
	assert.Equal(t, ClassPast, p.Classify("2024-12-31", now))
}

func TestClassifyUsesPolicyLocation(t *testing.T) {
	p := NewPolicy(TTLs{}, time.FixedZone("AKST", -9*3600))
	// 05:00Z is still the evening of the 14th in UTC-9
	early := time.Date(2025, 6, 15, 5, 0, 0, 0, time.UTC)
	assert.Equal(t, ClassToday, p.Classify("2025-06-14", early))
	assert.Equal(t, ClassFuture, p.Classify("2025-06-15", early))
}

func TestPastBoundaries(t *testing.T) {
	p := NewPolicy(TTLs{}, nil)
	maxAge := p.MaxAge(p.Classify("2025-06-10", now))
	assert.False(t, IsFresh(now.Add(-25*time.Hour), maxAge, now), "25h old past entry is stale")
	assert.True(t, IsFresh(now.Add(-23*time.Hour), maxAge, now), "23h old past entry is fresh")
}

func TestTodayBoundaries(t *testing.T) {
	p := NewPolicy(TTLs{}, nil)
	maxAge := p.MaxAge(p.Classify("2025-06-15", now))
	assert.False(t, IsFresh(now.Add(-6*time.Minute), maxAge, now), "6m old today entry is stale")
	assert.True(t, IsFresh(now.Add(-4*time.Minute), maxAge, now), "4m old today entry is fresh")
}

func TestIsFreshIsStrict(t *testing.T) {
	assert.False(t, IsFresh(now.Add(-5*time.Minute), 5*time.Minute, now))
	assert.True(t, IsFresh(now.Add(-5*time.Minute+time.Nanosecond), 5*time.Minute, now))
}

func TestDefaultMaxAges(t *testing.T) {
	p := NewPolicy(TTLs{}, nil)
	assert.Equal(t, 24*time.Hour, p.MaxAge(ClassPast))
	assert.Equal(t, 5*time.Minute, p.MaxAge(ClassToday))
	assert.Equal(t, 4*time.Hour, p.MaxAge(ClassFuture))
	assert.Equal(t, 2*time.Minute, p.MaxAge(ClassLive))
	assert.Equal(t, time.Hour, p.MaxAge(ClassByID))
	assert.Zero(t, p.MaxAge(DateClass("bogus")))
}

func TestConfiguredMaxAges(t *testing.T) {
	p := NewPolicy(TTLs{Today: time.Minute}, nil)
	assert.Equal(t, time.Minute, p.MaxAge(ClassToday))
	assert.Equal(t, 24*time.Hour, p.MaxAge(ClassPast))
}

func TestDecide(t *testing.T) {
	p := NewPolicy(TTLs{}, nil)
	assert.Equal(t, Miss, p.Decide(time.Time{}, false, ClassToday, now))
	assert.Equal(t, ServeCached, p.Decide(now.Add(-time.Minute), true, ClassToday, now))
	assert.Equal(t, Refetch, p.Decide(now.Add(-time.Hour), true, ClassToday, now))
	assert.Equal(t, "serve_cached", ServeCached.String())
	assert.Equal(t, "refetch", Refetch.String())
	assert.Equal(t, "miss", Miss.String())
}
