package metrics

import "testing"

func TestMetricFieldKeysAreStable(t *testing.T) {
	if AttrMethod == "" || AttrPath == "" || AttrStatus == "" || AttrProvider == "" || AttrResult == "" {
		t.Fatalf("expected metric attribute keys to be non-empty")
	}
	if CacheHit == CacheMiss || CacheMiss == CacheStale {
		t.Fatalf("expected distinct cache result values")
	}
}
