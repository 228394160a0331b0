package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/providers"
	"github.com/preston-bernstein/fixture-data-service/internal/testutil"
)

type stubRefresher struct {
	dates []string
	err   error
}

func (s *stubRefresher) Refresh(ctx context.Context, date string) error {
	_ = ctx
	s.dates = append(s.dates, date)
	if s.err != nil {
		return s.err
	}
	return providers.ValidateDate(date)
}

func adminRequest(target, token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestNewAdminHandlerNilWithoutToken(t *testing.T) {
	if h := NewAdminHandler(&stubRefresher{}, "", nil, nil); h != nil {
		t.Fatalf("expected nil handler without token")
	}
}

func TestAdminRefreshRequiresAuth(t *testing.T) {
	refresher := &stubRefresher{}
	h := NewAdminHandler(refresher, "secret", nil, nil)

	for _, token := range []string{"", "wrong"} {
		rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh", token))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	}
	if len(refresher.dates) != 0 {
		t.Fatalf("expected no refresh without auth, got %v", refresher.dates)
	}
}

func TestAdminRefreshDefaultsToToday(t *testing.T) {
	refresher := &stubRefresher{}
	h := NewAdminHandler(refresher, "secret", time.UTC, nil)
	h.now = func() time.Time { return time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC) }

	rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh", "secret"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	if len(refresher.dates) != 1 || refresher.dates[0] != "2025-06-15" {
		t.Fatalf("expected refresh for today, got %v", refresher.dates)
	}
}

func TestAdminRefreshExplicitDate(t *testing.T) {
	refresher := &stubRefresher{}
	h := NewAdminHandler(refresher, "secret", nil, nil)

	rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh?date=2025-06-01", "secret"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var body map[string]string
	testutil.DecodeJSON(t, rr, &body)
	if body["date"] != "2025-06-01" || body["status"] != "ok" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestAdminRefreshRejectsInvalidDate(t *testing.T) {
	h := NewAdminHandler(&stubRefresher{}, "secret", nil, nil)
	rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh?date=bad-date", "secret"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAdminRefreshUpstreamFailure(t *testing.T) {
	h := NewAdminHandler(&stubRefresher{err: errors.Mark(errors.New("down"), providers.ErrUpstreamUnavailable)}, "secret", nil, nil)
	rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh?date=2025-06-01", "secret"))
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
	var body ErrorBody
	testutil.DecodeJSON(t, rr, &body)
	if body.Error != "refresh failed" {
		t.Fatalf("expected generic error, got %q", body.Error)
	}
}

func TestAdminRefreshWithoutRefresher(t *testing.T) {
	h := NewAdminHandler(nil, "secret", nil, nil)
	rr := testutil.ServeRequest(http.HandlerFunc(h.RefreshCache), adminRequest("/admin/cache/refresh", "secret"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}
