package apifootball

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
)

const sampleBody = `{
	"get": "fixtures",
	"errors": [],
	"results": 2,
	"response": [
		{
			"fixture": {
				"id": 1035,
				"date": "2025-06-15T19:00:00+00:00",
				"status": {"long": "Second Half", "short": "2H", "elapsed": 67}
			},
			"league": {"id": 39, "name": "Premier League", "country": "England", "season": 2024},
			"teams": {
				"home": {"id": 33, "name": "Manchester United", "logo": "mu.png"},
				"away": {"id": 34, "name": "Newcastle", "logo": "nc.png"}
			},
			"goals": {"home": 1, "away": 0}
		},
		{
			"fixture": {"id": 1036, "date": "2025-06-15T21:00:00+02:00", "status": {"short": "NS", "elapsed": null}},
			"league": {"id": 140, "name": "La Liga"},
			"teams": {"home": {"id": 1, "name": "A"}, "away": {"id": 2, "name": "B"}},
			"goals": {"home": null, "away": null}
		}
	]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", APIKey: "secret", HTTPClient: srv.Client()})
}

func TestFetchByDateHitsAPIAndMapsResponse(t *testing.T) {
	var gotPath, gotDate, gotKey string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotDate = r.URL.Query().Get("date")
		gotKey = r.Header.Get(apiKeyHeader)
		_, _ = w.Write([]byte(sampleBody))
	})

	got, err := c.FetchByDate(context.Background(), "2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "/fixtures", gotPath)
	assert.Equal(t, "2025-06-15", gotDate)
	assert.Equal(t, "secret", gotKey)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, int64(1035), first.ID)
	assert.Equal(t, "apifootball", first.Provider)
	assert.Equal(t, fixtures.CodeSecondHalf, first.Status.Code)
	assert.Equal(t, "Second Half", first.Status.Label)
	require.NotNil(t, first.Status.Elapsed)
	assert.Equal(t, 67, *first.Status.Elapsed)
	assert.Equal(t, int64(39), first.League.ID)
	assert.Equal(t, "Manchester United", first.Home.Name)
	require.NotNil(t, first.Score.Home)
	assert.Equal(t, 1, *first.Score.Home)
	assert.True(t, first.Kickoff.Equal(time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC)))

	second := got[1]
	assert.Nil(t, second.Score.Home)
	assert.Nil(t, second.Status.Elapsed)
	assert.Equal(t, "Not Started", second.Status.Label)
	assert.True(t, second.Kickoff.Equal(time.Date(2025, 6, 15, 19, 0, 0, 0, time.UTC)), "offset preserved and comparable")
}

func TestFetchLiveAndByIDQueries(t *testing.T) {
	var queries []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.RawQuery)
		_, _ = w.Write([]byte(sampleBody))
	})

	live, err := c.FetchLive(context.Background())
	require.NoError(t, err)
	assert.Len(t, live, 2)

	f, ok, err := c.FetchByID(context.Background(), 1036)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1036), f.ID)

	_, ok, err = c.FetchByID(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"live=all", "id=1036", "id=9999"}, queries)
}

func TestFetchMaps429ToRateLimitError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.Header().Set(remainingHeader, "0")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	})

	_, err := c.FetchLive(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, providers.ErrUpstreamRateLimited))
	rl, ok := providers.AsRateLimitError(err)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
	assert.Equal(t, "0", rl.Remaining)
	assert.Equal(t, "slow down", rl.Message)
}

func TestFetchMapsBodyRateLimitError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": {"rateLimit": "Too many requests"}, "response": []}`))
	})

	_, err := c.FetchByDate(context.Background(), "2025-06-15")
	assert.True(t, errors.Is(err, providers.ErrUpstreamRateLimited), "got %v", err)
}

func TestFetchMapsOtherBodyErrorsToUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors": {"token": "Missing application key"}, "response": []}`))
	})

	_, err := c.FetchByDate(context.Background(), "2025-06-15")
	assert.True(t, errors.Is(err, providers.ErrUpstreamUnavailable), "got %v", err)
}

func TestFetchMaps5xxToUnavailable(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.FetchLive(context.Background())
	assert.True(t, errors.Is(err, providers.ErrUpstreamUnavailable), "got %v", err)
	assert.False(t, errors.Is(err, providers.ErrUpstreamRateLimited))
}

func TestFetchNetworkErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url})
	_, err := c.FetchLive(context.Background())
	assert.True(t, errors.Is(err, providers.ErrUpstreamUnavailable), "got %v", err)
}

func TestFetchByDateRejectsMalformedDate(t *testing.T) {
	called := false
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.FetchByDate(context.Background(), "15-06-2025")
	assert.True(t, errors.Is(err, providers.ErrInvalidDateFormat))
	assert.False(t, called)
}

func TestFetchMapsUnparseableBodyToUnavailable(t *testing.T) {
	bodies := []string{
		`<html>upstream gateway error</html>`,
		`{"get": "fixtures", "results": 0}`,
		``,
	}
	for _, body := range bodies {
		c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})

		out, err := c.FetchByDate(context.Background(), "2025-06-15")
		assert.Nil(t, out, "body %q", body)
		assert.True(t, errors.Is(err, providers.ErrUpstreamUnavailable), "body %q: got %v", body, err)
	}
}
