package apifootball

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/logging"
	"github.com/preston-bernstein/fixture-data-service/internal/providers"
)

// Config controls how the API-Football client reaches the upstream API.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches fixtures from API-Football v3 and maps them to domain models.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient constructs an API-Football client with the provided configuration.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient),
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// FetchByDate retrieves all fixtures scheduled on a UTC calendar date.
func (c *Client) FetchByDate(ctx context.Context, date string) ([]fixtures.Fixture, error) {
	if err := providers.ValidateDate(date); err != nil {
		return nil, err
	}
	return c.list(ctx, url.Values{"date": {date}})
}

// FetchLive retrieves every fixture currently in play.
func (c *Client) FetchLive(ctx context.Context) ([]fixtures.Fixture, error) {
	return c.list(ctx, url.Values{"live": {"all"}})
}

// FetchByID retrieves one fixture; found is false when the API returns no entry.
func (c *Client) FetchByID(ctx context.Context, id int64) (fixtures.Fixture, bool, error) {
	out, err := c.list(ctx, url.Values{"id": {strconv.FormatInt(id, 10)}})
	if err != nil {
		return fixtures.Fixture{}, false, err
	}
	for _, f := range out {
		if f.ID == id {
			return f, true, nil
		}
	}
	return fixtures.Fixture{}, false, nil
}

func (c *Client) list(ctx context.Context, query url.Values) ([]fixtures.Fixture, error) {
	body, err := c.get(ctx, query)
	if err != nil {
		return nil, err
	}
	if errs := bodyErrors(body); errs != nil {
		if msg, ok := isRateLimitBody(errs); ok {
			return nil, &providers.RateLimitError{
				Provider:   providerName,
				StatusCode: http.StatusTooManyRequests,
				Message:    msg,
			}
		}
		return nil, providers.Unavailable(providerName, errors.Newf("api errors: %v", errs))
	}
	if err := checkEnvelope(body); err != nil {
		return nil, providers.Unavailable(providerName, err)
	}

	out, dropped := mapFixtures(body)
	if dropped > 0 {
		logging.Warn(logging.FromContext(ctx, c.logger), "dropped malformed fixtures",
			logging.FieldProvider, providerName,
			logging.FieldCount, dropped,
		)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fixturesPath, nil)
	if err != nil {
		return nil, providers.Unavailable(providerName, err)
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.Wrap(ctxErr, providerName)
		}
		return nil, providers.Unavailable(providerName, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &providers.RateLimitError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
			Remaining:  resp.Header.Get(remainingHeader),
			Message:    readSnippet(resp.Body),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, providers.Unavailable(providerName,
			errors.Newf("unexpected status %d: %s", resp.StatusCode, readSnippet(resp.Body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providers.Unavailable(providerName, err)
	}
	return body, nil
}

func readSnippet(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(body))
}
