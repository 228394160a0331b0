package apifootball

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
	"github.com/preston-bernstein/fixture-data-service/internal/domain/teams"
)

// Body errors that mean the account quota is exhausted.
var rateLimitErrorKeys = []string{"rateLimit", "requests"}

// bodyErrors returns the "errors" object of a response. The API sends [] when empty.
func bodyErrors(body []byte) map[string]string {
	errs := gjson.GetBytes(body, "errors")
	if !errs.IsObject() {
		return nil
	}
	out := make(map[string]string)
	errs.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = value.String()
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

// checkEnvelope rejects a body that is not JSON or carries no response array.
func checkEnvelope(body []byte) error {
	if !gjson.ValidBytes(body) {
		return errors.Newf("malformed body: %s", snippet(body))
	}
	if !gjson.GetBytes(body, "response").IsArray() {
		return errors.New("body has no response array")
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}

func isRateLimitBody(errs map[string]string) (string, bool) {
	for _, key := range rateLimitErrorKeys {
		if msg, ok := errs[key]; ok {
			return msg, true
		}
	}
	return "", false
}

// mapFixtures parses the response array into domain fixtures. Entries without
// an id or a parsable kickoff are skipped and counted.
func mapFixtures(body []byte) ([]fixtures.Fixture, int) {
	items := gjson.GetBytes(body, "response").Array()
	out := make([]fixtures.Fixture, 0, len(items))
	dropped := 0
	for _, item := range items {
		f, ok := mapFixture(item)
		if !ok {
			dropped++
			continue
		}
		out = append(out, f)
	}
	return out, dropped
}

func mapFixture(item gjson.Result) (fixtures.Fixture, bool) {
	id := item.Get("fixture.id").Int()
	if id <= 0 {
		return fixtures.Fixture{}, false
	}
	kickoff, ok := parseKickoff(item.Get("fixture.date").String(), item.Get("fixture.timestamp").Int())
	if !ok {
		return fixtures.Fixture{}, false
	}

	code := fixtures.ParseStatusCode(item.Get("fixture.status.short").String())
	label := strings.TrimSpace(item.Get("fixture.status.long").String())
	if label == "" {
		label = code.DefaultLabel()
	}

	return fixtures.Fixture{
		ID:       id,
		Provider: providerName,
		Kickoff:  kickoff,
		Status: fixtures.Status{
			Code:    code,
			Label:   label,
			Elapsed: optionalInt(item.Get("fixture.status.elapsed")),
		},
		League: fixtures.League{
			ID:      item.Get("league.id").Int(),
			Name:    item.Get("league.name").String(),
			Country: item.Get("league.country").String(),
			Logo:    item.Get("league.logo").String(),
			Season:  int(item.Get("league.season").Int()),
		},
		Home: mapTeam(item.Get("teams.home")),
		Away: mapTeam(item.Get("teams.away")),
		Score: fixtures.Score{
			Home: optionalInt(item.Get("goals.home")),
			Away: optionalInt(item.Get("goals.away")),
		},
	}, true
}

func mapTeam(t gjson.Result) teams.Team {
	return teams.Team{
		ID:   t.Get("id").Int(),
		Name: t.Get("name").String(),
		Logo: t.Get("logo").String(),
	}
}

func parseKickoff(raw string, unix int64) (time.Time, bool) {
	if raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, true
		}
	}
	if unix > 0 {
		return time.Unix(unix, 0).UTC(), true
	}
	return time.Time{}, false
}

func optionalInt(v gjson.Result) *int {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	n := int(v.Int())
	return &n
}
