package apifootball

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

func TestMapFixturesDropsEntriesWithoutIDOrKickoff(t *testing.T) {
	body := []byte(`{"response": [
		{"fixture": {"id": 0, "date": "2025-06-15T19:00:00+00:00"}},
		{"fixture": {"id": 5, "date": "not-a-date"}},
		{"fixture": {"id": 6, "timestamp": 1750014000, "status": {"short": "ZZ"}}},
		{"fixture": {"id": 7, "date": "2025-06-15T19:00:00+00:00", "status": {"short": "FT"}}}
	]}`)

	out, dropped := mapFixtures(body)
	assert.Equal(t, 2, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, int64(6), out[0].ID)
	assert.Equal(t, fixtures.CodeTBD, out[0].Status.Code, "unknown codes map to TBD")
	assert.True(t, out[0].Kickoff.Equal(time.Unix(1750014000, 0)))
	assert.Equal(t, fixtures.CodeFullTime, out[1].Status.Code)
}

func TestMapFixturesEmptyResponse(t *testing.T) {
	out, dropped := mapFixtures([]byte(`{"response": []}`))
	assert.Empty(t, out)
	assert.Zero(t, dropped)

	out, dropped = mapFixtures([]byte(`not json`))
	assert.Empty(t, out)
	assert.Zero(t, dropped)
}

func TestBodyErrors(t *testing.T) {
	assert.Nil(t, bodyErrors([]byte(`{"errors": []}`)))
	assert.Nil(t, bodyErrors([]byte(`{"errors": {}}`)))

	errs := bodyErrors([]byte(`{"errors": {"requests": "daily limit reached"}}`))
	msg, ok := isRateLimitBody(errs)
	assert.True(t, ok)
	assert.Equal(t, "daily limit reached", msg)

	_, ok = isRateLimitBody(map[string]string{"token": "bad"})
	assert.False(t, ok)
}

func TestCheckEnvelope(t *testing.T) {
	assert.NoError(t, checkEnvelope([]byte(`{"response": []}`)))
	assert.Error(t, checkEnvelope([]byte(`<html>upstream gateway error</html>`)))
	assert.Error(t, checkEnvelope([]byte(`{"get": "fixtures"}`)))
	assert.Error(t, checkEnvelope([]byte(`{"response": {"fixture": {}}}`)))
}
