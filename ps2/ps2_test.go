package ps2

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auraxtools/auraxis"
)

// newFakeCensus spins up a canned API server and returns a client pointed
// at it. Handlers route on r.URL.Path, which has the shape
// /s:test/get/ps2:v2/{collection}.
func newFakeCensus(t *testing.T, handler http.HandlerFunc) *auraxis.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return auraxis.New(
		auraxis.WithBaseURL(srv.URL),
		auraxis.WithServiceID("s:test"),
		auraxis.WithRetry(0, time.Millisecond),
	)
}

const characterFixture = `{
	"character_list": [{
		"character_id": "5428010618035323201",
		"name": {"first": "Higby", "first_lower": "higby"},
		"faction_id": "1",
		"head_id": "1",
		"title_id": "0",
		"times": {
			"creation": "1355442261",
			"last_save": "1650000000",
			"last_login": "1649990000",
			"login_count": "1234",
			"minutes_played": "123456"
		},
		"certs": {
			"earned_points": "100000",
			"gifted_points": "1000",
			"spent_points": "99000",
			"available_points": "2000",
			"percent_to_next": "0.5"
		},
		"battle_rank": {"value": "100", "percent_to_next": "40.5"},
		"profile_id": "4",
		"prestige_level": "1"
	}],
	"returned": 1
}`

const emptyCharacterList = `{"character_list": [], "returned": 0}`
