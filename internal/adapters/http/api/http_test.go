package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/apexlabs/flyrank/internal/adapters/http/api"
	"github.com/apexlabs/flyrank/internal/domain/model"
)

type fakeDeps struct {
	rows  []model.LeaderRow
	stats map[string]any
}

func (f *fakeDeps) TopN(_ context.Context, n int) []model.LeaderRow {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	out := make([]model.LeaderRow, n)
	copy(out, f.rows[:n])
	return out
}

func (f *fakeDeps) GetStats() map[string]any {
	return f.stats
}

func newTestServer(deps api.Dependencies, maxLimit int) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, maxLimit).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func TestLeaderboardEndpoint(t *testing.T) {
	deps := &fakeDeps{
		rows: []model.LeaderRow{
			{SteamID: 10, Points: 5, Username: "AcePilot"},
			{SteamID: 20, Points: 3},
			{SteamID: 30, Points: 1, Username: "Wingman"},
		},
	}

	Convey("Given an API server over a three-row snapshot", t, func() {
		srv := newTestServer(deps, 100)
		defer srv.Close()

		Convey("When GET /leaderboard has no limit", func() {
			resp, err := http.Get(srv.URL + "/leaderboard")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then all rows come back ranked from 1", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "application/json")

				var entries []map[string]any
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 3)
				So(entries[0]["rank"], ShouldEqual, 1)
				So(entries[0]["steam_id"], ShouldEqual, 10)
				So(entries[0]["points"], ShouldEqual, 5)
				So(entries[0]["steam_username"], ShouldEqual, "AcePilot")
				So(entries[2]["rank"], ShouldEqual, 3)

				Convey("And unresolved usernames are omitted", func() {
					_, ok := entries[1]["steam_username"]
					So(ok, ShouldBeFalse)
				})
			})
		})

		Convey("When GET /leaderboard?limit=2", func() {
			resp, err := http.Get(srv.URL + "/leaderboard?limit=2")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then only the top two rows come back", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var entries []map[string]any
				So(json.NewDecoder(resp.Body).Decode(&entries), ShouldBeNil)
				So(entries, ShouldHaveLength, 2)
			})
		})

		Convey("When the limit is not a positive integer", func() {
			for _, q := range []string{"limit=0", "limit=-3", "limit=abc"} {
				resp, err := http.Get(srv.URL + "/leaderboard?" + q)
				So(err, ShouldBeNil)
				resp.Body.Close()
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the limit exceeds the configured maximum", func() {
			resp, err := http.Get(srv.URL + "/leaderboard?limit=101")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the request is rejected with a coded error", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)

				var body map[string]string
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["code"], ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When the method is not GET", func() {
			resp, err := http.Post(srv.URL+"/leaderboard", "application/json", nil)
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStatsEndpoint(t *testing.T) {
	deps := &fakeDeps{
		stats: map[string]any{"runs": 4, "leader_rows": 3},
	}

	Convey("Given an API server", t, func() {
		srv := newTestServer(deps, 100)
		defer srv.Close()

		Convey("When GET /stats", func() {
			resp, err := http.Get(srv.URL + "/stats")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then the stats map is returned as JSON", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)

				var body map[string]any
				So(json.NewDecoder(resp.Body).Decode(&body), ShouldBeNil)
				So(body["runs"], ShouldEqual, 4)
				So(body["leader_rows"], ShouldEqual, 3)
			})
		})
	})
}

func TestHealthEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		srv := newTestServer(&fakeDeps{}, 100)
		defer srv.Close()

		Convey("When GET /healthz", func() {
			resp, err := http.Get(srv.URL + "/healthz")
			So(err, ShouldBeNil)
			defer resp.Body.Close()

			Convey("Then metrics exposition answers 200", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}
