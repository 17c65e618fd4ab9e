package steam_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"golang.org/x/time/rate"

	steam "github.com/apexlabs/flyrank/internal/adapters/steam"
)

const leaderboardXML = `<?xml version="1.0" encoding="UTF-8"?>
<response>
	<appID>1278060</appID>
	<leaderboardID>3761941</leaderboardID>
	<totalLeaderBoardEntries>3</totalLeaderBoardEntries>
	<entryStart>1</entryStart>
	<entryEnd>200</entryEnd>
	<resultCount>3</resultCount>
	<entries>
		<entry><steamid>76561198000000001</steamid><score>61234</score><rank>1</rank></entry>
		<entry><steamid>76561198000000002</steamid><score>62980</score><rank>2</rank></entry>
		<entry><steamid>76561198000000003</steamid><score>64020</score><rank>3</rank></entry>
	</entries>
</response>`

const profileXML = `<?xml version="1.0" encoding="UTF-8"?>
<profile>
	<steamID64>76561198000000001</steamID64>
	<steamID><![CDATA[AcePilot]]></steamID>
	<stateMessage>Online</stateMessage>
</profile>`

// newTestClient points a client at a test server with the throttle opened
// wide so tests never wait on the token bucket.
func newTestClient(baseURL string) *steam.Client {
	return steam.NewClient(
		steam.WithBaseURL(baseURL),
		steam.WithRateLimit(rate.Limit(10000), 100),
	)
}

func TestClient_FetchStandings(t *testing.T) {
	Convey("Given an upstream serving a leaderboard payload", t, func() {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.String()
			fmt.Fprint(w, leaderboardXML)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When fetching standings", func() {
			standings, err := client.FetchStandings(context.Background(), 3761941)

			Convey("Then entries come back in rank order", func() {
				So(err, ShouldBeNil)
				So(standings, ShouldHaveLength, 3)
				So(standings[0].Rank, ShouldEqual, 1)
				So(standings[0].SteamID, ShouldEqual, int64(76561198000000001))
				So(standings[0].ScoreTime, ShouldEqual, int64(61234))
				So(standings[2].Rank, ShouldEqual, 3)
			})

			Convey("And the request targets the leaderboard XML endpoint", func() {
				So(gotPath, ShouldContainSubstring, "/stats/1278060/leaderboards/3761941")
				So(gotPath, ShouldContainSubstring, "xml=1")
				So(gotPath, ShouldContainSubstring, "start=1")
				So(gotPath, ShouldContainSubstring, "end=200")
			})
		})
	})

	Convey("Given an upstream returning an unparsable payload", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "<html>not the droids you are looking for</html>")
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When fetching standings", func() {
			_, err := client.FetchStandings(context.Background(), 1)

			Convey("Then the error is a malformed-response kind", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, steam.ErrMalformedResponse), ShouldBeTrue)
			})
		})
	})

	Convey("Given an upstream returning entries with impossible fields", t, func() {
		broken := strings.Replace(leaderboardXML, "<rank>1</rank>", "<rank>0</rank>", 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, broken)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When fetching standings", func() {
			_, err := client.FetchStandings(context.Background(), 1)

			Convey("Then the shape violation is malformed, not silent", func() {
				So(errors.Is(err, steam.ErrMalformedResponse), ShouldBeTrue)
			})
		})
	})

	Convey("Given an upstream answering with a server error", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When fetching standings", func() {
			_, err := client.FetchStandings(context.Background(), 1)

			Convey("Then the error is a source-unavailable kind", func() {
				So(errors.Is(err, steam.ErrSourceUnavailable), ShouldBeTrue)
			})
		})
	})

	Convey("Given an upstream that is unreachable", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // immediately, so the address refuses connections

		client := newTestClient(srv.URL)

		Convey("When fetching standings", func() {
			_, err := client.FetchStandings(context.Background(), 1)

			Convey("Then the transport failure maps to source-unavailable", func() {
				So(errors.Is(err, steam.ErrSourceUnavailable), ShouldBeTrue)
			})
		})
	})
}

func TestClient_ResolveUsername(t *testing.T) {
	Convey("Given an upstream serving a profile payload", t, func() {
		var gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.String()
			fmt.Fprint(w, profileXML)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When resolving a username", func() {
			name, err := client.ResolveUsername(context.Background(), 76561198000000001)

			Convey("Then the display name comes back", func() {
				So(err, ShouldBeNil)
				So(name, ShouldEqual, "AcePilot")
				So(gotPath, ShouldContainSubstring, "/profiles/76561198000000001/?xml=1")
			})
		})
	})

	Convey("Given a profile without a display name", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<profile><steamID64>1</steamID64><steamID></steamID></profile>`)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)

		Convey("When resolving a username", func() {
			_, err := client.ResolveUsername(context.Background(), 1)

			Convey("Then the error is a not-found kind", func() {
				So(errors.Is(err, steam.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
