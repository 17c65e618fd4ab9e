// Package steam is the leaderboard source adapter. It fetches per-course
// standings and resolves display names from the Steam community XML API,
// pacing every outbound call through a shared token bucket so the
// harvester never trips upstream rate limiting.
package steam

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/apexlabs/flyrank/internal/domain/model"
)

// Default client configuration constants.
const (
	DefaultBaseURL    = "https://steamcommunity.com"
	DefaultAppID      = 1278060 // Fly Dangerous
	defaultTimeout    = 30 * time.Second
	defaultFetchStart = 1
	defaultFetchEnd   = 200
	defaultRateLimit  = rate.Limit(1) // one outbound call per second
	defaultRateBurst  = 1
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mostly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithAppID sets the Steam application id the leaderboards belong to.
func WithAppID(appID int64) Option {
	return func(c *Client) {
		if appID > 0 {
			c.appID = appID
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit replaces the outbound throttle. limit is sustained calls
// per second, burst the momentary allowance.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		if limit > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(limit, burst)
		}
	}
}

// WithFetchWindow sets the highest rank requested per leaderboard.
func WithFetchWindow(end int) Option {
	return func(c *Client) {
		if end > 0 {
			c.fetchEnd = end
		}
	}
}

// Client talks to the Steam community XML endpoints.
type Client struct {
	baseURL  string
	appID    int64
	fetchEnd int
	http     *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a source adapter client with configuration options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		appID:    DefaultAppID,
		fetchEnd: defaultFetchEnd,
		http:     &http.Client{Timeout: defaultTimeout},
		limiter:  rate.NewLimiter(defaultRateLimit, defaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// leaderboardResponse mirrors the leaderboard XML payload.
type leaderboardResponse struct {
	XMLName xml.Name           `xml:"response"`
	Entries []leaderboardEntry `xml:"entries>entry"`
}

type leaderboardEntry struct {
	SteamID int64 `xml:"steamid"`
	Score   int64 `xml:"score"`
	Rank    int   `xml:"rank"`
}

// profileResponse mirrors the community profile XML payload.
type profileResponse struct {
	XMLName xml.Name `xml:"profile"`
	Name    string   `xml:"steamID"`
}

// FetchStandings returns the raw standings of one leaderboard, ordered by
// rank ascending and truncated upstream to the fetch window. Transport
// failures wrap ErrSourceUnavailable, unparsable or shape-violating
// payloads wrap ErrMalformedResponse.
func (c *Client) FetchStandings(ctx context.Context, leaderboardID int64) ([]model.RawStanding, error) {
	url := fmt.Sprintf("%s/stats/%d/leaderboards/%d?xml=1&start=%d&end=%d",
		c.baseURL, c.appID, leaderboardID, defaultFetchStart, c.fetchEnd)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var resp leaderboardResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode leaderboard %d: %w: %w", leaderboardID, ErrMalformedResponse, err)
	}

	standings := make([]model.RawStanding, 0, len(resp.Entries))
	for i, entry := range resp.Entries {
		if entry.Rank <= 0 || entry.SteamID <= 0 {
			return nil, fmt.Errorf("leaderboard %d entry %d has rank %d and steamid %d: %w",
				leaderboardID, i, entry.Rank, entry.SteamID, ErrMalformedResponse)
		}
		standings = append(standings, model.RawStanding{
			Rank:      entry.Rank,
			SteamID:   entry.SteamID,
			ScoreTime: entry.Score,
		})
	}
	return standings, nil
}

// ResolveUsername returns the display name of a Steam profile. A profile
// payload without a name wraps ErrNotFound.
func (c *Client) ResolveUsername(ctx context.Context, steamID int64) (string, error) {
	url := fmt.Sprintf("%s/profiles/%d/?xml=1", c.baseURL, steamID)

	body, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}

	var resp profileResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode profile %d: %w: %w", steamID, ErrMalformedResponse, err)
	}
	if resp.Name == "" {
		return "", fmt.Errorf("profile %d has no display name: %w", steamID, ErrNotFound)
	}
	return resp.Name, nil
}

// get waits for the throttle, issues the request and reads the body.
func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w: %w", url, ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: status %d: %w", url, resp.StatusCode, ErrSourceUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", url, ErrSourceUnavailable, err)
	}
	return body, nil
}
