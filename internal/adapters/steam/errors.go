package steam

import "errors"

// Sentinel kinds for source adapter errors.
var (
	// ErrSourceUnavailable marks transport failures talking to the
	// leaderboard or profile API.
	ErrSourceUnavailable = errors.New("leaderboard source unavailable")

	// ErrMalformedResponse marks payloads that did not parse into the
	// expected shape.
	ErrMalformedResponse = errors.New("malformed source response")

	// ErrNotFound marks a profile lookup that returned no display name.
	ErrNotFound = errors.New("profile not found")
)
