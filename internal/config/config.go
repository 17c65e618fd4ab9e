// Package config defines process configuration and its loading hooks.
// Configuration is layered: defaults, then an optional YAML file, then
// environment variables with the FLYRANK_ prefix.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the operational HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// DBDSN is the DuckDB connection string: the database path with
	// optional driver parameters appended as a query string.
	DBDSN string `koanf:"db_dsn"`

	// UpdateFrequencyMin is the periodic job cadence in minutes.
	UpdateFrequencyMin int `koanf:"update_frequency_min"`

	// DailyIntervalHours is the daily job cadence in hours.
	DailyIntervalHours int `koanf:"daily_interval_hours"`

	// PollIntervalSec is how often the scheduler evaluates due jobs.
	PollIntervalSec int `koanf:"poll_interval_sec"`

	// MaxTrackedRank caps the per-course points pool and the rank window
	// that the daily history keeps.
	MaxTrackedRank int `koanf:"max_tracked_rank"`

	// LeaderCutoff bounds how many leader rows get usernames resolved.
	LeaderCutoff int `koanf:"leader_cutoff"`

	// RequestRatePerSec throttles outbound Steam calls.
	RequestRatePerSec float64 `koanf:"request_rate_per_sec"`

	// RequestTimeoutSec is the per-request timeout on outbound calls.
	RequestTimeoutSec int `koanf:"request_timeout_sec"`

	// SteamAppID identifies the game on the Steam community API.
	SteamAppID int64 `koanf:"steam_app_id"`

	// SteamBaseURL overrides the Steam community endpoint, for tests.
	SteamBaseURL string `koanf:"steam_base_url"`

	// QueueSize bounds the pending job-token queue.
	QueueSize int `koanf:"queue_size"`
}

// New creates a Config carrying the service defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9090",
		DBDSN:              "flyrank.db",
		UpdateFrequencyMin: 15,
		DailyIntervalHours: 24,
		PollIntervalSec:    180,
		MaxTrackedRank:     200,
		LeaderCutoff:       200,
		RequestRatePerSec:  1,
		RequestTimeoutSec:  30,
		SteamAppID:         1278060,
		SteamBaseURL:       "https://steamcommunity.com",
		QueueSize:          8,
	}
}
