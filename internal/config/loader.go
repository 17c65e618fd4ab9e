package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, an optional file, and env.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if FLYRANK_CONFIG is set
//  3. env (prefix FLYRANK_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("FLYRANK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// FLYRANK_DB_DSN -> db_dsn and so on; underscores preserved so env
	// keys match the koanf struct tags directly.
	envProvider := env.Provider("FLYRANK_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "flyrank_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.DBDSN == "":
		return fmt.Errorf("%w: db_dsn must not be empty", ErrInvalidConfig)
	case c.UpdateFrequencyMin <= 0:
		return fmt.Errorf("%w: update_frequency_min must be positive", ErrInvalidConfig)
	case c.DailyIntervalHours <= 0:
		return fmt.Errorf("%w: daily_interval_hours must be positive", ErrInvalidConfig)
	case c.PollIntervalSec <= 0:
		return fmt.Errorf("%w: poll_interval_sec must be positive", ErrInvalidConfig)
	case c.MaxTrackedRank <= 0:
		return fmt.Errorf("%w: max_tracked_rank must be positive", ErrInvalidConfig)
	case c.LeaderCutoff <= 0:
		return fmt.Errorf("%w: leader_cutoff must be positive", ErrInvalidConfig)
	case c.RequestRatePerSec <= 0:
		return fmt.Errorf("%w: request_rate_per_sec must be positive", ErrInvalidConfig)
	case c.SteamAppID <= 0:
		return fmt.Errorf("%w: steam_app_id must be positive", ErrInvalidConfig)
	}
	return nil
}
