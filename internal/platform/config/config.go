package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
)

const (
	defaultDBPath        = "./data/playshelf.db"
	defaultServerPort    = 8080
	defaultLogLevel      = "info"
	defaultEnvironment   = "development"
	defaultShutdownGrace = 10 * time.Second
)

// Config holds runtime configuration values for the Playshelf server.
type Config struct {
	DBPath        string        `env:"DB_PATH" envDefault:"./data/playshelf.db"`
	ServerPort    int           `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN     string        `env:"SENTRY_DSN"`
	Environment   string        `env:"ENV" envDefault:"development"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	RateLimit     RateLimit
	Slugs         Slugs
}

// RateLimit configures the per-client token bucket on the HTTP surface.
type RateLimit struct {
	Burst             int           `env:"RATE_LIMIT_BURST" envDefault:"20"`
	RequestsPerSecond float64       `env:"RATE_LIMIT_RPS" envDefault:"10"`
	ClientTTL         time.Duration `env:"RATE_LIMIT_CLIENT_TTL" envDefault:"5m"`
}

// Slugs tunes temporary slug allocation and the self-service edit cooldown.
type Slugs struct {
	TemporaryAttempts     int           `env:"SLUG_TEMP_ATTEMPTS" envDefault:"10"`
	TemporarySuffixLength int           `env:"SLUG_TEMP_SUFFIX_LENGTH" envDefault:"10"`
	EditCooldown          time.Duration `env:"SLUG_EDIT_COOLDOWN" envDefault:"24h"`
}

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, eris.Wrap(err, "parsing environment")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.ServerPort < 1 || c.ServerPort > 65535:
		return eris.Errorf("invalid SERVER_PORT value: %d", c.ServerPort)
	case c.RateLimit.Burst <= 0:
		return eris.New("RATE_LIMIT_BURST must be greater than zero")
	case c.RateLimit.RequestsPerSecond <= 0:
		return eris.New("RATE_LIMIT_RPS must be greater than zero")
	case c.RateLimit.ClientTTL <= 0:
		return eris.New("RATE_LIMIT_CLIENT_TTL must be greater than zero")
	case c.Slugs.TemporaryAttempts < 1:
		return eris.New("SLUG_TEMP_ATTEMPTS must be at least 1")
	case c.Slugs.TemporarySuffixLength < 4:
		return eris.New("SLUG_TEMP_SUFFIX_LENGTH must be at least 4")
	case c.Slugs.EditCooldown < 0:
		return eris.New("SLUG_EDIT_COOLDOWN must not be negative")
	case c.ShutdownGrace <= 0:
		return eris.New("SHUTDOWN_GRACE must be greater than zero")
	}
	return nil
}
