// Package config loads service settings from the environment, optionally seeded from .env files.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "production"

// Config holds every setting the server reads at startup.
type Config struct {
	Addr string `env:"BADGE_ADDR" envDefault:":8080"`
	Env  string `env:"BADGE_ENV" envDefault:"development"`

	BackendURL       string        `env:"BADGE_BACKEND_URL" envDefault:"http://localhost:8080/"`
	BulkURL          string        `env:"BADGE_BULK_URL" envDefault:"http://localhost:8080/bulk_submit"`
	VendorURL        string        `env:"BADGE_VENDOR_URL" envDefault:"https://www.renfairdata.org/api/vendors?fair=brevard&year=2025"`
	EntertainmentURL string        `env:"BADGE_ENTERTAINMENT_URL" envDefault:"https://www.renfairdata.org/api/acts?fair=brevard&year=2025"`
	PersonURL        string        `env:"BADGE_PERSON_URL" envDefault:"http://localhost:8080/person"`
	HTTPTimeout      time.Duration `env:"BADGE_HTTP_TIMEOUT" envDefault:"0s"` // 0 keeps the transport defaults

	DefaultPage string `env:"BADGE_DEFAULT_PAGE" envDefault:"single"`
	CSRFKeyHex  string `env:"BADGE_CSRF_KEY"`
	DBPath      string `env:"BADGE_DB_PATH" envDefault:"badges.db"`

	Title     string `env:"BADGE_TITLE" envDefault:"Badge Creator"`
	LogoURL   string `env:"BADGE_LOGO_URL"`
	Intro     string `env:"BADGE_INTRO"`
	PublicURL string `env:"BADGE_PUBLIC_URL"`

	ResendKey  string `env:"BADGE_RESEND_KEY"`
	ResendFrom string `env:"BADGE_RESEND_FROM" envDefault:"Badge Office <badges@example.org>"`

	TrustedOrigins []string `env:"BADGE_TRUSTED_ORIGINS" envSeparator:"," envDefault:"localhost:8080,127.0.0.1:8080"`

	SlowRequestMs int `env:"BADGE_SLOW_REQUEST_MS" envDefault:"200"`
	SlowQueryMs   int `env:"BADGE_SLOW_QUERY_MS" envDefault:"50"`
}

// IsProduction reports whether the server runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == Production
}

// CSRFKey decodes the configured CSRF secret. It returns nil when none is configured.
func (c Config) CSRFKey() ([]byte, error) {
	if c.CSRFKeyHex == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CSRFKeyHex)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("BADGE_CSRF_KEY must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// Load reads the given .env files that exist, then parses the environment.
// Variables already present in the environment win over .env values.
// PRE: none
// POST: returns a Config with defaults applied, or a parse error
func Load(envFiles ...string) (Config, error) {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return Config{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DefaultPage {
	case "single", "bulk":
	default:
		return fmt.Errorf("BADGE_DEFAULT_PAGE must be single or bulk, got %q", c.DefaultPage)
	}
	if !strings.HasSuffix(c.BackendURL, "/") {
		c.BackendURL += "/"
	}
	c.PersonURL = strings.TrimSuffix(c.PersonURL, "/")
	if _, err := c.CSRFKey(); err != nil {
		return err
	}
	if c.IsProduction() && c.CSRFKeyHex == "" {
		return fmt.Errorf("BADGE_CSRF_KEY is required in production")
	}
	return nil
}
