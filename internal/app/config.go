package app

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`
	AppTimezone       string        `envconfig:"APP_TIMEZONE" default:"UTC"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// PGDSN empty means the static seed file is the only source.
	PGDSN        string `envconfig:"PG_DSN"`
	PGMaxConns   int32  `envconfig:"PG_MAX_CONNS" default:"10"`
	SeedPath     string `envconfig:"SEED_PATH"`
	SeedDatabase bool   `envconfig:"SEED_DATABASE" default:"false"`

	RedisAddr        string        `envconfig:"REDIS_ADDR"`
	RedisPassword    string        `envconfig:"REDIS_PASSWORD"`
	SnapshotCacheTTL time.Duration `envconfig:"SNAPSHOT_CACHE_TTL" default:"5m"`

	ReportsPreferredBarYear int `envconfig:"REPORTS_PREFERRED_BAR_YEAR" default:"2023"`
	ReportsMaxYears         int `envconfig:"REPORTS_MAX_YEARS" default:"4"`

	WarmupCron string `envconfig:"WARMUP_CRON" default:"*/5 * * * *"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations envconfig cannot express.
func (c *Config) Validate() error {
	if c.PGDSN == "" && c.SeedPath == "" {
		return fmt.Errorf("config: either PG_DSN or SEED_PATH must be set")
	}
	if c.SeedDatabase && (c.PGDSN == "" || c.SeedPath == "") {
		return fmt.Errorf("config: SEED_DATABASE requires PG_DSN and SEED_PATH")
	}
	if c.ReportsMaxYears < 1 || c.ReportsMaxYears > 4 {
		return fmt.Errorf("config: REPORTS_MAX_YEARS must be between 1 and 4")
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("config: APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location resolves AppTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	if c == nil || c.AppTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
