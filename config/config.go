package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// PlatformPort is the PORT set by hosts like Render or Fly.io; it wins over Port.
	PlatformPort int    `env:"PORT"`
	Port         int    `env:"DEEPDIVE_PORT" envDefault:"8081"`
	DataDir      string `env:"DEEPDIVE_DATA_DIR" envDefault:"data"`
	DatabaseURL  string `env:"DATABASE_URL"`
	// MaxAttempts is the level generator retry budget.
	MaxAttempts   int   `env:"DEEPDIVE_MAX_ATTEMPTS" envDefault:"200"`
	Seed          int64 `env:"DEEPDIVE_SEED" envDefault:"0"`
	FailOnDeadEnd bool  `env:"DEEPDIVE_FAIL_ON_DEAD_END" envDefault:"false"`
	// ResultWebhook receives a signed GET per finished level when set.
	ResultWebhook string `env:"DEEPDIVE_RESULT_WEBHOOK"`
	ResultSecret  string `env:"DEEPDIVE_RESULT_SECRET"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if c.PlatformPort > 0 {
		c.Port = c.PlatformPort
	}
	if c.Port <= 0 {
		c.Port = 8081
	}
	if c.MaxAttempts <= 0 {
		return nil, fmt.Errorf("DEEPDIVE_MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	}
	return &c, nil
}

// Addr is the listen address for Port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
