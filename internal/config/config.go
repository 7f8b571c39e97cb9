// Package config loads runtime settings shared by the vale commands.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds settings read from VALE_* environment variables. Command
// flags override individual fields after parsing.
type Config struct {
	// Seed is the master battle seed; 0 lets the caller pick one.
	Seed      int64    `env:"VALE_SEED" envDefault:"0"`
	Content   string   `env:"VALE_CONTENT"`
	LogLevel  string   `env:"VALE_LOG_LEVEL" envDefault:"info"`
	LogFormat string   `env:"VALE_LOG_FORMAT" envDefault:"console"`
	MaxRounds int      `env:"VALE_MAX_ROUNDS" envDefault:"50"`
	Addr      string   `env:"VALE_ADDR" envDefault:":8080"`
	Party     []string `env:"VALE_PARTY" envSeparator:"," envDefault:"isaac,garet,ivan,mia"`
	Djinn     []string `env:"VALE_DJINN" envSeparator:","`
	Level     int      `env:"VALE_LEVEL" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a Config from the process environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// FromMap parses a Config from an explicit environment, ignoring the
// process environment.
func FromMap(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	switch {
	case c.Seed < 0:
		return fmt.Errorf("VALE_SEED must be non-negative, got %d", c.Seed)
	case c.MaxRounds <= 0:
		return fmt.Errorf("VALE_MAX_ROUNDS must be positive, got %d", c.MaxRounds)
	case c.Level < 1:
		return fmt.Errorf("VALE_LEVEL must be at least 1, got %d", c.Level)
	}
	return nil
}
