// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the game server settings.
type Config struct {
	// Addr is the HTTP/WebSocket listen address.
	Addr string `env:"GAME_ADDR" envDefault:":8080"`

	// DBPath is the SQLite database file.
	DBPath string `env:"GAME_DB_PATH" envDefault:"chickenmaster.db"`

	// EventsCSVPath is the daily event content sheet.
	EventsCSVPath string `env:"GAME_EVENTS_CSV" envDefault:"content/events.csv"`

	// RNGSeed fixes the randomness source for deterministic replay. Zero
	// keeps the default unseeded behavior.
	RNGSeed int64 `env:"GAME_RNG_SEED" envDefault:"0"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
