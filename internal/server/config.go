package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server's runtime tunables, parsed from environment
// variables.
type Config struct {
	ListenAddress   string        `env:"ARENA_ADDR" envDefault:":8080"`
	DatabasePath    string        `env:"ARENA_DB" envDefault:"arena.db"`
	MatchRetention  time.Duration `env:"ARENA_MATCH_RETENTION" envDefault:"30s"`
	LeaderboardSize int           `env:"ARENA_LEADERBOARD_SIZE" envDefault:"100"`
	ClientTimeout   time.Duration `env:"ARENA_CLIENT_TIMEOUT" envDefault:"90s"`
	StatusInterval  time.Duration `env:"ARENA_STATUS_INTERVAL" envDefault:"60s"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
