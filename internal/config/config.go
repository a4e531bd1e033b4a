package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/playperu/pinpoint/internal/round"
)

type Config struct {
	HTTPAddr          string        `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath            string        `env:"DB_PATH" envDefault:"data/pinpoint.db"`
	LogLevel          slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir            string        `env:"SPA_DIR" envDefault:"../web/dist"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH"`
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	Round             round.Config  `envPrefix:"ROUND_"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Round.Validate(); err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	return &cfg, nil
}
