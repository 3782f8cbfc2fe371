package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/geoquiz.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SPADir   string     `env:"SPA_DIR" envDefault:"../web/dist"`

	// RedisURL enables the cross-instance event relay. Empty keeps events
	// in-process.
	RedisURL string `env:"REDIS_URL"`

	// PublicURL is the externally reachable base used in join QR codes.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`

	SeedDemo          bool   `env:"SEED_DEMO" envDefault:"true"`
	ModeratorEmail    string `env:"MODERATOR_EMAIL" envDefault:"moderator@playperu.com"`
	ModeratorPassword string `env:"MODERATOR_PASSWORD" envDefault:"geoquiz"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
