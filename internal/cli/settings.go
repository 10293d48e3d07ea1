package cli

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aretw0/waypoint/pkg/adapters/redis"
)

// Settings holds the CLI defaults read from the environment. Flags override them.
type Settings struct {
	LogLevel  string `env:"WAYPOINT_LOG_LEVEL" envDefault:"info"`
	RedisAddr string `env:"WAYPOINT_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"WAYPOINT_REDIS_DB" envDefault:"0"`
	RedisKey  string `env:"WAYPOINT_REDIS_KEY" envDefault:"waypoint:machine"`
}

// LoadSettings reads a .env file from the working directory when one exists,
// then parses the process environment.
func LoadSettings() (Settings, error) {
	_ = godotenv.Load()
	return ParseSettings()
}

// ParseSettings parses the process environment only.
func ParseSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if s.RedisKey == "" {
		s.RedisKey = redis.DefaultKey
	}
	return s, nil
}
