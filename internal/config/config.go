package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	ServerAddress string `envconfig:"SERVER_ADDRESS" default:":8080"`
	DBURL         string `envconfig:"DB_URL" required:"true"`
	RedisURL      string `envconfig:"REDIS_URL" required:"true"`
	JWTSecret     string `envconfig:"JWT_SECRET" required:"true"`

	// MarkReadOnJoin makes opening a conversation view mark the partner's
	// messages as read immediately, instead of waiting for an explicit
	// mark-read from the client.
	MarkReadOnJoin bool `envconfig:"MARK_READ_ON_JOIN" default:"false"`

	AsynqConcurrency int `envconfig:"ASYNQ_CONCURRENCY" default:"10"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
