// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server needs to start.
//
// required: values that differ between environments or carry secrets.
// default: values common across environments.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	Presence PresenceConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Path string `envconfig:"DB_PATH" default:"./data/tably.db"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"JWT_SECRET" required:"true"`
	Duration time.Duration `envconfig:"JWT_DURATION" default:"6h"`
}

type PresenceConfig struct {
	// Threshold is how long a participant may miss heartbeats before being
	// excluded from split computations.
	Threshold time.Duration `envconfig:"PRESENCE_THRESHOLD" default:"30s"`
}

type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
}

// Load reads configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}
