// Package config loads the store configuration from the environment.
// An optional .env file in the working directory is read first.
package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the complete runtime configuration.
type Config struct {
	LogLevel         string        `env:"LOG_LEVEL" env-default:"info"`
	ServerRunAddress string        `env:"SERVER_RUN_ADDRESS" env-default:"0.0.0.0:8080"`
	DatabaseURI      string        `env:"DATABASE_URI" env-default:"host=db user=postgres password=password dbname=swap_store sslmode=disable"`
	JWTSecret        string        `env:"JWT_SECRET" env-default:"supersecretkey"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT" env-default:"10s"`
	MetricsAddress   string        `env:"METRICS_ADDR"`
	Redis            RedisConfig
	NATS             NATSConfig
	Sweep            SweepConfig
}

// RedisConfig configures the item cache. An empty address disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0"`
	ItemTTL  time.Duration `env:"ITEM_CACHE_TTL" env-default:"1m"`
}

// NATSConfig configures event publishing. An empty URL disables it.
type NATSConfig struct {
	URL string `env:"NATS_URL"`
}

// SweepConfig configures the expiry sweep.
type SweepConfig struct {
	BatchSize int `env:"SWEEP_BATCH" env-default:"100"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment and default values")
	}

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
