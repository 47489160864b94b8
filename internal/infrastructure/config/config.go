package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Upstream UpstreamConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
}

// UpstreamConfig points at the external storefront API.
type UpstreamConfig struct {
	BaseURL string        `env:"UPSTREAM_URL,     default=https://dummyjson.com"`
	Timeout time.Duration `env:"UPSTREAM_TIMEOUT, default=15s"`

	// TokenTTLMins is the expiresInMins hint sent with refresh requests.
	TokenTTLMins int `env:"TOKEN_TTL_MINS, default=30"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// CatalogConfig tunes the product cache.
type CatalogConfig struct {
	// TTL is the freshness window: a snapshot younger than this is served
	// without an upstream call.
	TTL time.Duration `env:"CATALOG_TTL, default=5m"`

	// WarmInterval enables the background cache warmer when positive.
	WarmInterval time.Duration `env:"CATALOG_WARM_INTERVAL, default=0"`

	// PageSize is the default listing page size.
	PageSize int `env:"CATALOG_PAGE_SIZE, default=12"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
