package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	minSigningKeyLen = 32
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=mongo"`

	JWT       JWTConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Catalog   CatalogConfig
	Seed      SeedConfig
}

type JWTConfig struct {
	SigningKey string        `env:"JWT_SIGNING_KEY, required"`
	Issuer     string        `env:"JWT_ISSUER"`
	Audience   string        `env:"JWT_AUDIENCE"`
	TTL        time.Duration `env:"JWT_TTL,         default=1h"`
}

type MongoConfig struct {
	URI                    string        `env:"MONGO_URI,                      default=mongodb://localhost:27017"`
	Database               string        `env:"MONGO_DB,                       default=product_catalog"`
	AppName                string        `env:"MONGO_APP_NAME,                 default=product-api"`
	MaxPoolSize            uint64        `env:"MONGO_MAX_POOL_SIZE,            default=100"`
	ServerSelectionTimeout time.Duration `env:"MONGO_SERVER_SELECTION_TIMEOUT, default=5s"`
}

type RedisConfig struct {
	Enabled  bool   `env:"REDIS_ENABLED,   default=true"`
	Addr     string `env:"REDIS_ADDR,      default=localhost:6379"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,        default=0"`
	PoolSize int    `env:"REDIS_POOL_SIZE, default=10"`
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	LoginRequests int           `env:"LOGIN_RATE_REQUESTS, default=10"`
	LoginInterval time.Duration `env:"LOGIN_RATE_INTERVAL, default=1m"`
}

type CatalogConfig struct {
	CacheTTL     time.Duration `env:"PRODUCT_CACHE_TTL, default=5m"`
	EventWorkers int           `env:"EVENT_WORKERS,     default=4"`
}

// SeedConfig names the administrator created at startup. Leave both empty to
// skip seeding.
type SeedConfig struct {
	AdminEmail    string `env:"SEED_ADMIN_EMAIL"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

// IsDevelopment reports whether human-readable logs should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through the given lookuper and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver))
	}
	if len(c.JWT.SigningKey) < minSigningKeyLen {
		errs = append(errs, fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes", minSigningKeyLen))
	}
	if c.JWT.TTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.RateLimit.LoginRequests <= 0 || c.RateLimit.LoginInterval <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_REQUESTS and LOGIN_RATE_INTERVAL must be positive"))
	}
	if c.Redis.Enabled && c.Redis.PoolSize <= 0 {
		errs = append(errs, errors.New("REDIS_POOL_SIZE must be positive"))
	}
	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		errs = append(errs, errors.New("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}
