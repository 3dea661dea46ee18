package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const Production = "production"

type DatabaseOptions struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"` // postgres or sqlite
	Host       string `env:"PG_HOST" envDefault:"localhost"`
	Port       string `env:"PG_PORT" envDefault:"5432"`
	User       string `env:"PG_USER" envDefault:"postgres"`
	Name       string `env:"PG_DB" envDefault:"gazetteer"`
	Password   string `env:"PG_PASSWORD" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"gazetteer.sqlite3"`
}

// DSN returns the connection string for the configured driver.
func (d *DatabaseOptions) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Password, d.Host, d.Port, d.Name)
}

type RedisOptions struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     string `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
}

type CacheOptions struct {
	Backend    string `env:"CACHE_BACKEND" envDefault:"memory"` // memory or redis
	TTLSeconds int    `env:"CACHE_TTL_SECONDS" envDefault:"300"`
}

type RateLimitOptions struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"20"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"40"`
}

type Configuration struct {
	AppEnv         string `env:"APP_ENV" envDefault:"development"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	SourceDBPath   string `env:"SOURCE_DB_PATH" envDefault:"allcountries.sqlite3"`
	AdminJWTSecret string `env:"ADMIN_JWT_SECRET"`

	Database  DatabaseOptions
	Redis     RedisOptions
	Cache     CacheOptions
	RateLimit RateLimitOptions
}

// Validate checks option combinations env parsing cannot express.
func (c *Configuration) Validate() error {
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be 'postgres' or 'sqlite', got '%s'", c.Database.Driver)
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("CACHE_BACKEND must be 'memory' or 'redis', got '%s'", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be non-negative, got %d", c.Cache.TTLSeconds)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// LoadEnv loads whichever of the given dotenv files exist.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// Load reads .env files (if present) and then the process environment.
func Load() (*Configuration, error) {
	if _, err := LoadEnv([]string{".env", ".env.local"}); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
