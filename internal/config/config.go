package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-repository-audit/cache"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type HTTP struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DB struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite3"`
	URL             string        `env:"DATABASE_URL" envDefault:"file:menu.db?cache=shared&_fk=1"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
	Debug           bool          `env:"DB_DEBUG"`
}

type Migrations struct {
	Enabled bool   `env:"MIGRATIONS_ENABLED" envDefault:"true"`
	Path    string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

type Cache struct {
	Backend      string        `env:"CACHE_BACKEND" envDefault:"memory"`
	TTL          time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	Capacity     int           `env:"CACHE_CAPACITY" envDefault:"10000"`
	RedisURL     string        `env:"REDIS_URL"`
	RedisTimeout time.Duration `env:"REDIS_TIMEOUT" envDefault:"3s"`
}

type Auth struct {
	Secret string        `env:"JWT_SECRET,required"`
	TTL    time.Duration `env:"JWT_TTL" envDefault:"2h"`
	Header string        `env:"JWT_HEADER" envDefault:"Authorization"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type Config struct {
	HTTP       HTTP
	DB         DB
	Migrations Migrations
	Cache      Cache
	Auth       Auth
	Log        Log
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// Load reads the given dotenv files, or .env when none are given, and then
// parses the environment. Missing dotenv files are ignored.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load dotenv: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return &ConfigError{Field: "DB_DRIVER", Message: fmt.Sprintf("unsupported driver %q", c.DB.Driver)}
	}
	if c.DB.URL == "" {
		return &ConfigError{Field: "DATABASE_URL", Message: "is required"}
	}
	if c.Auth.TTL <= 0 {
		return &ConfigError{Field: "JWT_TTL", Message: "must be greater than 0"}
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return &ConfigError{Field: "LOG_LEVEL", Message: err.Error()}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return &ConfigError{Field: "LOG_FORMAT", Message: "must be text or json"}
	}
	if err := c.Cache.CacheConfig().Validate(); err != nil {
		return fmt.Errorf("config: cache: %w", err)
	}
	return nil
}

// CacheConfig maps the environment onto the cache package configuration.
func (c Cache) CacheConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Backend = c.Backend
	cfg.TTL = c.TTL
	cfg.Capacity = c.Capacity
	cfg.RedisURL = c.RedisURL
	cfg.RedisTimeout = c.RedisTimeout
	return cfg
}

// Configure applies level and format to logger.
func (l Log) Configure(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(l.Level)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.SetOutput(os.Stdout)
	if strings.EqualFold(l.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
