// Package config loads application settings from an optional YAML file, an
// optional .env file, and the process environment, in that order of precedence
// (environment wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Gateway drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config is the full application configuration.
type Config struct {
	Server struct {
		Port         string        `yaml:"port" env:"PORT"`
		ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT"`
		CORSOrigins  []string      `yaml:"cors_origins" env:"CORS_ORIGINS"`
		RateLimit    struct {
			RPS   float64 `yaml:"rps" env:"AUTH_RATE_RPS"`
			Burst int     `yaml:"burst" env:"AUTH_RATE_BURST"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`

	Gateway struct {
		Driver             string `yaml:"driver" env:"GATEWAY_DRIVER"`
		UsersCollection    string `yaml:"users_collection" env:"USERS_COLLECTION"`
		EventsCollection   string `yaml:"events_collection" env:"EVENTS_COLLECTION"`
		BookingsCollection string `yaml:"bookings_collection" env:"BOOKINGS_COLLECTION"`
		ScoresCollection   string `yaml:"scores_collection" env:"SCORES_COLLECTION"`
		VideosCollection   string `yaml:"videos_collection" env:"VIDEOS_COLLECTION"`
		FilesBucket        string `yaml:"files_bucket" env:"FILES_BUCKET"`
		PublicURL          string `yaml:"public_url" env:"PUBLIC_URL"`
		RefreshParallelism int    `yaml:"refresh_parallelism" env:"REFRESH_PARALLELISM"`
		LatestEventsLimit  int    `yaml:"latest_events_limit" env:"LATEST_EVENTS_LIMIT"`
	} `yaml:"gateway"`

	Database struct {
		Host     string `yaml:"host" env:"DB_HOST"`
		Port     string `yaml:"port" env:"DB_PORT"`
		User     string `yaml:"user" env:"DB_USER"`
		Password string `yaml:"password" env:"DB_PASSWORD"`
		DBName   string `yaml:"dbname" env:"DB_NAME"`
		SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns int32  `yaml:"max_conns" env:"DB_MAX_CONNS"`
	} `yaml:"database"`

	Mongo struct {
		URI      string `yaml:"uri" env:"MONGO_URI"`
		Database string `yaml:"database" env:"MONGO_DATABASE"`
	} `yaml:"mongo"`

	Auth struct {
		TokenSecret string        `yaml:"token_secret" env:"AUTH_TOKEN_SECRET"`
		SessionTTL  time.Duration `yaml:"session_ttl" env:"AUTH_SESSION_TTL"`
		Issuer      string        `yaml:"issuer" env:"AUTH_ISSUER"`
	} `yaml:"auth"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// Load builds a Config from defaults, then path (if it exists), then envFile
// (if it exists), then the environment. Either path may be empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already present in the environment.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Default returns local-development settings backed by the memory gateway.
func Default() *Config {
	cfg := &Config{}

	cfg.Server.Port = "8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.IdleTimeout = 60 * time.Second
	cfg.Server.CORSOrigins = []string{"*"}
	cfg.Server.RateLimit.RPS = 1
	cfg.Server.RateLimit.Burst = 5

	cfg.Gateway.Driver = DriverMemory
	cfg.Gateway.UsersCollection = "users"
	cfg.Gateway.EventsCollection = "events"
	cfg.Gateway.BookingsCollection = "bookings"
	cfg.Gateway.ScoresCollection = "activity_scores"
	cfg.Gateway.VideosCollection = "videos"
	cfg.Gateway.FilesBucket = "files"
	cfg.Gateway.PublicURL = "http://localhost:8080"
	cfg.Gateway.RefreshParallelism = 8
	cfg.Gateway.LatestEventsLimit = 100

	cfg.Database.Host = "localhost"
	cfg.Database.Port = "5432"
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.DBName = "campusevents"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 20

	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "campusevents"

	cfg.Auth.SessionTTL = 30 * 24 * time.Hour
	cfg.Auth.Issuer = "campus-events"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return cfg
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Gateway.Driver {
	case DriverMemory:
	case DriverPostgres, DriverMongo:
		if c.Auth.TokenSecret == "" {
			return fmt.Errorf("auth token secret is required for the %s gateway", c.Gateway.Driver)
		}
	default:
		return fmt.Errorf("unknown gateway driver %q", c.Gateway.Driver)
	}
	if c.Gateway.RefreshParallelism <= 0 {
		return errors.New("refresh parallelism must be positive")
	}
	if c.Gateway.LatestEventsLimit <= 0 {
		return errors.New("latest events limit must be positive")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}
	return nil
}

// PostgresDSN builds a libpq-compatible connection string.
func (c *Config) PostgresDSN() string {
	d := c.Database
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PrettyLogs reports whether console-formatted logs were requested.
func (c *Config) PrettyLogs() bool {
	return c.Logging.Format == "console" || c.Logging.Format == "pretty"
}
