// Package config loads process settings from the environment. Outside
// production a local .env file is read first.
package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	SecretSourceLocal = "local"
	SecretSourceAWS   = "aws"
)

type Config struct {
	Production bool   `env:"PRODUCTION"`
	HTTPAddr   string `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL      string `env:"DATABASE_URL"`
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"`
	PostgresPassword string `env:"POSTGRES_PASSWORD"`
	PostgresDB       string `env:"POSTGRES_DB"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	DBMaxOpenConns   int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns   int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	MigrateOnStart   bool   `env:"MIGRATE_ON_START" envDefault:"false"`

	SecretSource string `env:"SECRET_SOURCE" envDefault:"local"`
	AuthSecretID string `env:"AUTH_SECRET_ID" envDefault:"AUTH_PRIVATE_KEY"`
	AWSRegion    string `env:"AWS_REGION" envDefault:"us-east-1"`
	AWSSecretID  string `env:"AWS_SECRET_ID" envDefault:"MOODLY_ME_SERVICES_SECRETS"`

	BearerTokenTTL  time.Duration `env:"BEARER_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load reads .env (outside production) and parses the environment.
// A missing .env file is not an error.
func Load() (*Config, error) {
	if !productionFromEnv() {
		_ = godotenv.Load()
	}
	return Parse()
}

// Parse builds a Config from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SecretSource {
	case SecretSourceLocal, SecretSourceAWS:
	default:
		return fmt.Errorf("SECRET_SOURCE: unsupported value %q", c.SecretSource)
	}
	if c.BearerTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.BearerTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("BEARER_TOKEN_TTL (%s) must be shorter than REFRESH_TOKEN_TTL (%s)", c.BearerTokenTTL, c.RefreshTokenTTL)
	}
	return nil
}

// DSN returns DATABASE_URL, or a postgres URL assembled from the POSTGRES_* parts.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=" + url.QueryEscape(c.PostgresSSLMode),
	}
	return u.String()
}

func productionFromEnv() bool {
	var p struct {
		Production bool `env:"PRODUCTION"`
	}
	_ = env.Parse(&p)
	return p.Production
}
