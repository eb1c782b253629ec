// Package config loads server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dvynshuu/fintrack/internal/auth"
)

// MinSecretLength is the shortest accepted token signing key.
const MinSecretLength = auth.MinSecretLength

// ErrMissingConfig is returned when a required variable is unset.
var ErrMissingConfig = errors.New("missing configuration")

// Config holds all configuration for the server.
type Config struct {
	Port            string        `env:"PORT"             envDefault:"5001"`
	DBPath          string        `env:"DB_PATH"`
	JWTSecret       string        `env:"JWT_SECRET"`
	Environment     string        `env:"ENVIRONMENT"      envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"       envDefault:"console"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Google    Google
	Bootstrap Bootstrap
}

// Google configures federated sign-in. An empty ClientID disables it.
type Google struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	UserInfoURL  string `env:"GOOGLE_USERINFO_URL"  envDefault:"https://openidconnect.googleapis.com/v1/userinfo"`
	TokenInfoURL string `env:"GOOGLE_TOKENINFO_URL" envDefault:"https://oauth2.googleapis.com/tokeninfo"`
}

// Bootstrap seeds one account when the store is empty.
type Bootstrap struct {
	Email    string `env:"BOOTSTRAP_EMAIL"`
	Password string `env:"BOOTSTRAP_PASSWORD"`
	Name     string `env:"BOOTSTRAP_NAME" envDefault:"Admin"`
}

// Enabled reports whether both credentials are set.
func (b Bootstrap) Enabled() bool {
	return b.Email != "" && b.Password != ""
}

// Load reads a .env file if one exists, parses the environment and
// validates the result.
func Load() (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("%w: DB_PATH is required", ErrMissingConfig)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET is required", ErrMissingConfig)
	}
	if len(c.JWTSecret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Bootstrap.Email != "" && c.Bootstrap.Password == "" {
		return fmt.Errorf("%w: BOOTSTRAP_PASSWORD is required when BOOTSTRAP_EMAIL is set", ErrMissingConfig)
	}
	return nil
}

// IsProduction reports whether error details must be withheld.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SlogLevel parses LOG_LEVEL.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SetupLogger installs the default slog logger.
func SetupLogger(level slog.Level, format string) {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
