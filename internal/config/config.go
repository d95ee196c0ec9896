package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Application environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config holds all application configuration.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	MaxDBConns  int32  `env:"MAX_DB_CONNS" envDefault:"16"`
	RedisURL    string `env:"REDIS_URL"`

	ServerPort int    `env:"PORT" envDefault:"3000"`
	AppEnv     string `env:"APP_ENV" envDefault:"development"`
	GinMode    string `env:"GIN_MODE"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE" envDefault:"100"`

	RateLimitWindowMS    int `env:"RATE_LIMIT_WINDOW_MS" envDefault:"900000"`
	RateLimitMaxRequests int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"100"`

	// AllowedOrigins controls HTTP CORS. A single "*" (the default) permits
	// every origin.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"pretty"`
}

// Load reads configuration from environment variables and validates it.
// It loads .env file if present but does not fail if missing.
func Load() (*Config, error) {
	_ = godotenv.Load() // .env is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = trimOrigins(cfg.AllowedOrigins)
	if cfg.GinMode == "" {
		cfg.GinMode = ginModeFor(cfg.AppEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DatabaseURL) == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if !slices.Contains([]string{EnvDevelopment, EnvProduction, EnvTest}, c.AppEnv) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of development, production, test, got %q", c.AppEnv))
	}
	if !slices.Contains([]string{"debug", "release", "test"}, c.GinMode) {
		errs = append(errs, fmt.Errorf("GIN_MODE must be one of debug, release, test, got %q", c.GinMode))
	}
	if c.MaxPageSize < 1 {
		errs = append(errs, fmt.Errorf("MAX_PAGE_SIZE must be positive, got %d", c.MaxPageSize))
	}
	if c.DefaultPageSize < 1 || c.DefaultPageSize > c.MaxPageSize {
		errs = append(errs, fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE, got %d", c.DefaultPageSize))
	}
	if c.RateLimitWindowMS < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_WINDOW_MS must be positive, got %d", c.RateLimitWindowMS))
	}
	if c.RateLimitMaxRequests < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MAX_REQUESTS must be positive, got %d", c.RateLimitMaxRequests))
	}
	if c.MaxDBConns < 1 {
		errs = append(errs, fmt.Errorf("MAX_DB_CONNS must be positive, got %d", c.MaxDBConns))
	}
	if !slices.Contains([]string{"error", "warn", "info", "debug"}, c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of error, warn, info, debug, got %q", c.LogLevel))
	}
	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be pretty or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// RateLimitWindow returns the fixed rate-limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

// StrictRateLimit is the per-window budget for write operations.
func (c *Config) StrictRateLimit() int {
	return max(1, c.RateLimitMaxRequests/10)
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	return len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*")
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

func ginModeFor(appEnv string) string {
	switch appEnv {
	case EnvProduction:
		return "release"
	case EnvTest:
		return "test"
	default:
		return "debug"
	}
}

// trimOrigins drops blanks and surrounding whitespace from the origins list.
func trimOrigins(raw []string) []string {
	origins := make([]string, 0, len(raw))
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
