package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for testforge-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// AI provider configuration
	AI AIConfig `yaml:"ai"`

	// PlansFile optionally overrides the built-in plan catalog.
	PlansFile string `yaml:"plans_file" env:"PLANS_FILE" env-default:""`

	// MigrationsPath is the directory containing SQL migrations.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`

	// Credential encryption key for secrets at rest (2FA seeds).
	// Either a base64-encoded 32-byte key or a passphrase.
	CredentialsKey string `yaml:"-" env:"CREDENTIALS_KEY"` // Secret - not in YAML
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// JWTSecret signs issued tokens (HS256). Server fails to start without it.
	JWTSecret string `yaml:"-" env:"JWT_SECRET"` // Secret - not in YAML

	// TokenTTLHours is how long issued tokens remain valid.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"TOKEN_TTL_HOURS" env-default:"24"`
}

// TokenTTL returns the token lifetime as a duration.
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"testforge"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"testforge_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// URL builds a PostgreSQL connection URL from the config.
func (d *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}

// AIConfig holds LLM provider configuration.
type AIConfig struct {
	// Provider selects the client implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"AI_PROVIDER" env-default:"openai"`

	// BaseURL overrides the provider endpoint (for OpenAI-compatible gateways).
	BaseURL string `yaml:"base_url" env:"AI_BASE_URL" env-default:""`

	// Model is the model name, e.g. "gpt-4o" or "claude-sonnet-4-20250514".
	Model string `yaml:"model" env:"AI_MODEL" env-default:"gpt-4o"`

	// APIKey authenticates with the provider.
	APIKey string `yaml:"-" env:"AI_API_KEY"` // Secret - not in YAML

	// RequestTimeoutSeconds bounds a single outbound model call.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"AI_REQUEST_TIMEOUT_SECONDS" env-default:"90"`
}

// RequestTimeout returns the model call timeout as a duration.
func (a *AIConfig) RequestTimeout() time.Duration {
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml (if present) and environment
// variables, then validates required secrets.
func Load(version string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.Version = version

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}
	if cfg.CredentialsKey == "" {
		return nil, fmt.Errorf("CREDENTIALS_KEY must be set")
	}

	return &cfg, nil
}

// IsProduction reports whether the server runs in production mode.
// Error responses omit internal detail when true.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
