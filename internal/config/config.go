// Package config loads service configuration from the environment and an
// optional YAML file.
//
// Precedence, lowest first: struct defaults, environment variables (prefix
// SENATE_TRADES, e.g. SENATE_TRADES_SERVER_PORT), the YAML file. The file may
// reference the environment with ${VAR}. DATABASE_URL is honored without the
// prefix.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SENATE_TRADES"

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Store     StoreConfig     `yaml:"store" envconfig:"STORE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	CORS      CORSConfig      `yaml:"cors" envconfig:"CORS"`
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" split_words:"true" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" split_words:"true" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" split_words:"true" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" split_words:"true" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" split_words:"true" default:"10s" validate:"gt=0"`
	QueryTimeout    time.Duration `yaml:"query_timeout" split_words:"true" default:"20s" validate:"gt=0"`
	EnableMetrics   bool          `yaml:"enable_metrics" split_words:"true" default:"true"`
}

// StoreConfig selects and configures the transaction store.
type StoreConfig struct {
	Driver   string         `yaml:"driver" split_words:"true" default:"postgres" validate:"oneof=postgres bigquery sqlite"`
	Table    string         `yaml:"table" split_words:"true" default:"transactions" validate:"required,sqlident"`
	Postgres DBConfig       `yaml:"postgres" envconfig:"POSTGRES"`
	BigQuery BigQueryConfig `yaml:"bigquery" envconfig:"BIGQUERY"`
	SQLite   SQLiteConfig   `yaml:"sqlite" envconfig:"SQLITE"`
}

// DBConfig holds PostgreSQL connection settings. URL, when set, wins over
// the discrete fields.
type DBConfig struct {
	URL      string `yaml:"url" envconfig:"DATABASE_URL"`
	Host     string `yaml:"host" split_words:"true" default:"localhost"`
	Port     int    `yaml:"port" split_words:"true" default:"5432" validate:"min=1,max=65535"`
	Name     string `yaml:"name" split_words:"true" default:"senate"`
	User     string `yaml:"user" split_words:"true" default:"postgres"`
	Password string `yaml:"password" split_words:"true"`
	SSLMode  string `yaml:"ssl_mode" split_words:"true" default:"prefer" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int    `yaml:"max_conns" split_words:"true" default:"10" validate:"min=1"`
	MinConns int    `yaml:"min_conns" split_words:"true" default:"1" validate:"min=0,ltefield=MaxConns"`
}

// BigQueryConfig holds BigQuery client settings.
type BigQueryConfig struct {
	ProjectID         string `yaml:"project_id" split_words:"true"`
	Location          string `yaml:"location" split_words:"true"`
	MaxConcurrentJobs int    `yaml:"max_concurrent_jobs" split_words:"true" default:"8" validate:"min=1"`
}

// SQLiteConfig locates the local database file.
type SQLiteConfig struct {
	Path string `yaml:"path" split_words:"true" default:"senate_trades.db"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" split_words:"true" default:"json" validate:"oneof=json console"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true" default:"http://localhost:5500,http://127.0.0.1:5500"`
}

// RateLimitConfig contains per-client rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" split_words:"true" default:"true"`
	RPS     float64 `yaml:"rps" split_words:"true" default:"20" validate:"gt=0"`
	Burst   int     `yaml:"burst" split_words:"true" default:"40" validate:"min=1"`
}

// ExportConfig controls where generated reports are written. An empty Bucket
// writes to Dir on the local filesystem.
type ExportConfig struct {
	Dir    string `yaml:"dir" split_words:"true" default:"exports"`
	Bucket string `yaml:"bucket" split_words:"true"`
	Prefix string `yaml:"prefix" split_words:"true" default:"reports"`
}

// Load reads defaults and the environment, overlays the YAML file at path when
// path is non-empty, and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// overlayFile decodes the YAML file onto cfg; keys absent from the file keep
// their current values.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}
