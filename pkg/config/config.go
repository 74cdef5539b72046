package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete folder catalog service configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (SAS_*)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
//
// Store Configuration Pattern:
// Each store backend defines its own configuration shape. The Config
// struct contains type-specific sections (store.memory, store.badger,
// store.s3, store.adls) and only the section matching the selected type
// is used.
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging"`

	// Server contains HTTP server settings
	Server ServerConfig `mapstructure:"server"`

	// Store specifies the storage backend type and type-specific configuration
	Store StoreConfig `mapstructure:"store"`

	// Catalog contains folder catalog settings
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// ListenAddress is the address the API server binds to, e.g. ":8080"
	ListenAddress string `mapstructure:"listen_address" validate:"required"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// RateLimit throttles incoming API requests
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Metrics configures the Prometheus metrics endpoint
	Metrics MetricsConfig `mapstructure:"metrics"`

	// CORSAllowedOrigins lists origins allowed to call the API from a
	// browser. Empty list allows all origins.
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// RateLimitConfig controls API request throttling.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate; 0 disables limiting
	RequestsPerSecond uint `mapstructure:"requests_per_second"`

	// Burst is the maximum burst size above the sustained rate
	Burst uint `mapstructure:"burst"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on
	Enabled bool `mapstructure:"enabled"`

	// Port is the metrics server port
	Port uint16 `mapstructure:"port" validate:"omitempty,gt=0"`
}

// StoreConfig specifies storage backend configuration.
//
// The Type field determines which backend is used.
// Only the corresponding type-specific configuration section is used.
type StoreConfig struct {
	// Type specifies which store backend to use
	// Valid values: memory, badger, s3, adls
	Type string `mapstructure:"type" validate:"required,oneof=memory badger s3 adls"`

	// Memory contains memory-backend configuration
	// Only used when Type = "memory"
	Memory map[string]any `mapstructure:"memory"`

	// Badger contains BadgerDB-backend configuration
	// Only used when Type = "badger"
	Badger map[string]any `mapstructure:"badger"`

	// S3 contains S3-backend configuration
	// Only used when Type = "s3"
	S3 map[string]any `mapstructure:"s3"`

	// ADLS contains Azure Data Lake Gen2 backend configuration
	// Only used when Type = "adls"
	ADLS map[string]any `mapstructure:"adls"`

	// Retry wraps the backend in a retrying decorator when enabled
	Retry RetryConfig `mapstructure:"retry"`
}

// RetryConfig controls the retrying store decorator.
type RetryConfig struct {
	// Enabled turns retries on for transient backend failures
	Enabled bool `mapstructure:"enabled"`

	// MaxAttempts caps the number of attempts per operation
	MaxAttempts int `mapstructure:"max_attempts" validate:"omitempty,gt=0"`

	// InitialSleep is the delay before the first retry
	InitialSleep time.Duration `mapstructure:"initial_sleep"`

	// MaxSleep caps the backoff delay
	MaxSleep time.Duration `mapstructure:"max_sleep"`
}

// CatalogConfig contains folder catalog settings.
type CatalogConfig struct {
	// CostPerTerabyte is the monthly storage price used for folder cost
	// reporting. Leaving it unset disables cost reporting entirely.
	CostPerTerabyte *float64 `mapstructure:"cost_per_terabyte" validate:"omitempty,gte=0"`

	// SizeMaxAge is how long a cached folder size stays fresh before a
	// detail request recomputes it
	SizeMaxAge time.Duration `mapstructure:"size_max_age" validate:"required,gt=0"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (SAS_*)
//  2. Configuration file
//  3. Default values
//
// configPath may be empty, in which case the default location is searched.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use the SAS_ prefix and underscores.
	// Example: SAS_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("SAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/sas/config.{yaml,toml}
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			// Config file not found is acceptable - use defaults
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return nil
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to
// current directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "sas")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "sas")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}
