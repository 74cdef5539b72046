package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MinimalConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "INFO"

store:
  type: "memory"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify defaults were applied
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default output 'stdout', got %q", cfg.Logging.Output)
	}
	if cfg.Server.ListenAddress != ":8080" {
		t.Errorf("Expected default listen_address ':8080', got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Catalog.SizeMaxAge != 168*time.Hour {
		t.Errorf("Expected default size_max_age 168h, got %v", cfg.Catalog.SizeMaxAge)
	}
	if cfg.Catalog.CostPerTerabyte != nil {
		t.Errorf("Expected cost_per_terabyte to be unset, got %v", *cfg.Catalog.CostPerTerabyte)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	nonExistentPath := filepath.Join(tmpDir, "nonexistent.yaml")

	cfg, err := Load(nonExistentPath)
	if err != nil {
		t.Fatalf("Expected no error with missing config file, got: %v", err)
	}

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Store.Type != "memory" {
		t.Errorf("Expected default store type 'memory', got %q", cfg.Store.Type)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	configContent := `
logging:
  level: INFO
  invalid yaml here [[[
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected error with invalid YAML, got nil")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "debug"
  output: "stderr"

server:
  listen_address: ":9000"
  shutdown_timeout: 10s
  rate_limit:
    requests_per_second: 100
    burst: 200
  metrics:
    enabled: true
    port: 9191
  cors_allowed_origins:
    - "https://example.com"

store:
  type: "badger"
  badger:
    db_path: "/var/lib/sas/badger"
  retry:
    enabled: true

catalog:
  cost_per_terabyte: 21.5
  size_max_age: 24h
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level 'DEBUG', got %q", cfg.Logging.Level)
	}
	if cfg.Server.ListenAddress != ":9000" {
		t.Errorf("Expected listen_address ':9000', got %q", cfg.Server.ListenAddress)
	}
	if cfg.Server.RateLimit.RequestsPerSecond != 100 || cfg.Server.RateLimit.Burst != 200 {
		t.Errorf("Unexpected rate limit config: %+v", cfg.Server.RateLimit)
	}
	if !cfg.Server.Metrics.Enabled || cfg.Server.Metrics.Port != 9191 {
		t.Errorf("Unexpected metrics config: %+v", cfg.Server.Metrics)
	}
	if cfg.Store.Type != "badger" {
		t.Errorf("Expected store type 'badger', got %q", cfg.Store.Type)
	}
	if cfg.Store.Badger["db_path"] != "/var/lib/sas/badger" {
		t.Errorf("Unexpected badger options: %v", cfg.Store.Badger)
	}
	if !cfg.Store.Retry.Enabled || cfg.Store.Retry.MaxAttempts != 5 {
		t.Errorf("Expected retry defaults applied, got %+v", cfg.Store.Retry)
	}
	if cfg.Catalog.CostPerTerabyte == nil || *cfg.Catalog.CostPerTerabyte != 21.5 {
		t.Errorf("Unexpected cost_per_terabyte: %v", cfg.Catalog.CostPerTerabyte)
	}
	if cfg.Catalog.SizeMaxAge != 24*time.Hour {
		t.Errorf("Expected size_max_age 24h, got %v", cfg.Catalog.SizeMaxAge)
	}
}

func TestLoad_InvalidStoreType(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
store:
  type: "cassandra"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("Expected validation error for unknown store type, got nil")
	}
}
