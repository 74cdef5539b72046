package config

import (
	"github.com/fredcicles/sas/pkg/catalog"
	"github.com/fredcicles/sas/pkg/metrics"
	promMetrics "github.com/fredcicles/sas/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from
// configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// CatalogMetrics is the metrics collector for the folder catalog
	// (nil if disabled; the catalog falls back to no-op internally)
	CatalogMetrics catalog.CatalogMetrics
}

// InitializeMetrics creates and initializes all metrics components based
// on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server and nil collectors (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return &MetricsResult{}
	}

	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		Port: int(cfg.Server.Metrics.Port),
	})

	return &MetricsResult{
		Server:         server,
		CatalogMetrics: promMetrics.NewCatalogMetrics(),
	}
}
