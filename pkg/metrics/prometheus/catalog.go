// Package prometheus provides Prometheus-backed implementations of the
// service's metrics interfaces.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/fredcicles/sas/pkg/catalog"
	"github.com/fredcicles/sas/pkg/metrics"
)

// catalogMetrics is the Prometheus implementation of catalog.CatalogMetrics.
type catalogMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	sizeRefreshes     prometheus.Counter
	sizeRefreshBytes  prometheus.Histogram
	foldersMatched    prometheus.Histogram
	foldersScanned    prometheus.Histogram
}

// NewCatalogMetrics creates a new Prometheus-backed CatalogMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called); the
// catalog treats a nil metrics implementation as no-op.
func NewCatalogMetrics() catalog.CatalogMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &catalogMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "sas_catalog_operations_total",
				Help: "Total number of catalog operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "sas_catalog_operation_duration_milliseconds",
				Help: "Duration of catalog operations in milliseconds",
				Buckets: []float64{
					1,     // 1ms
					10,    // 10ms
					100,   // 100ms
					1000,  // 1s
					10000, // 10s
				},
			},
			[]string{"operation"},
		),
		sizeRefreshes: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "sas_catalog_size_refreshes_total",
				Help: "Total number of folder size recomputations",
			},
		),
		sizeRefreshBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "sas_catalog_size_refresh_bytes",
				Help: "Distribution of recomputed folder sizes in bytes",
				Buckets: []float64{
					1048576,       // 1MB
					1073741824,    // 1GB
					107374182400,  // 100GB
					1099511627776, // 1TB
				},
			},
		),
		foldersMatched: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sas_catalog_folders_matched",
				Help:    "Folders matched per accessible-folder listing",
				Buckets: []float64{1, 10, 100, 1000},
			},
		),
		foldersScanned: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sas_catalog_folders_scanned",
				Help:    "Folders scanned per accessible-folder listing",
				Buckets: []float64{1, 10, 100, 1000},
			},
		),
	}
}

func (m *catalogMetrics) ObserveOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds() * 1000)
}

func (m *catalogMetrics) RecordSizeRefresh(folder string, bytes int64, duration time.Duration) {
	m.sizeRefreshes.Inc()
	m.sizeRefreshBytes.Observe(float64(bytes))
}

func (m *catalogMetrics) RecordFoldersListed(matched, scanned int) {
	m.foldersMatched.Observe(float64(matched))
	m.foldersScanned.Observe(float64(scanned))
}
