package catalog

import "time"

// CatalogMetrics provides observability for catalog operations.
//
// Implementations can collect operation counts, latency and error rates.
// This is optional: passing nil to New installs a no-op implementation.
//
// Example implementations:
//   - Prometheus metrics (pkg/metrics/prometheus)
//   - In-memory counters for testing
type CatalogMetrics interface {
	// ObserveOperation records a catalog operation with its duration and outcome
	ObserveOperation(operation string, duration time.Duration, err error)

	// RecordSizeRefresh records a completed size-cache recomputation
	RecordSizeRefresh(folder string, bytes int64, duration time.Duration)

	// RecordFoldersListed records the outcome of an accessible-folder
	// enumeration: how many top-level folders matched out of how many were
	// scanned before the walk ended
	RecordFoldersListed(matched, scanned int)
}

// noopMetrics is the default no-op metrics implementation.
type noopMetrics struct{}

func (noopMetrics) ObserveOperation(operation string, duration time.Duration, err error)  {}
func (noopMetrics) RecordSizeRefresh(folder string, bytes int64, duration time.Duration) {}
func (noopMetrics) RecordFoldersListed(matched, scanned int)                             {}
