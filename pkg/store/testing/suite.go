// Package testing provides a reusable contract test suite for
// HierarchicalStore implementations.
package testing

import (
	"context"
	"testing"

	"github.com/fredcicles/sas/pkg/store"
)

// StoreTestSuite is a test suite for HierarchicalStore implementations. It
// tests the interface contract, not implementation details, making it
// reusable across backends (memory, badger, s3, adls).
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func() store.HierarchicalStore {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore is a factory function that creates a fresh store instance
	// for each test. This ensures test isolation.
	NewStore func() store.HierarchicalStore

	// AddFile seeds a file object into a store previously returned by
	// NewStore. Backends without an out-of-band seeding mechanism may
	// leave this nil; file-listing tests are skipped in that case.
	AddFile func(st store.HierarchicalStore, path string, length *int64)
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Directories", suite.RunDirectoryTests)
	t.Run("Metadata", suite.RunMetadataTests)
	t.Run("AccessControl", suite.RunAccessControlTests)
	t.Run("Listing", suite.RunListingTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
