// Package store defines the hierarchical-namespace store contract consumed
// by the folder catalog.
//
// A hierarchical store presents directory-like paths carrying per-path ACLs
// and a string-keyed metadata bag, as opposed to a flat key/value blob
// store. Implementations live in the subpackages (memory, badger, s3, adls)
// and must all satisfy the same contract so they can be swapped through
// configuration; pkg/store/testing provides a reusable contract test suite.
package store

import (
	"context"
	"errors"
	"time"
)

// DirectoryMarkerKey is the metadata key some backends attach to mark a path
// as a directory. It is read-only on the server side: submitting it back on
// a metadata write is rejected, so callers must strip it before writing.
const DirectoryMarkerKey = "hdi_isfolder"

// ErrStopIteration is a sentinel returned by ListPaths callbacks to stop
// enumeration early. ListPaths swallows it and returns nil.
var ErrStopIteration = errors.New("stop iteration")

// DirectoryProperties holds the store-side state of a directory.
type DirectoryProperties struct {
	// CreatedOn is the store-assigned creation timestamp, immutable.
	CreatedOn time.Time

	// Metadata is the directory's string-keyed metadata bag. May include
	// DirectoryMarkerKey depending on the backend.
	Metadata map[string]string
}

// PathEntry describes a single path produced by ListPaths.
type PathEntry struct {
	// Name is the path relative to the store root (e.g. "alpha/reports/q1.csv").
	Name string

	// IsDirectory distinguishes directories from file objects.
	IsDirectory bool

	// ContentLength is the file's byte size. Nil when the backend did not
	// report a length; directories always carry nil.
	ContentLength *int64
}

// HierarchicalStore is the collaborator interface over a path-oriented,
// ACL-bearing, metadata-bearing object store.
//
// Every method that touches the backing service takes a context and may
// block on network I/O. Business-logic failures are reported as *StoreError;
// transport-level failures use code ErrTransport with the underlying error
// wrapped.
//
// Thread safety: implementations must be safe for concurrent use.
type HierarchicalStore interface {
	// CreateDirectory creates a directory at path. Returns ErrAlreadyExists
	// if the path is taken and ErrUnexpectedStatus if the backend reports
	// anything other than a created outcome.
	CreateDirectory(ctx context.Context, path string) error

	// GetDirectoryProperties returns the directory's creation time and
	// metadata bag. Returns ErrNotFound for missing paths.
	GetDirectoryProperties(ctx context.Context, path string) (DirectoryProperties, error)

	// SetDirectoryMetadata replaces the directory's entire metadata bag.
	// Replace semantics, never insert-only: existing keys are overwritten
	// and keys missing from the new map are dropped.
	SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error

	// GetAccessControl returns the path's ACL entries in the store's native
	// order. When resolveIdentities is true, entity identifiers are resolved
	// to user-principal form instead of raw object IDs where the backend
	// supports it.
	GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]AccessControlEntry, error)

	// UpdateAccessControlRecursive merges the given entries into the ACL of
	// the path and every existing descendant.
	UpdateAccessControlRecursive(ctx context.Context, path string, entries []AccessControlEntry) error

	// ListPaths enumerates entries under path ("" for the store root),
	// invoking cb once per entry in the store's native order. Directories
	// are included only when includeDirectories is true. Returning
	// ErrStopIteration from cb stops enumeration without error; any other
	// callback error aborts enumeration and is returned unchanged.
	ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(PathEntry) error) error

	// DirectoryURI returns the canonical URI of a directory. Purely
	// computational, never touches the backend.
	DirectoryURI(path string) string
}
