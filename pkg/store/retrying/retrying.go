// Package retrying provides a HierarchicalStore decorator that retries
// transient failures with exponential backoff.
//
// Only errors classified as retriable by store.IsRetriable (transport
// failures and unexpected backend statuses) are retried; business-logic
// errors such as NotFound or AlreadyExists pass through immediately.
//
// ListPaths is deliberately not retried: the callback may already have
// observed entries from a failed walk, and replaying it could hand the
// consumer duplicates. Listing failures surface to the caller, who restarts
// the enumeration from scratch if desired.
package retrying

import (
	"context"

	"github.com/fredcicles/sas/internal/retry"
	"github.com/fredcicles/sas/pkg/store"
)

type retryingStore struct {
	base store.HierarchicalStore
	opts retry.Options
}

// NewWrapper returns a HierarchicalStore that wraps the mutating and
// point-read operations of base with the given retry schedule. Zero-value
// options select retry.DefaultOptions.
func NewWrapper(base store.HierarchicalStore, opts retry.Options) store.HierarchicalStore {
	return &retryingStore{base: base, opts: opts}
}

func (s *retryingStore) CreateDirectory(ctx context.Context, path string) error {
	return retry.WithExponentialBackoff(ctx, "CreateDirectory("+path+")", s.opts, func() error {
		return s.base.CreateDirectory(ctx, path)
	}, store.IsRetriable)
}

func (s *retryingStore) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	var props store.DirectoryProperties
	err := retry.WithExponentialBackoff(ctx, "GetDirectoryProperties("+path+")", s.opts, func() error {
		var attemptErr error
		props, attemptErr = s.base.GetDirectoryProperties(ctx, path)
		return attemptErr
	}, store.IsRetriable)
	return props, err
}

func (s *retryingStore) SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error {
	return retry.WithExponentialBackoff(ctx, "SetDirectoryMetadata("+path+")", s.opts, func() error {
		return s.base.SetDirectoryMetadata(ctx, path, metadata)
	}, store.IsRetriable)
}

func (s *retryingStore) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	var entries []store.AccessControlEntry
	err := retry.WithExponentialBackoff(ctx, "GetAccessControl("+path+")", s.opts, func() error {
		var attemptErr error
		entries, attemptErr = s.base.GetAccessControl(ctx, path, resolveIdentities)
		return attemptErr
	}, store.IsRetriable)
	return entries, err
}

func (s *retryingStore) UpdateAccessControlRecursive(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	return retry.WithExponentialBackoff(ctx, "UpdateAccessControlRecursive("+path+")", s.opts, func() error {
		return s.base.UpdateAccessControlRecursive(ctx, path, entries)
	}, store.IsRetriable)
}

func (s *retryingStore) ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(store.PathEntry) error) error {
	return s.base.ListPaths(ctx, path, recursive, includeDirectories, cb)
}

func (s *retryingStore) DirectoryURI(path string) string {
	return s.base.DirectoryURI(path)
}
