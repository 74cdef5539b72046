package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// ErrStopIteration may be returned from a ListAccessible callback to stop
// enumeration early; the remaining folders are not visited and no store
// round-trips are paid for them. ListAccessible then returns nil.
var ErrStopIteration = store.ErrStopIteration

// ListAccessible enumerates the top-level folders the given principal can
// read, invoking fn once per accessible folder in the store's native
// listing order.
//
// For each top-level directory one ACL fetch (identities resolved to
// user-principal form) and one properties fetch are issued. A folder is
// included when any ACL entry has a non-empty entity whose normalized form
// starts-with the normalized principal and that entry grants read.
//
// Production is lazy and sequential: folders are examined one at a time and
// a callback returning ErrStopIteration terminates the walk. The first
// store error aborts the entire listing; there is no per-folder error
// isolation.
//
// Size and cost in the produced details reflect the currently cached
// values only; the size cache is never refreshed here, so cost can be
// stale by up to the cache age plus the interval since the last refresh.
func (c *Catalog) ListAccessible(ctx context.Context, principal string, fn func(FolderDetail) error) (err error) {
	start := c.clock()
	scanned, matched := 0, 0
	defer func() {
		c.metrics.ObserveOperation("list_accessible", time.Since(start), err)
		c.metrics.RecordFoldersListed(matched, scanned)
	}()

	normalized := NormalizePrincipal(principal)

	err = c.store.ListPaths(ctx, "", false, true, func(entry store.PathEntry) error {
		if !entry.IsDirectory {
			return nil
		}
		scanned++

		acl, aclErr := c.store.GetAccessControl(ctx, entry.Name, true)
		if aclErr != nil {
			return fmt.Errorf("failed to read ACL of folder %q: %w", entry.Name, aclErr)
		}

		props, propsErr := c.store.GetDirectoryProperties(ctx, entry.Name)
		if propsErr != nil {
			return fmt.Errorf("failed to read properties of folder %q: %w", entry.Name, propsErr)
		}

		if !principalMatches(acl, normalized) {
			return nil
		}

		matched++
		return fn(c.buildDetail(recordFromProperties(entry.Name, props), acl))
	})
	if err != nil {
		return fmt.Errorf("failed to list folders accessible to %q: %w", principal, err)
	}

	return nil
}
