package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// GetOrRefreshSize returns the folder's aggregate byte size, recomputing it
// lazily when the cached value is older than the configured maximum age.
//
// A folder that has never been sized (no cached timestamp) is always
// considered stale. A stale folder is re-enumerated recursively: every
// descendant file contributes its content length, files without a reported
// length contribute 0, and directories contribute nothing. The new size and
// the recomputation time (UTC) are written back to the folder's metadata in
// a single replace, with the store's read-only directory marker stripped
// first.
//
// There is no other refresh trigger: writes into the folder do not
// invalidate the cache. On any store failure the error is surfaced and no
// partial cache update is committed.
func (c *Catalog) GetOrRefreshSize(ctx context.Context, folder string) (size int64, err error) {
	start := c.clock()
	defer func() { c.metrics.ObserveOperation("get_or_refresh_size", time.Since(start), err) }()

	if err := validateFolderName(folder); err != nil {
		return 0, err
	}

	props, err := c.store.GetDirectoryProperties(ctx, folder)
	if err != nil {
		return 0, fmt.Errorf("failed to read size cache of folder %q: %w", folder, err)
	}

	record := recordFromProperties(folder, props)
	now := c.clock()

	if record.SizeCalculatedAt != nil && now.Sub(*record.SizeCalculatedAt) <= c.sizeMaxAge {
		return *record.SizeBytes, nil
	}

	total, err := c.computeSize(ctx, folder)
	if err != nil {
		return 0, err
	}

	metadata := cloneWithoutMarker(props.Metadata)
	metadata[metaKeySize] = strconv.FormatInt(total, 10)
	metadata[metaKeySizeCalculatedAt] = now.UTC().Format(sizeTimestampLayout)

	if err := c.store.SetDirectoryMetadata(ctx, folder, metadata); err != nil {
		return 0, fmt.Errorf("failed to write size cache of folder %q: %w", folder, err)
	}

	c.metrics.RecordSizeRefresh(folder, total, time.Since(start))
	return total, nil
}

// computeSize sums the content lengths of every descendant file.
func (c *Catalog) computeSize(ctx context.Context, folder string) (int64, error) {
	var total int64
	err := c.store.ListPaths(ctx, folder, true, false, func(entry store.PathEntry) error {
		if entry.IsDirectory || entry.ContentLength == nil {
			return nil
		}
		total += *entry.ContentLength
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate folder %q: %w", folder, err)
	}
	return total, nil
}
