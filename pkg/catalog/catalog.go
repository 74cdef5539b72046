// Package catalog implements per-tenant folder management on top of a
// hierarchical-namespace store: folder creation, owner permission
// assignment, business metadata tagging, lazy size/cost caching and
// access-based folder listing.
//
// The catalog holds no mutable state of its own; every operation is a
// sequence of calls against the configured store, so operations on
// different folders are safe to run concurrently.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// DefaultSizeMaxAge is how long a cached folder size stays fresh before
// GetOrRefreshSize re-enumerates the folder.
const DefaultSizeMaxAge = 7 * 24 * time.Hour

// Config carries the catalog's process-wide settings, read once at
// construction.
type Config struct {
	// CostPerTerabyte is the configured storage cost per terabyte. Nil
	// disables cost reporting entirely; it is a valid configuration, not
	// an error, and is distinct from a cost of zero.
	CostPerTerabyte *float64

	// SizeMaxAge overrides DefaultSizeMaxAge when positive.
	SizeMaxAge time.Duration
}

// Catalog manages folder resources inside a hierarchical store.
type Catalog struct {
	store      store.HierarchicalStore
	costPerTB  *float64
	sizeMaxAge time.Duration
	metrics    CatalogMetrics
	clock      func() time.Time
}

// New creates a Catalog over the given store. metrics may be nil, in which
// case a no-op implementation is used.
func New(st store.HierarchicalStore, cfg Config, metrics CatalogMetrics) *Catalog {
	sizeMaxAge := cfg.SizeMaxAge
	if sizeMaxAge <= 0 {
		sizeMaxAge = DefaultSizeMaxAge
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &Catalog{
		store:      st,
		costPerTB:  cfg.CostPerTerabyte,
		sizeMaxAge: sizeMaxAge,
		metrics:    metrics,
		clock:      time.Now,
	}
}

// CreateFolder creates a top-level folder. The name is a single path
// segment; it must not be empty or contain a path separator.
func (c *Catalog) CreateFolder(ctx context.Context, name string) (err error) {
	start := c.clock()
	defer func() { c.metrics.ObserveOperation("create_folder", time.Since(start), err) }()

	if err := validateFolderName(name); err != nil {
		return err
	}

	if err := c.store.CreateDirectory(ctx, name); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", name, err)
	}

	return nil
}

// AssignOwnerFullAccess grants owner read+write+execute on the folder and
// installs the same grant as the default (inherited) ACL for future
// children, applied recursively to existing descendants.
func (c *Catalog) AssignOwnerFullAccess(ctx context.Context, folder, owner string) (err error) {
	start := c.clock()
	defer func() { c.metrics.ObserveOperation("assign_owner", time.Since(start), err) }()

	if err := validateFolderName(folder); err != nil {
		return err
	}
	if owner == "" {
		return fmt.Errorf("owner must not be empty")
	}

	entries := []store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: owner, Permissions: store.FullPermissions},
		{Kind: store.PrincipalUser, EntityID: owner, Permissions: store.FullPermissions, DefaultScope: true},
	}

	if err := c.store.UpdateAccessControlRecursive(ctx, folder, entries); err != nil {
		return fmt.Errorf("failed to assign owner %q on folder %q: %w", owner, folder, err)
	}

	return nil
}

// TagMetadata merges the fund code and owner tags into the folder's
// metadata. Empty arguments leave the corresponding tag untouched.
//
// Writes use replace semantics: tagging the same folder twice overwrites
// the previous values instead of failing on a duplicate key.
func (c *Catalog) TagMetadata(ctx context.Context, folder, fundCode, owner string) (err error) {
	start := c.clock()
	defer func() { c.metrics.ObserveOperation("tag_metadata", time.Since(start), err) }()

	if err := validateFolderName(folder); err != nil {
		return err
	}

	props, err := c.store.GetDirectoryProperties(ctx, folder)
	if err != nil {
		return fmt.Errorf("failed to read metadata of folder %q: %w", folder, err)
	}

	metadata := cloneWithoutMarker(props.Metadata)
	if fundCode != "" {
		metadata[metaKeyFundCode] = fundCode
	}
	if owner != "" {
		metadata[metaKeyOwner] = owner
	}

	if err := c.store.SetDirectoryMetadata(ctx, folder, metadata); err != nil {
		return fmt.Errorf("failed to tag folder %q: %w", folder, err)
	}

	return nil
}

// GetFolderDetail returns the folder's detail view: cached size, derived
// cost, tags, creation time, canonical URI and the direct user access list.
// Size and cost reflect whatever is currently cached; the size cache is not
// refreshed here.
func (c *Catalog) GetFolderDetail(ctx context.Context, folder string) (detail FolderDetail, err error) {
	start := c.clock()
	defer func() { c.metrics.ObserveOperation("get_folder_detail", time.Since(start), err) }()

	if err := validateFolderName(folder); err != nil {
		return FolderDetail{}, err
	}

	props, err := c.store.GetDirectoryProperties(ctx, folder)
	if err != nil {
		return FolderDetail{}, fmt.Errorf("failed to read properties of folder %q: %w", folder, err)
	}

	acl, err := c.store.GetAccessControl(ctx, folder, true)
	if err != nil {
		return FolderDetail{}, fmt.Errorf("failed to read ACL of folder %q: %w", folder, err)
	}

	return c.buildDetail(recordFromProperties(folder, props), acl), nil
}

func validateFolderName(name string) error {
	if name == "" {
		return fmt.Errorf("folder name must not be empty")
	}
	if strings.Contains(name, "/") {
		return fmt.Errorf("folder name %q must not contain %q", name, "/")
	}
	return nil
}
