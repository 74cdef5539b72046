// Package memory implements an in-memory hierarchical store.
//
// This implementation provides a fully functional store backed by in-memory
// data structures. It is suitable for:
//   - Testing and development environments
//   - Ephemeral catalogs where persistence is not required
//
// Thread safety: all operations are protected by a single read-write mutex,
// making the store safe for concurrent access from multiple goroutines.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// pathData holds the internal representation of a single path.
type pathData struct {
	isDirectory   bool
	createdOn     time.Time
	metadata      map[string]string
	acl           []store.AccessControlEntry
	contentLength *int64
}

// MemoryStoreConfig configures a MemoryStore.
type MemoryStoreConfig struct {
	// BaseURI is prepended to paths by DirectoryURI.
	// Default: "memory://store"
	BaseURI string
}

// MemoryStore implements store.HierarchicalStore using in-memory maps.
type MemoryStore struct {
	mu      sync.RWMutex
	paths   map[string]*pathData
	baseURI string
	clock   func() time.Time
}

// Compile-time interface check.
var _ store.HierarchicalStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(cfg MemoryStoreConfig) *MemoryStore {
	baseURI := cfg.BaseURI
	if baseURI == "" {
		baseURI = "memory://store"
	}

	return &MemoryStore{
		paths:   make(map[string]*pathData),
		baseURI: baseURI,
		clock:   time.Now,
	}
}

// SetClock replaces the store's time source. Test hook for creation
// timestamps; not part of the HierarchicalStore contract.
func (m *MemoryStore) SetClock(clock func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clock = clock
}

// AddFile seeds a file object at path, creating missing intermediate
// directories. length may be nil to model a backend that reports no content
// length. Test/dev hook; not part of the HierarchicalStore contract.
func (m *MemoryStore) AddFile(path string, length *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	segments := strings.Split(path, "/")
	for i := 1; i < len(segments); i++ {
		dir := strings.Join(segments[:i], "/")
		if _, ok := m.paths[dir]; !ok {
			m.paths[dir] = m.newDirectory()
		}
	}

	m.paths[path] = &pathData{
		isDirectory:   false,
		createdOn:     m.clock(),
		metadata:      make(map[string]string),
		contentLength: length,
	}
}

func (m *MemoryStore) newDirectory() *pathData {
	return &pathData{
		isDirectory: true,
		createdOn:   m.clock(),
		metadata:    map[string]string{store.DirectoryMarkerKey: "true"},
	}
}

// CreateDirectory implements store.HierarchicalStore.
func (m *MemoryStore) CreateDirectory(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return store.NewError(store.ErrInvalidArgument, path, "directory path must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.paths[path]; ok {
		return store.NewError(store.ErrAlreadyExists, path, "path already exists")
	}

	m.paths[path] = m.newDirectory()
	return nil
}

// GetDirectoryProperties implements store.HierarchicalStore.
func (m *MemoryStore) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	if err := ctx.Err(); err != nil {
		return store.DirectoryProperties{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := m.directory(path)
	if err != nil {
		return store.DirectoryProperties{}, err
	}

	metadata := make(map[string]string, len(data.metadata))
	for k, v := range data.metadata {
		metadata[k] = v
	}

	return store.DirectoryProperties{
		CreatedOn: data.createdOn,
		Metadata:  metadata,
	}, nil
}

// SetDirectoryMetadata implements store.HierarchicalStore.
//
// The directory marker key is read-only: submitting it back is rejected the
// same way the real backend rejects it, which keeps the strip-before-write
// contract honest in tests.
func (m *MemoryStore) SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := metadata[store.DirectoryMarkerKey]; ok {
		return store.NewError(store.ErrInvalidArgument, path, "metadata must not include reserved key %q", store.DirectoryMarkerKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.directory(path)
	if err != nil {
		return err
	}

	replacement := map[string]string{store.DirectoryMarkerKey: "true"}
	for k, v := range metadata {
		replacement[k] = v
	}
	data.metadata = replacement

	return nil
}

// GetAccessControl implements store.HierarchicalStore. The memory backend
// has no identity directory, so resolveIdentities is a no-op: entity IDs
// come back exactly as they were set.
func (m *MemoryStore) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := m.directory(path)
	if err != nil {
		return nil, err
	}

	entries := make([]store.AccessControlEntry, len(data.acl))
	copy(entries, data.acl)
	return entries, nil
}

// UpdateAccessControlRecursive implements store.HierarchicalStore.
//
// Entries are merged by (kind, entity, scope): an existing matching entry
// has its permissions replaced, otherwise the entry is appended. The merge
// applies to the path itself and every existing descendant.
func (m *MemoryStore) UpdateAccessControlRecursive(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.directory(path)
	if err != nil {
		return err
	}

	mergeACL(data, entries)

	prefix := path + "/"
	for p, d := range m.paths {
		if strings.HasPrefix(p, prefix) {
			mergeACL(d, entries)
		}
	}

	return nil
}

func mergeACL(data *pathData, entries []store.AccessControlEntry) {
	for _, entry := range entries {
		replaced := false
		for i, existing := range data.acl {
			if existing.Kind == entry.Kind && existing.EntityID == entry.EntityID && existing.DefaultScope == entry.DefaultScope {
				data.acl[i].Permissions = entry.Permissions
				replaced = true
				break
			}
		}
		if !replaced {
			data.acl = append(data.acl, entry)
		}
	}
}

// ListPaths implements store.HierarchicalStore. Entries are produced in
// lexical path order, matching the listing order of the real backend.
func (m *MemoryStore) ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(store.PathEntry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	prefix := ""
	if path != "" {
		if _, err := m.directory(path); err != nil {
			m.mu.RUnlock()
			return err
		}
		prefix = path + "/"
	}

	var names []string
	for p := range m.paths {
		if !strings.HasPrefix(p, prefix) || p == path {
			continue
		}
		rest := p[len(prefix):]
		if !recursive && strings.Contains(rest, "/") {
			continue
		}
		names = append(names, p)
	}
	sort.Strings(names)

	entries := make([]store.PathEntry, 0, len(names))
	for _, p := range names {
		data := m.paths[p]
		if data.isDirectory && !includeDirectories {
			continue
		}
		entries = append(entries, store.PathEntry{
			Name:          p,
			IsDirectory:   data.isDirectory,
			ContentLength: data.contentLength,
		})
	}
	m.mu.RUnlock()

	// Callbacks run outside the lock so a consumer may call back into the
	// store without deadlocking.
	for _, entry := range entries {
		if err := cb(entry); err != nil {
			if err == store.ErrStopIteration {
				return nil
			}
			return err
		}
	}

	return nil
}

// DirectoryURI implements store.HierarchicalStore.
func (m *MemoryStore) DirectoryURI(path string) string {
	return m.baseURI + "/" + path
}

// directory fetches path and verifies it is a directory. Caller must hold
// the mutex.
func (m *MemoryStore) directory(path string) (*pathData, error) {
	data, ok := m.paths[path]
	if !ok {
		return nil, store.NewError(store.ErrNotFound, path, "path not found")
	}
	if !data.isDirectory {
		return nil, store.NewError(store.ErrInvalidArgument, path, "path is not a directory")
	}
	return data, nil
}
