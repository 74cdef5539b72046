// Package badger implements a persistent hierarchical store backed by
// BadgerDB.
//
// This implementation provides a single-node, embedded alternative to the
// networked backends: folder paths, metadata bags and ACLs survive process
// restarts without requiring an external storage account. It is suitable
// for:
//   - Self-hosted deployments without cloud storage
//   - Integration testing against a persistent backend
//
// Storage model: each path maps to a single JSON-serialized record under a
// "path:" key (see serialization.go). BadgerDB's lexical key ordering gives
// listings the same ordering as the networked backends.
package badger

import (
	"context"
	"errors"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/fredcicles/sas/internal/logger"
	"github.com/fredcicles/sas/pkg/store"
)

// keyPrefix namespaces path records inside the key space, leaving room for
// future record types.
const keyPrefix = "path:"

// BadgerStoreConfig configures a BadgerStore.
type BadgerStoreConfig struct {
	// DBPath is the directory holding the BadgerDB files. Required unless
	// InMemory is set.
	DBPath string

	// BaseURI is prepended to paths by DirectoryURI.
	// Default: "badger://catalog"
	BaseURI string

	// InMemory runs BadgerDB without touching disk. Test hook.
	InMemory bool
}

// BadgerStore implements store.HierarchicalStore on BadgerDB.
type BadgerStore struct {
	db      *badger.DB
	baseURI string
	clock   func() time.Time
}

var _ store.HierarchicalStore = (*BadgerStore)(nil)

// NewBadgerStore opens (or creates) the database at cfg.DBPath.
// The caller owns the store and must Close it.
func NewBadgerStore(ctx context.Context, cfg BadgerStoreConfig) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.DBPath == "" && !cfg.InMemory {
		return nil, store.NewError(store.ErrInvalidArgument, "", "badger store: db_path is required")
	}

	opts := badger.DefaultOptions(cfg.DBPath).
		WithLogger(nil).
		WithInMemory(cfg.InMemory)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, store.WrapError(store.ErrTransport, cfg.DBPath, err, "failed to open badger database")
	}

	baseURI := cfg.BaseURI
	if baseURI == "" {
		baseURI = "badger://catalog"
	}

	logger.Info("Badger store opened: path=%s in_memory=%v", cfg.DBPath, cfg.InMemory)

	return &BadgerStore{
		db:      db,
		baseURI: baseURI,
		clock:   time.Now,
	}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func pathKey(path string) []byte {
	return []byte(keyPrefix + path)
}

// CreateDirectory implements store.HierarchicalStore.
func (s *BadgerStore) CreateDirectory(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return store.NewError(store.ErrInvalidArgument, path, "directory path must not be empty")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(pathKey(path)); err == nil {
			return store.NewError(store.ErrAlreadyExists, path, "path already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return store.WrapError(store.ErrTransport, path, err, "failed to probe path")
		}

		record := newDirectoryRecord(s.clock())
		return s.setRecord(txn, path, record)
	})

	return translateError(err, path)
}

// GetDirectoryProperties implements store.HierarchicalStore.
func (s *BadgerStore) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	if err := ctx.Err(); err != nil {
		return store.DirectoryProperties{}, err
	}

	var props store.DirectoryProperties
	err := s.db.View(func(txn *badger.Txn) error {
		record, err := s.getDirectoryRecord(txn, path)
		if err != nil {
			return err
		}

		metadata := make(map[string]string, len(record.Metadata)+1)
		for k, v := range record.Metadata {
			metadata[k] = v
		}
		metadata[store.DirectoryMarkerKey] = "true"

		props = store.DirectoryProperties{
			CreatedOn: record.CreatedOn,
			Metadata:  metadata,
		}
		return nil
	})

	return props, translateError(err, path)
}

// SetDirectoryMetadata implements store.HierarchicalStore. Full replace; the
// directory marker key is read-only and rejected like the networked
// backends do.
func (s *BadgerStore) SetDirectoryMetadata(ctx context.Context, path string, metadata map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := metadata[store.DirectoryMarkerKey]; ok {
		return store.NewError(store.ErrInvalidArgument, path, "metadata must not include reserved key %q", store.DirectoryMarkerKey)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		record, err := s.getDirectoryRecord(txn, path)
		if err != nil {
			return err
		}

		record.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			record.Metadata[k] = v
		}

		return s.setRecord(txn, path, record)
	})

	return translateError(err, path)
}

// GetAccessControl implements store.HierarchicalStore. The embedded backend
// has no identity directory; resolveIdentities is a no-op.
func (s *BadgerStore) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entries []store.AccessControlEntry
	err := s.db.View(func(txn *badger.Txn) error {
		record, err := s.getDirectoryRecord(txn, path)
		if err != nil {
			return err
		}
		entries, err = decodeACL(record.ACL)
		return err
	})

	return entries, translateError(err, path)
}

// UpdateAccessControlRecursive implements store.HierarchicalStore. Entries
// merge by (kind, entity, scope) into the path and every existing
// descendant record.
func (s *BadgerStore) UpdateAccessControlRecursive(ctx context.Context, path string, entries []store.AccessControlEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		record, err := s.getDirectoryRecord(txn, path)
		if err != nil {
			return err
		}
		if err := s.mergeAndSet(txn, path, record, entries); err != nil {
			return err
		}

		// Collect descendant paths first: mutating while iterating over
		// the same prefix is not safe within a transaction.
		prefix := pathKey(path + "/")
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		var descendants []string
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			descendants = append(descendants, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		it.Close()

		for _, descendant := range descendants {
			descendantRecord, err := s.getRecord(txn, descendant)
			if err != nil {
				return err
			}
			if err := s.mergeAndSet(txn, descendant, descendantRecord, entries); err != nil {
				return err
			}
		}
		return nil
	})

	return translateError(err, path)
}

func (s *BadgerStore) mergeAndSet(txn *badger.Txn, path string, record *pathRecord, entries []store.AccessControlEntry) error {
	existing, err := decodeACL(record.ACL)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		replaced := false
		for i, have := range existing {
			if have.Kind == entry.Kind && have.EntityID == entry.EntityID && have.DefaultScope == entry.DefaultScope {
				existing[i].Permissions = entry.Permissions
				replaced = true
				break
			}
		}
		if !replaced {
			existing = append(existing, entry)
		}
	}

	record.ACL = encodeACL(existing)
	return s.setRecord(txn, path, record)
}

// ListPaths implements store.HierarchicalStore. Entries come back in
// BadgerDB's lexical key order. Records are collected inside the read
// transaction and callbacks run outside it.
func (s *BadgerStore) ListPaths(ctx context.Context, path string, recursive bool, includeDirectories bool, cb func(store.PathEntry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := keyPrefix
	if path != "" {
		prefix = keyPrefix + path + "/"
	}

	var entries []store.PathEntry
	err := s.db.View(func(txn *badger.Txn) error {
		if path != "" {
			if _, err := s.getDirectoryRecord(txn, path); err != nil {
				return err
			}
		}

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			entryPath := strings.TrimPrefix(string(item.Key()), keyPrefix)
			rest := strings.TrimPrefix(entryPath, strings.TrimPrefix(prefix, keyPrefix))
			if !recursive && strings.Contains(rest, "/") {
				continue
			}

			var record pathRecord
			if err := item.Value(func(val []byte) error {
				return decodeRecord(val, &record)
			}); err != nil {
				return err
			}
			if record.IsDirectory && !includeDirectories {
				continue
			}

			entries = append(entries, store.PathEntry{
				Name:          entryPath,
				IsDirectory:   record.IsDirectory,
				ContentLength: record.ContentLength,
			})
		}
		return nil
	})
	if err != nil {
		return translateError(err, path)
	}

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
func (s *BadgerStore) DirectoryURI(path string) string {
	return s.baseURI + "/" + path
}

// AddFile seeds a file record at path, creating missing intermediate
// directories. Test/dev hook; not part of the HierarchicalStore contract.
func (s *BadgerStore) AddFile(path string, length *int64) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		segments := strings.Split(path, "/")
		for i := 1; i < len(segments); i++ {
			dir := strings.Join(segments[:i], "/")
			if _, err := txn.Get(pathKey(dir)); errors.Is(err, badger.ErrKeyNotFound) {
				if err := s.setRecord(txn, dir, newDirectoryRecord(s.clock())); err != nil {
					return err
				}
			}
		}

		record := &pathRecord{
			CreatedOn:     s.clock(),
			ContentLength: length,
		}
		return s.setRecord(txn, path, record)
	})

	return translateError(err, path)
}

// getDirectoryRecord fetches path and verifies it is a directory.
func (s *BadgerStore) getDirectoryRecord(txn *badger.Txn, path string) (*pathRecord, error) {
	record, err := s.getRecord(txn, path)
	if err != nil {
		return nil, err
	}
	if !record.IsDirectory {
		return nil, store.NewError(store.ErrInvalidArgument, path, "path is not a directory")
	}
	return record, nil
}

func (s *BadgerStore) getRecord(txn *badger.Txn, path string) (*pathRecord, error) {
	item, err := txn.Get(pathKey(path))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.NewError(store.ErrNotFound, path, "path not found")
	}
	if err != nil {
		return nil, store.WrapError(store.ErrTransport, path, err, "failed to read path record")
	}

	var record pathRecord
	if err := item.Value(func(val []byte) error {
		return decodeRecord(val, &record)
	}); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *BadgerStore) setRecord(txn *badger.Txn, path string, record *pathRecord) error {
	encoded, err := encodeRecord(record)
	if err != nil {
		return err
	}
	if err := txn.Set(pathKey(path), encoded); err != nil {
		return store.WrapError(store.ErrTransport, path, err, "failed to write path record")
	}
	return nil
}

// translateError maps raw badger errors that escaped the per-call wrapping
// (e.g. commit failures) onto the store taxonomy.
func translateError(err error, path string) error {
	if err == nil {
		return nil
	}
	var se *store.StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return store.WrapError(store.ErrTransport, path, err, "badger operation failed")
}
