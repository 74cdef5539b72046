package badger

import (
	"encoding/json"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// Serialization strategy
// ======================
//
// BadgerDB stores raw bytes, so path records are JSON-encoded before
// storage. JSON keeps records human-readable under `badger stream` style
// debugging and tolerates schema evolution; record volume is low enough
// (one per folder or seeded file) that binary encoding would buy nothing.

// pathRecord is the stored representation of a single path.
type pathRecord struct {
	// IsDirectory distinguishes directories from file objects.
	IsDirectory bool `json:"is_directory"`

	// CreatedOn is assigned on first write and never changes.
	CreatedOn time.Time `json:"created_on"`

	// Metadata is the directory's metadata bag, without the directory
	// marker key (the marker is synthesized on read).
	Metadata map[string]string `json:"metadata,omitempty"`

	// ACL holds the path's access control entries.
	ACL []aclRecord `json:"acl,omitempty"`

	// ContentLength is the file's byte size; nil for directories and for
	// files seeded without a length.
	ContentLength *int64 `json:"content_length,omitempty"`
}

// aclRecord is the stored representation of one ACL entry. Permissions use
// the symbolic triplet form ("rwx") for readability.
type aclRecord struct {
	Kind         string `json:"kind"`
	EntityID     string `json:"entity_id,omitempty"`
	Permissions  string `json:"permissions"`
	DefaultScope bool   `json:"default_scope,omitempty"`
}

func newDirectoryRecord(createdOn time.Time) *pathRecord {
	return &pathRecord{
		IsDirectory: true,
		CreatedOn:   createdOn,
		Metadata:    make(map[string]string),
	}
}

func encodeRecord(record *pathRecord) ([]byte, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, store.WrapError(store.ErrTransport, "", err, "failed to encode path record")
	}
	return encoded, nil
}

func decodeRecord(data []byte, record *pathRecord) error {
	if err := json.Unmarshal(data, record); err != nil {
		return store.WrapError(store.ErrTransport, "", err, "failed to decode path record")
	}
	return nil
}

func encodeACL(entries []store.AccessControlEntry) []aclRecord {
	records := make([]aclRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, aclRecord{
			Kind:         string(entry.Kind),
			EntityID:     entry.EntityID,
			Permissions:  entry.Permissions.String(),
			DefaultScope: entry.DefaultScope,
		})
	}
	return records
}

func decodeACL(records []aclRecord) ([]store.AccessControlEntry, error) {
	entries := make([]store.AccessControlEntry, 0, len(records))
	for _, record := range records {
		permissions, err := store.ParsePermissions(record.Permissions)
		if err != nil {
			return nil, store.WrapError(store.ErrTransport, "", err, "corrupt ACL record")
		}
		entries = append(entries, store.AccessControlEntry{
			Kind:         store.PrincipalKind(record.Kind),
			EntityID:     record.EntityID,
			Permissions:  permissions,
			DefaultScope: record.DefaultScope,
		})
	}
	return entries, nil
}
