package s3

import (
	"encoding/json"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// directoryRecord is the JSON document stored in the marker object's
// user metadata. Keeping everything in a single entry avoids S3's
// lowercasing of user-metadata keys, which would corrupt the casing of
// the metadata bag.
type directoryRecord struct {
	CreatedOn time.Time         `json:"created_on"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ACL       []aclRecord       `json:"acl,omitempty"`
}

// aclRecord mirrors one ACL entry with permissions in symbolic "rwx" form.
type aclRecord struct {
	Kind         string `json:"kind"`
	EntityID     string `json:"entity_id,omitempty"`
	Permissions  string `json:"permissions"`
	DefaultScope bool   `json:"default_scope,omitempty"`
}

func encodeRecord(record *directoryRecord, path string) (string, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return "", store.WrapError(store.ErrTransport, path, err, "failed to encode directory record")
	}
	return string(encoded), nil
}

func decodeRecord(data string, path string) (*directoryRecord, error) {
	record := &directoryRecord{}
	if data == "" {
		// Marker written by another tool; treat as an empty record.
		record.Metadata = map[string]string{}
		return record, nil
	}
	if err := json.Unmarshal([]byte(data), record); err != nil {
		return nil, store.WrapError(store.ErrTransport, path, err, "corrupt directory record")
	}
	if record.Metadata == nil {
		record.Metadata = map[string]string{}
	}
	return record, nil
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
