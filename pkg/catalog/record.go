package catalog

import (
	"strconv"
	"time"

	"github.com/fredcicles/sas/pkg/store"
)

// Metadata keys under which the catalog persists its typed fields inside
// the store's string-keyed metadata bag.
const (
	metaKeySize             = "Size"
	metaKeySizeCalculatedAt = "SizeLastCalculated"
	metaKeyFundCode         = "FundCode"
	metaKeyOwner            = "Owner"
)

// sizeTimestampLayout is the wire format of the size-cache timestamp.
const sizeTimestampLayout = time.RFC3339

// FolderRecord is the typed view of a folder's store-side state. It is the
// deserialized form of the metadata bag plus the store-assigned creation
// time; it is never persisted as a struct.
//
// SizeBytes and SizeCalculatedAt are always paired: both present or both
// absent. recordFromProperties enforces the pairing on read and the size
// cache writes them together.
type FolderRecord struct {
	Name             string
	Owner            *string
	FundCode         *string
	SizeBytes        *int64
	SizeCalculatedAt *time.Time
	CreatedOn        time.Time
}

// recordFromProperties deserializes a folder's metadata bag into a typed
// record. Missing or malformed values come back as nil fields; a size
// without a timestamp (or the reverse) is treated as never computed.
func recordFromProperties(name string, props store.DirectoryProperties) FolderRecord {
	record := FolderRecord{
		Name:      name,
		CreatedOn: props.CreatedOn,
	}

	if v, ok := props.Metadata[metaKeyOwner]; ok && v != "" {
		record.Owner = &v
	}
	if v, ok := props.Metadata[metaKeyFundCode]; ok && v != "" {
		record.FundCode = &v
	}

	size, sizeOK := parseSize(props.Metadata[metaKeySize])
	calculatedAt, tsOK := parseTimestamp(props.Metadata[metaKeySizeCalculatedAt])
	if sizeOK && tsOK {
		record.SizeBytes = &size
		record.SizeCalculatedAt = &calculatedAt
	}

	return record
}

func parseSize(v string) (int64, bool) {
	if v == "" {
		return 0, false
	}
	size, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return size, true
}

func parseTimestamp(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(sizeTimestampLayout, v)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// cloneWithoutMarker copies a metadata bag, dropping the store's internal
// read-only directory marker key. Every metadata write-back goes through
// this: re-submitting the marker is rejected by the store.
func cloneWithoutMarker(metadata map[string]string) map[string]string {
	clone := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if k == store.DirectoryMarkerKey {
			continue
		}
		clone[k] = v
	}
	return clone
}
