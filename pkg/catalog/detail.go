package catalog

import (
	"strconv"

	"github.com/fredcicles/sas/pkg/store"
)

// bytesPerTerabyte converts cached byte sizes to the cost unit.
const bytesPerTerabyte = 1e12

// FolderDetail is the caller-facing view of a folder.
//
// Numeric and time fields are serialized as strings on the wire; optional
// fields use pointers so that "absent" stays distinct from "zero". Size and
// cost are absent until the size cache has been computed at least once, and
// cost is additionally absent whenever no cost-per-terabyte is configured.
type FolderDetail struct {
	Name       string   `json:"name"`
	CreatedOn  string   `json:"createdOn"`
	Size       *string  `json:"size,omitempty"`
	Cost       *string  `json:"cost,omitempty"`
	FundCode   *string  `json:"fundCode,omitempty"`
	Owner      *string  `json:"owner,omitempty"`
	URI        string   `json:"uri"`
	UserAccess []string `json:"userAccess"`
}

// buildDetail combines a folder record with its ACL into the wire shape.
func (c *Catalog) buildDetail(record FolderRecord, acl []store.AccessControlEntry) FolderDetail {
	detail := FolderDetail{
		Name:       record.Name,
		CreatedOn:  record.CreatedOn.UTC().Format(sizeTimestampLayout),
		FundCode:   record.FundCode,
		Owner:      record.Owner,
		URI:        c.store.DirectoryURI(record.Name),
		UserAccess: deriveUserAccess(acl),
	}

	if record.SizeBytes != nil {
		size := strconv.FormatInt(*record.SizeBytes, 10)
		detail.Size = &size

		if c.costPerTB != nil {
			cost := strconv.FormatFloat(float64(*record.SizeBytes)**c.costPerTB/bytesPerTerabyte, 'f', -1, 64)
			detail.Cost = &cost
		}
	}

	return detail
}
