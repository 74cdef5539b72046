package adls

import (
	"strings"

	"github.com/fredcicles/sas/pkg/store"
)

// ADLS Gen2 exchanges access control lists as comma-separated textual
// entries in the POSIX form used by the service:
//
//	[default:]<kind>:<entity-id>:<permissions>
//
// e.g. "user::rwx,user:bob_contoso_com:r-x,default:user:bob_contoso_com:rwx".
// An empty entity ID denotes the owning user/group. These helpers convert
// between that wire form and store.AccessControlEntry values.

const defaultScopePrefix = "default"

// parseACL converts the service's textual ACL into entries. Malformed
// entries produce an ErrUnexpectedStatus error since they indicate a
// service response this client does not understand.
func parseACL(text string) ([]store.AccessControlEntry, error) {
	if text == "" {
		return []store.AccessControlEntry{}, nil
	}

	parts := strings.Split(text, ",")
	entries := make([]store.AccessControlEntry, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		fields := strings.Split(part, ":")

		var entry store.AccessControlEntry
		if len(fields) == 4 && fields[0] == defaultScopePrefix {
			entry.DefaultScope = true
			fields = fields[1:]
		}
		if len(fields) != 3 {
			return nil, store.NewError(store.ErrUnexpectedStatus, "", "malformed ACL entry %q", part)
		}

		permissions, err := store.ParsePermissions(fields[2])
		if err != nil {
			return nil, store.NewError(store.ErrUnexpectedStatus, "", "malformed ACL entry %q: %v", part, err)
		}

		entry.Kind = store.PrincipalKind(fields[0])
		entry.EntityID = fields[1]
		entry.Permissions = permissions
		entries = append(entries, entry)
	}

	return entries, nil
}

// formatACL renders entries into the service's textual form.
func formatACL(entries []store.AccessControlEntry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		var b strings.Builder
		if entry.DefaultScope {
			b.WriteString(defaultScopePrefix)
			b.WriteByte(':')
		}
		b.WriteString(string(entry.Kind))
		b.WriteByte(':')
		b.WriteString(entry.EntityID)
		b.WriteByte(':')
		b.WriteString(entry.Permissions.String())
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ",")
}
