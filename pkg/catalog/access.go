package catalog

import (
	"strings"

	"github.com/fredcicles/sas/pkg/store"
)

// deriveUserAccess extracts the identities with direct user access to a
// folder from its ACL: user-kind entries with a non-empty entity identifier
// that are not default-scope (inherited-to-children) entries.
//
// Order follows the ACL's native order and duplicates are kept, mirroring
// the underlying store.
func deriveUserAccess(entries []store.AccessControlEntry) []string {
	access := []string{}
	for _, entry := range entries {
		if entry.Kind != store.PrincipalUser || entry.EntityID == "" || entry.DefaultScope {
			continue
		}
		access = append(access, entry.EntityID)
	}
	return access
}

// principalMatches reports whether any ACL entry grants read access to the
// normalized principal.
//
// Matching is starts-with, not equality: the normalized entity of an entry
// must begin with the normalized principal. This deliberately matches both
// a bare account and the suffixed guest-account variant derived from the
// same base identity, at the cost of over-matching when one identity is a
// literal string-prefix of another.
func principalMatches(entries []store.AccessControlEntry, normalizedPrincipal string) bool {
	for _, entry := range entries {
		if entry.EntityID == "" || !entry.Permissions.Read {
			continue
		}
		if strings.HasPrefix(NormalizePrincipal(entry.EntityID), normalizedPrincipal) {
			return true
		}
	}
	return false
}
