package catalog

import "strings"

// NormalizePrincipal derives the normalized identity key for a user
// principal name: lowercased, with every "@" replaced by "_".
//
// This allows a guest-account principal such as
// "jane_contoso.com#ext#@tenant.onmicrosoft.com" to be compared by prefix
// against the simplified tenant-native form "jane_contoso.com" of the same
// base identity. No other normalization (trimming, locale handling) is
// performed, and an empty input yields an empty output, never an error.
func NormalizePrincipal(principal string) string {
	return strings.ReplaceAll(strings.ToLower(principal), "@", "_")
}
