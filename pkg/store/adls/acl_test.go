package adls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

func TestParseACL(t *testing.T) {
	entries, err := parseACL("user::rwx,user:bob_contoso_com:r-x,default:user:bob_contoso_com:rwx,group::r-x,mask::rwx,other::---")
	require.NoError(t, err)
	require.Len(t, entries, 6)

	assert.Equal(t, store.AccessControlEntry{
		Kind:        store.PrincipalUser,
		Permissions: store.FullPermissions,
	}, entries[0])

	assert.Equal(t, store.AccessControlEntry{
		Kind:        store.PrincipalUser,
		EntityID:    "bob_contoso_com",
		Permissions: store.Permissions{Read: true, Execute: true},
	}, entries[1])

	assert.Equal(t, store.AccessControlEntry{
		Kind:         store.PrincipalUser,
		EntityID:     "bob_contoso_com",
		Permissions:  store.FullPermissions,
		DefaultScope: true,
	}, entries[2])

	assert.Equal(t, store.PrincipalOther, entries[5].Kind)
	assert.Equal(t, store.Permissions{}, entries[5].Permissions)
}

func TestParseACL_Empty(t *testing.T) {
	entries, err := parseACL("")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseACL_Malformed(t *testing.T) {
	for _, text := range []string{"user:rwx", "user::zzz", "default:user:bob"} {
		_, err := parseACL(text)
		require.Error(t, err, "input %q", text)
		assert.True(t, store.IsCode(err, store.ErrUnexpectedStatus))
	}
}

func TestFormatACL(t *testing.T) {
	text := formatACL([]store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: "bob_contoso_com", Permissions: store.FullPermissions},
		{Kind: store.PrincipalUser, EntityID: "bob_contoso_com", Permissions: store.FullPermissions, DefaultScope: true},
		{Kind: store.PrincipalOther, Permissions: store.Permissions{Read: true}},
	})
	assert.Equal(t, "user:bob_contoso_com:rwx,default:user:bob_contoso_com:rwx,other::r--", text)
}

func TestACLRoundTrip(t *testing.T) {
	original := "user::rwx,user:alice_contoso_com:rw-,default:group:finance:r-x"
	entries, err := parseACL(original)
	require.NoError(t, err)
	assert.Equal(t, original, formatACL(entries))
}
