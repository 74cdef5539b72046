package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

// RunAccessControlTests executes ACL read/update tests.
func (suite *StoreTestSuite) RunAccessControlTests(t *testing.T) {
	t.Run("Get_EmptyByDefault", suite.testGetACLEmpty)
	t.Run("Update_AddsEntries", suite.testUpdateACLAdds)
	t.Run("Update_MergesByIdentityAndScope", suite.testUpdateACLMerges)
	t.Run("Update_AppliesToDescendants", suite.testUpdateACLRecursive)
}

func ownerEntries(owner string) []store.AccessControlEntry {
	return []store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: owner, Permissions: store.FullPermissions},
		{Kind: store.PrincipalUser, EntityID: owner, Permissions: store.FullPermissions, DefaultScope: true},
	}
}

func (suite *StoreTestSuite) testGetACLEmpty(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	acl, err := st.GetAccessControl(testContext(), "alpha", true)
	require.NoError(t, err)
	assert.Empty(t, acl)
}

func (suite *StoreTestSuite) testUpdateACLAdds(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	require.NoError(t, st.UpdateAccessControlRecursive(testContext(), "alpha", ownerEntries("bob")))

	acl, err := st.GetAccessControl(testContext(), "alpha", true)
	require.NoError(t, err)
	require.Len(t, acl, 2)
	assert.Equal(t, "bob", acl[0].EntityID)
	assert.False(t, acl[0].DefaultScope)
	assert.True(t, acl[1].DefaultScope)
}

func (suite *StoreTestSuite) testUpdateACLMerges(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	require.NoError(t, st.UpdateAccessControlRecursive(testContext(), "alpha", []store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: "bob", Permissions: store.Permissions{Read: true}},
	}))
	require.NoError(t, st.UpdateAccessControlRecursive(testContext(), "alpha", []store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: "bob", Permissions: store.FullPermissions},
	}))

	acl, err := st.GetAccessControl(testContext(), "alpha", true)
	require.NoError(t, err)
	require.Len(t, acl, 1)
	assert.Equal(t, store.FullPermissions, acl[0].Permissions)
}

func (suite *StoreTestSuite) testUpdateACLRecursive(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	// Descendant created before the grant must receive it too.
	require.NoError(t, st.CreateDirectory(testContext(), "alpha/reports"))
	require.NoError(t, st.UpdateAccessControlRecursive(testContext(), "alpha", ownerEntries("bob")))

	acl, err := st.GetAccessControl(testContext(), "alpha/reports", true)
	require.NoError(t, err)
	require.Len(t, acl, 2)
	assert.Equal(t, "bob", acl[0].EntityID)
}
