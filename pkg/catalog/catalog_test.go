package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

func TestCreateFolder(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCatalog(Config{})

	require.NoError(t, c.CreateFolder(ctx, "alpha"))

	err := c.CreateFolder(ctx, "alpha")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrAlreadyExists))
}

func TestCreateFolder_RejectsInvalidNames(t *testing.T) {
	c, _ := newTestCatalog(Config{})

	assert.Error(t, c.CreateFolder(context.Background(), ""))
	assert.Error(t, c.CreateFolder(context.Background(), "a/b"))
}

func TestAssignOwnerFullAccess(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, c.CreateFolder(ctx, "alpha"))
	require.NoError(t, c.AssignOwnerFullAccess(ctx, "alpha", "bob"))

	acl, err := st.GetAccessControl(ctx, "alpha", true)
	require.NoError(t, err)
	require.Len(t, acl, 2)

	assert.Equal(t, store.PrincipalUser, acl[0].Kind)
	assert.Equal(t, "bob", acl[0].EntityID)
	assert.Equal(t, store.FullPermissions, acl[0].Permissions)
	assert.False(t, acl[0].DefaultScope)

	// Second entry is the default-scope grant inherited by future children.
	assert.True(t, acl[1].DefaultScope)
	assert.Equal(t, store.FullPermissions, acl[1].Permissions)
}

func TestAssignOwnerFullAccess_RequiresOwner(t *testing.T) {
	c, _ := newTestCatalog(Config{})
	assert.Error(t, c.AssignOwnerFullAccess(context.Background(), "alpha", ""))
}

func TestTagMetadata_OverwritesExistingTags(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, c.CreateFolder(ctx, "alpha"))
	require.NoError(t, c.TagMetadata(ctx, "alpha", "FC123", "bob"))

	// Re-tagging must overwrite, never fail on a duplicate key.
	require.NoError(t, c.TagMetadata(ctx, "alpha", "FC456", ""))

	props, err := st.GetDirectoryProperties(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "FC456", props.Metadata[metaKeyFundCode])
	assert.Equal(t, "bob", props.Metadata[metaKeyOwner])
}

func TestGetFolderDetail_AbsentSizeAndCost(t *testing.T) {
	ctx := context.Background()
	costPerTB := 100.0
	c, _ := newTestCatalog(Config{CostPerTerabyte: &costPerTB})

	require.NoError(t, c.CreateFolder(ctx, "alpha"))

	detail, err := c.GetFolderDetail(ctx, "alpha")
	require.NoError(t, err)

	// Never sized: size and cost stay absent, not zero.
	assert.Nil(t, detail.Size)
	assert.Nil(t, detail.Cost)
	assert.Nil(t, detail.FundCode)
	assert.Nil(t, detail.Owner)
	assert.Equal(t, []string{}, detail.UserAccess)
	assert.NotEmpty(t, detail.CreatedOn)
}

func TestGetFolderDetail_CostAbsentWithoutConfiguration(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{}) // no cost per terabyte configured

	require.NoError(t, c.CreateFolder(ctx, "alpha"))
	st.AddFile("alpha/a.bin", int64Ptr(1000))
	_, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)

	detail, err := c.GetFolderDetail(ctx, "alpha")
	require.NoError(t, err)

	require.NotNil(t, detail.Size)
	assert.Equal(t, "1000", *detail.Size)
	assert.Nil(t, detail.Cost)
}

func TestGetFolderDetail_MissingFolder(t *testing.T) {
	c, _ := newTestCatalog(Config{})

	_, err := c.GetFolderDetail(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrNotFound))
}

// TestFolderLifecycle walks the full folder workflow: create, assign owner,
// tag, size, inspect.
func TestFolderLifecycle(t *testing.T) {
	ctx := context.Background()
	costPerTB := 50.0
	c, st := newTestCatalog(Config{CostPerTerabyte: &costPerTB})

	require.NoError(t, c.CreateFolder(ctx, "alpha"))
	require.NoError(t, c.AssignOwnerFullAccess(ctx, "alpha", "bob"))
	require.NoError(t, c.TagMetadata(ctx, "alpha", "FC123", "bob"))

	st.AddFile("alpha/a.bin", int64Ptr(100))
	st.AddFile("alpha/b.bin", int64Ptr(200))
	st.AddFile("alpha/c.bin", int64Ptr(0))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(300), size)

	detail, err := c.GetFolderDetail(ctx, "alpha")
	require.NoError(t, err)

	assert.Equal(t, "alpha", detail.Name)
	require.NotNil(t, detail.Size)
	assert.Equal(t, "300", *detail.Size)
	require.NotNil(t, detail.FundCode)
	assert.Equal(t, "FC123", *detail.FundCode)
	require.NotNil(t, detail.Owner)
	assert.Equal(t, "bob", *detail.Owner)
	assert.Equal(t, []string{"bob"}, detail.UserAccess)

	// The owner can find the folder through the accessible listing.
	details := collectAccessible(t, c, "bob")
	require.Len(t, details, 1)
	assert.Equal(t, "alpha", details[0].Name)
}
