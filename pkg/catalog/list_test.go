package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
	"github.com/fredcicles/sas/pkg/store/memory"
)

// countingStore wraps a store to count and optionally fail ACL fetches.
type countingStore struct {
	store.HierarchicalStore
	aclCalls   int
	failFolder string
}

func (s *countingStore) GetAccessControl(ctx context.Context, path string, resolveIdentities bool) ([]store.AccessControlEntry, error) {
	s.aclCalls++
	if s.failFolder != "" && path == s.failFolder {
		return nil, store.NewError(store.ErrTransport, path, "injected failure")
	}
	return s.HierarchicalStore.GetAccessControl(ctx, path, resolveIdentities)
}

func grantRead(t *testing.T, st *memory.MemoryStore, folder, entity string, perms store.Permissions) {
	t.Helper()
	err := st.UpdateAccessControlRecursive(context.Background(), folder, []store.AccessControlEntry{
		{Kind: store.PrincipalUser, EntityID: entity, Permissions: perms},
	})
	require.NoError(t, err)
}

func collectAccessible(t *testing.T, c *Catalog, principal string) []FolderDetail {
	t.Helper()
	var details []FolderDetail
	err := c.ListAccessible(context.Background(), principal, func(d FolderDetail) error {
		details = append(details, d)
		return nil
	})
	require.NoError(t, err)
	return details
}

func TestListAccessible_IncludesReadableFolders(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	require.NoError(t, st.CreateDirectory(ctx, "beta"))
	require.NoError(t, st.CreateDirectory(ctx, "gamma"))

	grantRead(t, st, "alpha", "jane_contoso.com", store.Permissions{Read: true})
	grantRead(t, st, "beta", "someone_else.com", store.Permissions{Read: true})
	grantRead(t, st, "gamma", "jane_contoso.com#EXT#@tenant.onmicrosoft.com", store.FullPermissions)

	details := collectAccessible(t, c, "Jane@Contoso.com")

	names := make([]string, 0, len(details))
	for _, d := range details {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"alpha", "gamma"}, names)
}

func TestListAccessible_ExcludesWriteOnlyGrants(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	grantRead(t, st, "alpha", "jane_contoso.com", store.Permissions{Write: true, Execute: true})

	assert.Empty(t, collectAccessible(t, c, "Jane@Contoso.com"))
}

func TestListAccessible_DetailCarriesCachedState(t *testing.T) {
	ctx := context.Background()
	costPerTB := 100.0
	c, st := newTestCatalog(Config{CostPerTerabyte: &costPerTB})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	grantRead(t, st, "alpha", "bob", store.Permissions{Read: true})
	require.NoError(t, st.SetDirectoryMetadata(ctx, "alpha", map[string]string{
		metaKeySize:             "1000000000000",
		metaKeySizeCalculatedAt: "2026-08-01T00:00:00Z",
		metaKeyFundCode:         "FC123",
		metaKeyOwner:            "bob",
	}))

	details := collectAccessible(t, c, "bob")
	require.Len(t, details, 1)

	d := details[0]
	assert.Equal(t, "alpha", d.Name)
	require.NotNil(t, d.Size)
	assert.Equal(t, "1000000000000", *d.Size)
	require.NotNil(t, d.Cost)
	assert.Equal(t, "100", *d.Cost)
	require.NotNil(t, d.FundCode)
	assert.Equal(t, "FC123", *d.FundCode)
	require.NotNil(t, d.Owner)
	assert.Equal(t, "bob", *d.Owner)
	assert.Equal(t, []string{"bob"}, d.UserAccess)
	assert.Equal(t, "memory://store/alpha", d.URI)
}

func TestListAccessible_EarlyTerminationSkipsRemainingFolders(t *testing.T) {
	ctx := context.Background()
	st := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	counting := &countingStore{HierarchicalStore: st}
	c := New(counting, Config{}, nil)

	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, st.CreateDirectory(ctx, name))
		grantRead(t, st, name, "bob", store.Permissions{Read: true})
	}

	var seen []string
	err := c.ListAccessible(ctx, "bob", func(d FolderDetail) error {
		seen = append(seen, d.Name)
		if len(seen) == 2 {
			return ErrStopIteration
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, seen)
	// Folders after the stop must not have been examined.
	assert.Equal(t, 2, counting.aclCalls)
}

func TestListAccessible_FirstErrorAbortsListing(t *testing.T) {
	ctx := context.Background()
	st := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	counting := &countingStore{HierarchicalStore: st, failFolder: "b"}
	c := New(counting, Config{}, nil)

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, st.CreateDirectory(ctx, name))
		grantRead(t, st, name, "bob", store.Permissions{Read: true})
	}

	var seen []string
	err := c.ListAccessible(ctx, "bob", func(d FolderDetail) error {
		seen = append(seen, d.Name)
		return nil
	})

	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrTransport))
	assert.Equal(t, []string{"a"}, seen)
	// "c" was never examined: the first error aborts the whole walk.
	assert.Equal(t, 2, counting.aclCalls)
}

func TestListAccessible_IgnoresTopLevelFiles(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	grantRead(t, st, "alpha", "bob", store.Permissions{Read: true})
	st.AddFile("stray.txt", int64Ptr(42))

	details := collectAccessible(t, c, "bob")
	require.Len(t, details, 1)
	assert.Equal(t, "alpha", details[0].Name)
}
