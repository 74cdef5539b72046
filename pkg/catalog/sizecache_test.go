package catalog

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
	"github.com/fredcicles/sas/pkg/store/memory"
)

func newTestCatalog(cfg Config) (*Catalog, *memory.MemoryStore) {
	st := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	return New(st, cfg, nil), st
}

func seedSizeCache(t *testing.T, st *memory.MemoryStore, folder string, size int64, calculatedAt time.Time) {
	t.Helper()
	err := st.SetDirectoryMetadata(context.Background(), folder, map[string]string{
		metaKeySize:             strconv.FormatInt(size, 10),
		metaKeySizeCalculatedAt: calculatedAt.UTC().Format(sizeTimestampLayout),
	})
	require.NoError(t, err)
}

func int64Ptr(v int64) *int64 { return &v }

func TestGetOrRefreshSize_StaleCacheRecomputes(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	now := time.Now()
	c.clock = func() time.Time { return now }

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	seedSizeCache(t, st, "alpha", 999, now.Add(-8*24*time.Hour))

	st.AddFile("alpha/a.bin", int64Ptr(10))
	st.AddFile("alpha/sub/b.bin", int64Ptr(20))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(30), size)

	// Both metadata keys must have been rewritten together.
	props, err := st.GetDirectoryProperties(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "30", props.Metadata[metaKeySize])
	assert.Equal(t, now.UTC().Format(sizeTimestampLayout), props.Metadata[metaKeySizeCalculatedAt])
}

func TestGetOrRefreshSize_FreshCacheIsReturnedUnchanged(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	now := time.Now()
	c.clock = func() time.Time { return now }

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	calculatedAt := now.Add(-1 * time.Hour)
	seedSizeCache(t, st, "alpha", 999, calculatedAt)

	// Files that would change the answer if a re-enumeration happened.
	st.AddFile("alpha/a.bin", int64Ptr(12345))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(999), size)

	props, err := st.GetDirectoryProperties(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "999", props.Metadata[metaKeySize])
	assert.Equal(t, calculatedAt.UTC().Format(sizeTimestampLayout), props.Metadata[metaKeySizeCalculatedAt])
}

func TestGetOrRefreshSize_NeverComputedIsAlwaysStale(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	st.AddFile("alpha/a.bin", int64Ptr(7))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(7), size)

	props, err := st.GetDirectoryProperties(ctx, "alpha")
	require.NoError(t, err)
	assert.Contains(t, props.Metadata, metaKeySize)
	assert.Contains(t, props.Metadata, metaKeySizeCalculatedAt)
}

func TestGetOrRefreshSize_AbsentLengthContributesZero(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	st.AddFile("alpha/a.bin", int64Ptr(10))
	st.AddFile("alpha/b.bin", int64Ptr(0))
	st.AddFile("alpha/c.bin", nil)

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
}

func TestGetOrRefreshSize_EmptyFolder(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}

func TestGetOrRefreshSize_UnpairedMetadataTreatedAsStale(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	require.NoError(t, st.SetDirectoryMetadata(ctx, "alpha", map[string]string{
		metaKeySize: "999", // timestamp missing: size must not be trusted
	}))
	st.AddFile("alpha/a.bin", int64Ptr(5))

	size, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestGetOrRefreshSize_MissingFolderFails(t *testing.T) {
	c, _ := newTestCatalog(Config{})

	_, err := c.GetOrRefreshSize(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrNotFound))
}

func TestGetOrRefreshSize_PreservesUnrelatedMetadata(t *testing.T) {
	ctx := context.Background()
	c, st := newTestCatalog(Config{})

	require.NoError(t, st.CreateDirectory(ctx, "alpha"))
	require.NoError(t, st.SetDirectoryMetadata(ctx, "alpha", map[string]string{
		metaKeyFundCode: "FC999",
	}))
	st.AddFile("alpha/a.bin", int64Ptr(1))

	_, err := c.GetOrRefreshSize(ctx, "alpha")
	require.NoError(t, err)

	props, err := st.GetDirectoryProperties(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "FC999", props.Metadata[metaKeyFundCode])
}
