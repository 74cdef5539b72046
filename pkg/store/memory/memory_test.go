package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
	storetesting "github.com/fredcicles/sas/pkg/store/testing"
)

func TestMemoryStore_Contract(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func() store.HierarchicalStore {
			return NewMemoryStore(MemoryStoreConfig{})
		},
		AddFile: func(st store.HierarchicalStore, path string, length *int64) {
			st.(*MemoryStore).AddFile(path, length)
		},
	}
	suite.Run(t)
}

func TestMemoryStore_DirectoryURI(t *testing.T) {
	st := NewMemoryStore(MemoryStoreConfig{BaseURI: "https://account.dfs.core.windows.net/tenant"})
	assert.Equal(t, "https://account.dfs.core.windows.net/tenant/alpha", st.DirectoryURI("alpha"))
}

func TestMemoryStore_SetClock(t *testing.T) {
	st := NewMemoryStore(MemoryStoreConfig{})
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	st.SetClock(func() time.Time { return fixed })

	require.NoError(t, st.CreateDirectory(context.Background(), "alpha"))

	props, err := st.GetDirectoryProperties(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, fixed, props.CreatedOn)
}

func TestMemoryStore_AddFileCreatesIntermediateDirectories(t *testing.T) {
	st := NewMemoryStore(MemoryStoreConfig{})
	length := int64(5)
	st.AddFile("alpha/sub/deep/file.bin", &length)

	props, err := st.GetDirectoryProperties(context.Background(), "alpha/sub/deep")
	require.NoError(t, err)
	assert.Equal(t, "true", props.Metadata[store.DirectoryMarkerKey])
}
