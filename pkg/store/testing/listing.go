package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

// RunListingTests executes path enumeration tests.
func (suite *StoreTestSuite) RunListingTests(t *testing.T) {
	t.Run("Shallow_TopLevelDirectories", suite.testListShallow)
	t.Run("Recursive_FilesOnly", suite.testListRecursiveFiles)
	t.Run("EarlyTermination", suite.testListEarlyTermination)
	t.Run("CallbackErrorPropagates", suite.testListCallbackError)
}

func (suite *StoreTestSuite) collect(t *testing.T, st store.HierarchicalStore, path string, recursive, includeDirectories bool) []store.PathEntry {
	t.Helper()
	var entries []store.PathEntry
	err := st.ListPaths(testContext(), path, recursive, includeDirectories, func(entry store.PathEntry) error {
		entries = append(entries, entry)
		return nil
	})
	require.NoError(t, err)
	return entries
}

func (suite *StoreTestSuite) testListShallow(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))
	require.NoError(t, st.CreateDirectory(testContext(), "beta"))
	require.NoError(t, st.CreateDirectory(testContext(), "alpha/nested"))

	entries := suite.collect(t, st, "", false, true)

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		assert.True(t, e.IsDirectory)
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func (suite *StoreTestSuite) testListRecursiveFiles(t *testing.T) {
	if suite.AddFile == nil {
		t.Skip("store has no file seeding hook")
	}

	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))
	suite.AddFile(st, "alpha/a.bin", int64Ptr(10))
	suite.AddFile(st, "alpha/sub/b.bin", int64Ptr(20))

	entries := suite.collect(t, st, "alpha", true, false)

	var total int64
	for _, e := range entries {
		assert.False(t, e.IsDirectory)
		if e.ContentLength != nil {
			total += *e.ContentLength
		}
	}
	assert.Equal(t, int64(30), total)
}

func (suite *StoreTestSuite) testListEarlyTermination(t *testing.T) {
	st := suite.NewStore()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, st.CreateDirectory(testContext(), name))
	}

	var seen int
	err := st.ListPaths(testContext(), "", false, true, func(entry store.PathEntry) error {
		seen++
		return store.ErrStopIteration
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func (suite *StoreTestSuite) testListCallbackError(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	injected := store.NewError(store.ErrTransport, "", "injected")
	err := st.ListPaths(testContext(), "", false, true, func(entry store.PathEntry) error {
		return injected
	})
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrTransport))
}

func int64Ptr(v int64) *int64 { return &v }
