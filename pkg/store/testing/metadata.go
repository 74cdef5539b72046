package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

// RunMetadataTests executes metadata replace-semantics tests.
func (suite *StoreTestSuite) RunMetadataTests(t *testing.T) {
	t.Run("Set_ReplacesBag", suite.testSetMetadataReplaces)
	t.Run("Set_OverwritesExistingKeys", suite.testSetMetadataOverwrites)
	t.Run("Set_RejectsDirectoryMarker", suite.testSetMetadataRejectsMarker)
	t.Run("Set_NotFound", suite.testSetMetadataNotFound)
}

func (suite *StoreTestSuite) testSetMetadataReplaces(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	require.NoError(t, st.SetDirectoryMetadata(testContext(), "alpha", map[string]string{
		"FundCode": "FC123",
		"Owner":    "bob",
	}))
	require.NoError(t, st.SetDirectoryMetadata(testContext(), "alpha", map[string]string{
		"FundCode": "FC456",
	}))

	props, err := st.GetDirectoryProperties(testContext(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "FC456", props.Metadata["FundCode"])
	// Full replace: keys missing from the new bag are dropped.
	assert.NotContains(t, props.Metadata, "Owner")
}

func (suite *StoreTestSuite) testSetMetadataOverwrites(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	// Writing the same key twice must never fail with a duplicate-key
	// condition.
	require.NoError(t, st.SetDirectoryMetadata(testContext(), "alpha", map[string]string{"Owner": "bob"}))
	require.NoError(t, st.SetDirectoryMetadata(testContext(), "alpha", map[string]string{"Owner": "alice"}))

	props, err := st.GetDirectoryProperties(testContext(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alice", props.Metadata["Owner"])
}

func (suite *StoreTestSuite) testSetMetadataRejectsMarker(t *testing.T) {
	st := suite.NewStore()
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	err := st.SetDirectoryMetadata(testContext(), "alpha", map[string]string{
		store.DirectoryMarkerKey: "true",
	})
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrInvalidArgument))
}

func (suite *StoreTestSuite) testSetMetadataNotFound(t *testing.T) {
	st := suite.NewStore()

	err := st.SetDirectoryMetadata(testContext(), "missing", map[string]string{"Owner": "bob"})
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrNotFound))
}
