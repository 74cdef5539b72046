package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/pkg/store"
)

// RunDirectoryTests executes directory creation and properties tests.
func (suite *StoreTestSuite) RunDirectoryTests(t *testing.T) {
	t.Run("Create_Success", suite.testCreateDirectory)
	t.Run("Create_AlreadyExists", suite.testCreateDirectoryAlreadyExists)
	t.Run("Create_EmptyPath", suite.testCreateDirectoryEmptyPath)
	t.Run("GetProperties_NotFound", suite.testGetPropertiesNotFound)
	t.Run("GetProperties_CreatedOn", suite.testGetPropertiesCreatedOn)
	t.Run("DirectoryURI", suite.testDirectoryURI)
}

func (suite *StoreTestSuite) testCreateDirectory(t *testing.T) {
	st := suite.NewStore()

	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	props, err := st.GetDirectoryProperties(testContext(), "alpha")
	require.NoError(t, err)
	assert.NotNil(t, props.Metadata)
}

func (suite *StoreTestSuite) testCreateDirectoryAlreadyExists(t *testing.T) {
	st := suite.NewStore()

	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))

	err := st.CreateDirectory(testContext(), "alpha")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrAlreadyExists))
}

func (suite *StoreTestSuite) testCreateDirectoryEmptyPath(t *testing.T) {
	st := suite.NewStore()

	err := st.CreateDirectory(testContext(), "")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrInvalidArgument))
}

func (suite *StoreTestSuite) testGetPropertiesNotFound(t *testing.T) {
	st := suite.NewStore()

	_, err := st.GetDirectoryProperties(testContext(), "missing")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrNotFound))
}

func (suite *StoreTestSuite) testGetPropertiesCreatedOn(t *testing.T) {
	st := suite.NewStore()

	before := time.Now().Add(-time.Minute)
	require.NoError(t, st.CreateDirectory(testContext(), "alpha"))
	after := time.Now().Add(time.Minute)

	props, err := st.GetDirectoryProperties(testContext(), "alpha")
	require.NoError(t, err)
	assert.True(t, props.CreatedOn.After(before) && props.CreatedOn.Before(after),
		"creation time %v outside expected window", props.CreatedOn)
}

func (suite *StoreTestSuite) testDirectoryURI(t *testing.T) {
	st := suite.NewStore()

	uri := st.DirectoryURI("alpha")
	assert.NotEmpty(t, uri)
	assert.Contains(t, uri, "alpha")
}
