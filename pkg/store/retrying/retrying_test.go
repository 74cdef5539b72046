package retrying

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcicles/sas/internal/retry"
	"github.com/fredcicles/sas/pkg/store"
	"github.com/fredcicles/sas/pkg/store/memory"
)

// flakyStore fails the first n calls to GetDirectoryProperties with a
// transport error, then delegates.
type flakyStore struct {
	store.HierarchicalStore
	failuresLeft int
	calls        int
}

func (s *flakyStore) GetDirectoryProperties(ctx context.Context, path string) (store.DirectoryProperties, error) {
	s.calls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return store.DirectoryProperties{}, store.NewError(store.ErrTransport, path, "connection reset")
	}
	return s.HierarchicalStore.GetDirectoryProperties(ctx, path)
}

func fastOptions() retry.Options {
	return retry.Options{MaxAttempts: 4, InitialSleep: time.Millisecond, MaxSleep: 2 * time.Millisecond}
}

func TestRetrying_TransientFailureRecovers(t *testing.T) {
	base := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	require.NoError(t, base.CreateDirectory(context.Background(), "alpha"))

	flaky := &flakyStore{HierarchicalStore: base, failuresLeft: 2}
	wrapped := NewWrapper(flaky, fastOptions())

	props, err := wrapped.GetDirectoryProperties(context.Background(), "alpha")
	require.NoError(t, err)
	assert.NotNil(t, props.Metadata)
	assert.Equal(t, 3, flaky.calls)
}

func TestRetrying_BusinessErrorNotRetried(t *testing.T) {
	base := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	flaky := &flakyStore{HierarchicalStore: base}
	wrapped := NewWrapper(flaky, fastOptions())

	_, err := wrapped.GetDirectoryProperties(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, store.IsCode(err, store.ErrNotFound))
	assert.Equal(t, 1, flaky.calls)
}

func TestRetrying_GivesUpAfterMaxAttempts(t *testing.T) {
	base := memory.NewMemoryStore(memory.MemoryStoreConfig{})
	require.NoError(t, base.CreateDirectory(context.Background(), "alpha"))

	flaky := &flakyStore{HierarchicalStore: base, failuresLeft: 100}
	wrapped := NewWrapper(flaky, fastOptions())

	_, err := wrapped.GetDirectoryProperties(context.Background(), "alpha")
	require.Error(t, err)
	assert.Equal(t, 4, flaky.calls)
}
