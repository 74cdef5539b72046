package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fredcicles/sas/pkg/store/badger"
	"github.com/fredcicles/sas/pkg/store/memory"
)

func TestCreateStore_Memory(t *testing.T) {
	cfg := &StoreConfig{Type: "memory", Memory: map[string]any{}}

	st, err := CreateStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}

	if _, ok := st.(*memory.MemoryStore); !ok {
		t.Errorf("Expected *memory.MemoryStore, got %T", st)
	}
}

func TestCreateStore_MemoryWithBaseURI(t *testing.T) {
	cfg := &StoreConfig{
		Type:   "memory",
		Memory: map[string]any{"base_uri": "memory://unit-test"},
	}

	st, err := CreateStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}

	if uri := st.DirectoryURI("alpha"); uri != "memory://unit-test/alpha" {
		t.Errorf("Unexpected directory URI: %q", uri)
	}
}

func TestCreateStore_Badger(t *testing.T) {
	cfg := &StoreConfig{
		Type:   "badger",
		Badger: map[string]any{"db_path": filepath.Join(t.TempDir(), "db")},
	}

	st, err := CreateStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create badger store: %v", err)
	}
	t.Cleanup(func() { _ = st.(*badger.BadgerStore).Close() })
}

func TestCreateStore_BadgerMissingPath(t *testing.T) {
	cfg := &StoreConfig{Type: "badger", Badger: map[string]any{}}

	if _, err := CreateStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for badger store without db_path, got nil")
	}
}

func TestCreateStore_UnknownType(t *testing.T) {
	cfg := &StoreConfig{Type: "cassandra"}

	if _, err := CreateStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for unknown store type, got nil")
	}
}

func TestCreateStore_S3MissingBucket(t *testing.T) {
	cfg := &StoreConfig{Type: "s3", S3: map[string]any{"region": "us-east-1"}}

	if _, err := CreateStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for S3 store without bucket, got nil")
	}
}

func TestCreateStore_ADLSMissingAccount(t *testing.T) {
	cfg := &StoreConfig{Type: "adls", ADLS: map[string]any{"filesystem": "catalog"}}

	if _, err := CreateStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for ADLS store without storage_account, got nil")
	}
}

func TestCreateStore_RetryWrapper(t *testing.T) {
	cfg := &StoreConfig{
		Type:   "memory",
		Memory: map[string]any{},
		Retry: RetryConfig{
			Enabled:      true,
			MaxAttempts:  3,
			InitialSleep: time.Millisecond,
			MaxSleep:     2 * time.Millisecond,
		},
	}

	st, err := CreateStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// The decorator type is unexported; it suffices that the raw memory
	// store is no longer what comes back.
	if _, ok := st.(*memory.MemoryStore); ok {
		t.Error("Expected store to be wrapped in the retrying decorator")
	}
}
