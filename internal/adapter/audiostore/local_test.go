package audiostore

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func TestLocalStore_PutOpenRemove(t *testing.T) {
	// Arrange
	store, err := NewLocalStore(t.TempDir(), newTestLogger())
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	ctx := context.Background()

	// Act
	if err := store.Put(ctx, "clip.wav", []byte("riff")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	data, err := store.Open(ctx, "clip.wav")

	// Assert
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if string(data) != "riff" {
		t.Errorf("unexpected payload: %q", data)
	}

	if err := store.Remove(ctx, "clip.wav"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if _, err := store.Open(ctx, "clip.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestLocalStore_RejectsPathTraversal(t *testing.T) {
	// Arrange
	store, err := NewLocalStore(t.TempDir(), newTestLogger())
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}
	ctx := context.Background()

	// Act / Assert
	for _, name := range []string{"../escape.wav", "a/b.wav", `..\win.wav`, ""} {
		if _, err := store.Open(ctx, name); err == nil {
			t.Errorf("expected rejection for %q", name)
		}
	}
}

func TestLocalStore_RemoveMissingIsNoop(t *testing.T) {
	// Arrange
	store, err := NewLocalStore(t.TempDir(), newTestLogger())
	if err != nil {
		t.Fatalf("store init failed: %v", err)
	}

	// Act
	err = store.Remove(context.Background(), "ghost.wav")

	// Assert
	if err != nil {
		t.Errorf("remove of missing clip should be silent, got %v", err)
	}
}
