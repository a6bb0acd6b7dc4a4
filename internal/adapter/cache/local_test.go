package cache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLocalCache_SetAndGet(t *testing.T) {
	// Arrange
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	// Act
	if err := c.Set(ctx, "tts:abc", "reply.wav", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := c.Get(ctx, "tts:abc")

	// Assert
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "reply.wav" {
		t.Errorf("expected reply.wav, got %q", got)
	}
}

func TestLocalCache_GetMissingKey(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()

	if _, err := c.Get(context.Background(), "nope"); err == nil {
		t.Error("expected error for missing key")
	}
}

func TestLocalCache_ExpiredKeyIsGone(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "short", "value", time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := c.Get(ctx, "short"); err == nil {
		t.Error("expected error for expired key")
	}
}

func TestLocalCache_SetMarshalsStructs(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}
	if err := c.Set(ctx, "obj", payload{Name: "milk"}, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "obj")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"name":"milk"}` {
		t.Errorf("unexpected stored value: %q", got)
	}
}

func TestLocalCache_Delete(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "k", "v", 0)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err == nil {
		t.Error("expected error after delete")
	}
}
