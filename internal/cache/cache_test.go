package cache

import (
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := New(1, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected miss for unknown key")
	}
	c.Set("prompt", "completion")
	c.Wait()
	v, ok := c.Get("prompt")
	if !ok || v != "completion" {
		t.Fatalf("expected cached completion, got %q (%v)", v, ok)
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	c.Set("k", "v")
	c.Wait()
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected nil cache to always miss")
	}
}
