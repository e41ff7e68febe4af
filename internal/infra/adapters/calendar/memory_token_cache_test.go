package calendar

import (
	"context"
	"testing"
	"time"
)

func TestMemoryTokenCacheExpiry(t *testing.T) {
	c := NewMemoryTokenCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	v, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get = %q/%v/%v", v, ok, err)
	}

	if err := c.Set(ctx, "stale", "v", time.Now().Add(-time.Second)); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "stale"); ok {
		t.Error("expired entry must read as a miss")
	}

	if err := c.Invalidate(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Error("invalidated entry must read as a miss")
	}
}
