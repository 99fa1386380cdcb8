package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/diewo77/go-talent/internal/models"
)

func profile(kv ...string) models.UserProfile {
	p := models.UserProfile{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i]] = json.RawMessage(kv[i+1])
	}
	return p
}

// fill stores p for userID through the normal miss-then-set path.
func fill(ctx context.Context, c ProfileCache, userID string, p models.UserProfile) {
	_, stamp, _ := c.Get(ctx, userID)
	c.Set(ctx, userID, stamp, p)
}

func TestMemory_CachesProfile(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(5 * time.Minute)

	if _, _, ok := c.Get(ctx, "u1"); ok {
		t.Fatal("expected miss on empty cache")
	}
	fill(ctx, c, "u1", profile("years_experience", `"6-10"`))

	got, _, ok := c.Get(ctx, "u1")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(got["years_experience"]) != `"6-10"` {
		t.Errorf("got %s", got["years_experience"])
	}

	// Mutating the returned map must not leak into the cache.
	got["years_experience"] = json.RawMessage(`"x"`)
	again, _, _ := c.Get(ctx, "u1")
	if string(again["years_experience"]) != `"6-10"` {
		t.Error("cached entry was mutated through a returned copy")
	}
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(5 * time.Minute)
	fill(ctx, c, "u1", profile("a", `1`))
	fill(ctx, c, "u2", profile("b", `2`))

	c.Invalidate(ctx, "u1")
	if _, _, ok := c.Get(ctx, "u1"); ok {
		t.Error("u1 should be gone")
	}
	if _, _, ok := c.Get(ctx, "u2"); !ok {
		t.Error("u2 should remain")
	}

	c.InvalidateAll(ctx)
	if _, _, ok := c.Get(ctx, "u2"); ok {
		t.Error("u2 should be gone after InvalidateAll")
	}
}

func TestMemory_SetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(5 * time.Minute)

	_, stamp, _ := c.Get(ctx, "u1")
	c.Invalidate(ctx, "u1")
	c.Set(ctx, "u1", stamp, profile("a", `"old"`))
	if got, _, ok := c.Get(ctx, "u1"); ok {
		t.Fatalf("profile computed before Invalidate was cached: %v", got)
	}

	_, stamp, _ = c.Get(ctx, "u1")
	c.InvalidateAll(ctx)
	c.Set(ctx, "u1", stamp, profile("a", `"old"`))
	if got, _, ok := c.Get(ctx, "u1"); ok {
		t.Fatalf("profile computed before InvalidateAll was cached: %v", got)
	}

	// Another user's invalidation does not affect u1's stamp.
	_, stamp, _ = c.Get(ctx, "u1")
	c.Invalidate(ctx, "u2")
	c.Set(ctx, "u1", stamp, profile("a", `"fresh"`))
	if _, _, ok := c.Get(ctx, "u1"); !ok {
		t.Fatal("u2's invalidation must not discard u1's profile")
	}
}

func TestMemory_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	fill(ctx, c, "u1", profile("a", `1`))
	now = now.Add(59 * time.Second)
	if _, _, ok := c.Get(ctx, "u1"); !ok {
		t.Fatal("entry expired too early")
	}
	now = now.Add(2 * time.Second)
	if _, _, ok := c.Get(ctx, "u1"); ok {
		t.Error("entry should have expired")
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	var c ProfileCache = Nop{}
	fill(ctx, c, "u1", profile("a", `1`))
	if _, _, ok := c.Get(ctx, "u1"); ok {
		t.Error("Nop must never hit")
	}
}
