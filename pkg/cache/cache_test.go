package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/motorrutas/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%v, %v, %v), want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, _ := c.Get(ctx, "missing"); hit {
		t.Error("missing key should miss")
	}

	if err := c.Set(ctx, "template:1", []byte(`{"nombreRuta":"Ruta X"}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "template:1")
	if err != nil || !hit || string(data) != `{"nombreRuta":"Ruta X"}` {
		t.Fatalf("Get = (%q, %v, %v)", data, hit, err)
	}

	if err := c.Delete(ctx, "template:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "template:1"); hit {
		t.Error("deleted key should miss")
	}
	if err := c.Delete(ctx, "template:1"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("fresh entry should hit")
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || hit || data != nil {
		t.Errorf("corrupt entry: Get = (%v, %v, %v), want miss", data, hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		c.Set(ctx, k, []byte(k), 0)
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("cleared entry should miss")
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
	prefix             string
}

func (h *countingHooks) OnCacheHit(_ context.Context, k string)  { h.hits++; h.prefix = k }
func (h *countingHooks) OnCacheMiss(_ context.Context, k string) { h.misses++; h.prefix = k }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestScoped(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	inner, _ := NewFileCache(t.TempDir())
	c := Scoped(inner, "template:")

	c.Get(ctx, "1")
	c.Set(ctx, "1", []byte("x"), 0)
	c.Get(ctx, "1")

	if _, hit, _ := inner.Get(ctx, "template:1"); !hit {
		t.Error("scoped key should be prefixed in the backend")
	}
	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %+v", hooks)
	}
	if hooks.prefix != "template:" {
		t.Errorf("hook key type = %q", hooks.prefix)
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("MOTORRUTAS_TEST_REDIS")
	if addr == "" {
		t.Skip("MOTORRUTAS_TEST_REDIS not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()

	key := "motorrutas-test:" + t.Name()
	if _, hit, err := c.Get(ctx, key); err != nil || hit {
		t.Fatalf("Get before Set = (%v, %v)", hit, err)
	}
	if err := c.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, key)
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = (%q, %v, %v)", data, hit, err)
	}
	if err := c.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}
