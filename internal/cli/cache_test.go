package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/motorrutas/internal/config"
	"github.com/matzehuels/motorrutas/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir(config.Default())
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".cache", "motorrutas"); dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirOverrides(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)
	dir, _ := cacheDir(config.Default())
	if !strings.HasPrefix(dir, xdg) || !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, want under %q", dir, xdg)
	}

	cfg := config.Default()
	cfg.Cache.Dir = "/tmp/rutas-cache"
	if dir, _ := cacheDir(cfg); dir != "/tmp/rutas-cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Cache.Dir = t.TempDir()

	tests := []struct {
		name    string
		backend string
		noCache bool
		isFile  bool
	}{
		{"File", config.CacheFile, false, true},
		{"NoCacheFlag", config.CacheFile, true, false},
		{"None", config.CacheNone, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg.Cache.Backend = tt.backend
			c, err := newCache(ctx, cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache: %v", err)
			}
			defer c.Close()
			if _, ok := c.(*cache.FileCache); ok != tt.isFile {
				t.Errorf("newCache() = %T, file cache = %v", c, tt.isFile)
			}
		})
	}
}
