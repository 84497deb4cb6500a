package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/depharvest/pkg/cache"
	"github.com/matzehuels/depharvest/pkg/config"
)

func TestCacheClearConfiguredBackend(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "xdg"))

	// Seed the default file backend, the one a harvest run would use.
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	c, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := c.Set(t.Context(), "tree:abc", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	c.Close()

	cmd := newCacheClearCmd(&rootOpts{})
	cmd.SetArgs([]string{})
	if err := cmd.ExecuteContext(t.Context()); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
}

func TestCachePathHonorsConfiguredDir(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Backend = config.BackendFile
	cfg.Cache.Dir = "/var/cache/depharvest"

	dir, err := cachePath(cfg)
	if err != nil {
		t.Fatalf("cachePath: %v", err)
	}
	if dir != "/var/cache/depharvest" {
		t.Errorf("cachePath = %q, want configured dir", dir)
	}
}
