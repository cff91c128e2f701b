package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/hiernet/internal/config"
)

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, want)
	}
}

func TestTemplatesPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	path := templatesPath()
	if filepath.Dir(path) != config.Dir() {
		t.Errorf("templatesPath() = %q, want it inside %q", path, config.Dir())
	}
	if !strings.HasSuffix(path, ".json") {
		t.Errorf("templatesPath() = %q, want a .json file", path)
	}
}
