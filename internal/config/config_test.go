package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/store"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Backend != store.BackendFile {
		t.Errorf("expected file backend, got %q", cfg.Store.Backend)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %q", cfg.Log.Level)
	}
	if cfg.Render.Format != "svg" || cfg.Render.Scale != 2 {
		t.Errorf("unexpected render defaults %+v", cfg.Render)
	}
	if cfg.Server.Addr == "" {
		t.Error("default server address should be set")
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := Dir(); dir != "/tmp/test-xdg/hiernet" {
		t.Errorf("expected /tmp/test-xdg/hiernet, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if dir := Dir(); dir != filepath.Join(home, ".config", "hiernet") {
		t.Errorf("unexpected default dir %q", dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Store.Backend = store.BackendRedis
	cfg.Store.RedisAddr = "cache:6379"
	cfg.Render.Expand = true

	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(Path()); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	loaded, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Store.Backend != store.BackendRedis || loaded.Store.RedisAddr != "cache:6379" {
		t.Errorf("store config not round-tripped: %+v", loaded.Store)
	}
	if !loaded.Render.Expand {
		t.Error("expected expand true after load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Error("missing file should yield defaults")
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[server]\naddr = \":9000\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected :9000, got %q", cfg.Server.Addr)
	}
	if cfg.Render.Format != "svg" {
		t.Errorf("unset values should keep defaults, got format %q", cfg.Render.Format)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[server\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Load(invalid) error = %v, want INVALID_FORMAT", err)
	}
}
