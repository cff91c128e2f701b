package session

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/hiernet/pkg/errors"
)

func TestNew(t *testing.T) {
	s, err := New("net", "file", time.Hour)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.ID == "" || s.Document != "net" || s.IsExpired() {
		t.Errorf("New = %+v", s)
	}
	if _, err := New("../net", "file", time.Hour); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("New(../net) error = %v, want INVALID_NAME", err)
	}
}

func TestContextStack(t *testing.T) {
	s := &Session{}
	s.Exit()
	s.Enter("a")
	s.Enter("b")
	if !slices.Equal(s.Context, []string{"a", "b"}) {
		t.Errorf("Context = %v", s.Context)
	}
	s.Exit()
	if !slices.Equal(s.Context, []string{"a"}) {
		t.Errorf("Context after Exit = %v", s.Context)
	}

	ids := []string{"x", "y"}
	s.SetContext(ids)
	ids[0] = "changed"
	if s.Context[0] != "x" {
		t.Error("SetContext kept a reference to its argument")
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	if _, err := st.Get(ctx, "nope"); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Get(nope) error = %v, want SESSION_NOT_FOUND", err)
	}

	s, _ := New("net", "", time.Hour)
	s.Enter("c1")
	if err := st.Set(ctx, s); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Document != "net" || !slices.Equal(got.Context, []string{"c1"}) {
		t.Errorf("Get = %+v", got)
	}

	if err := st.Delete(ctx, s.ID); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Errorf("second Delete error: %v", err)
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	st, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}

	old, _ := New("old", "", -time.Minute)
	live, _ := New("live", "", time.Hour)
	_ = st.Set(ctx, old)
	_ = st.Set(ctx, live)

	if err := st.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup error: %v", err)
	}
	if _, err := st.Get(ctx, old.ID); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("expired session survived cleanup: %v", err)
	}
	if _, err := st.Get(ctx, live.ID); err != nil {
		t.Errorf("live session removed: %v", err)
	}

	stale, _ := New("stale", "", -time.Minute)
	_ = st.Set(ctx, stale)
	if _, err := st.Get(ctx, stale.ID); !errors.Is(err, errors.ErrCodeSessionExpired) {
		t.Errorf("Get(stale) error = %v, want SESSION_EXPIRED", err)
	}
}

func TestCLIStore(t *testing.T) {
	ctx := context.Background()
	c, err := NewCLIStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewCLIStore error: %v", err)
	}
	if _, err := c.Current(ctx); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Current before Start error = %v", err)
	}

	s, err := c.Start(ctx, "net", "file")
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	s.Enter("stage")
	if err := c.Save(ctx, s); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := c.Current(ctx)
	if err != nil {
		t.Fatalf("Current error: %v", err)
	}
	if got.ID != defaultCLISessionID || got.Document != "net" || !slices.Equal(got.Context, []string{"stage"}) {
		t.Errorf("Current = %+v", got)
	}

	if err := c.End(ctx); err != nil {
		t.Fatalf("End error: %v", err)
	}
	if _, err := c.Current(ctx); !errors.Is(err, errors.ErrCodeSessionNotFound) {
		t.Errorf("Current after End error = %v", err)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := st.Get(ctx, "bad"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Get(bad) error = %v, want INVALID_FORMAT", err)
	}
	if err := st.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "bad.json")); !os.IsNotExist(err) {
		t.Error("Cleanup kept an undecodable session file")
	}
}

func TestFileStoreNoTempLeftovers(t *testing.T) {
	dir := t.TempDir()
	st, _ := NewFileStore(dir)
	s, _ := New("net", "", time.Hour)
	if err := st.Set(context.Background(), s); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != s.ID+".json" {
		t.Errorf("session dir = %v, want only %s.json", entries, s.ID)
	}
}
