package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/observability"
)

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Load(ctx, "missing"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Load(missing) error = %v, want DOCUMENT_NOT_FOUND", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Delete(missing) error = %v, want DOCUMENT_NOT_FOUND", err)
	}

	docs := map[string]string{
		"beta":  `{"version":1,"nodes":[]}`,
		"alpha": `{"version":1,"nodes":[{"id":"a"}]}`,
	}
	for name, data := range docs {
		if err := s.Save(ctx, name, []byte(data)); err != nil {
			t.Fatalf("Save(%s) error: %v", name, err)
		}
	}
	for name, want := range docs {
		got, err := s.Load(ctx, name)
		if err != nil || string(got) != want {
			t.Errorf("Load(%s) = %q, %v, want %q", name, got, err, want)
		}
	}

	if err := s.Save(ctx, "beta", []byte(`{"nodes":[{"id":"b"}]}`)); err != nil {
		t.Fatalf("Save(beta) overwrite error: %v", err)
	}
	if got, _ := s.Load(ctx, "beta"); string(got) != `{"nodes":[{"id":"b"}]}` {
		t.Errorf("Load(beta) after overwrite = %q", got)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 2 || list[0].Name != "alpha" || list[1].Name != "beta" {
		t.Fatalf("List = %+v, want alpha, beta", list)
	}
	if list[0].Size != len(docs["alpha"]) {
		t.Errorf("alpha size = %d, want %d", list[0].Size, len(docs["alpha"]))
	}
	if list[0].UpdatedAt.IsZero() {
		t.Error("alpha has no update time")
	}

	if err := s.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete(alpha) error: %v", err)
	}
	if _, err := s.Load(ctx, "alpha"); !errors.Is(err, errors.ErrCodeDocumentNotFound) {
		t.Errorf("Load(alpha) after delete error = %v", err)
	}

	for _, bad := range []string{"", "../etc", "a/b", ".hidden"} {
		if err := s.Save(ctx, bad, []byte("{}")); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Save(%q) error = %v, want INVALID_NAME", bad, err)
		}
	}
}

func TestOpenFile(t *testing.T) {
	s, err := Open(context.Background(), Config{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "etcd"}, nil)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Open(etcd) error = %v, want UNSUPPORTED", err)
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	mu    sync.Mutex
	loads []string
	saves []string
}

func (h *recordingHooks) OnLoad(_ context.Context, backend, name string, _ int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loads = append(h.loads, backend+":"+name+":"+string(errors.GetCode(err)))
}

func (h *recordingHooks) OnSave(_ context.Context, backend, name string, size int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saves = append(h.saves, backend+":"+name)
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore error: %v", err)
	}
	s := Instrument(fs, "file")
	ctx := context.Background()
	_ = s.Save(ctx, "doc", []byte("{}"))
	_, _ = s.Load(ctx, "doc")
	_, _ = s.Load(ctx, "gone")

	if len(hooks.saves) != 1 || hooks.saves[0] != "file:doc" {
		t.Errorf("saves = %v", hooks.saves)
	}
	want := []string{"file:doc:", "file:gone:DOCUMENT_NOT_FOUND"}
	if len(hooks.loads) != 2 || hooks.loads[0] != want[0] || hooks.loads[1] != want[1] {
		t.Errorf("loads = %v, want %v", hooks.loads, want)
	}
}
