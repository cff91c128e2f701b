package store

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// FileStore keeps each document as <dir>/<name>.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store in dir.
// If dir is empty, defaults to ~/.config/hiernet/documents/
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "get home dir")
		}
		dir = filepath.Join(home, ".config", "hiernet", "documents")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create document dir")
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the documents.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read document %s", name)
	}
	return data, nil
}

func (s *FileStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.path(name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write document %s", name)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInternal, err, "write document %s", name)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove document %s", name)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read document dir")
	}
	var out []Info
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".json")
		if e.IsDir() || !ok || errors.ValidateDocumentName(name) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: name, Size: int(fi.Size()), UpdatedAt: fi.ModTime()})
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
