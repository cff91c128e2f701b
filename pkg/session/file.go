package session

import (
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/hiernet/pkg/errors"
)

const sessionExt = ".json"

// FileStore keeps one JSON file per session in a directory. Writes go
// through a temporary file so a crashed command never leaves a torn
// session behind.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore opens a session directory, creating it with owner-only
// permissions. An empty dir selects hiernet/sessions under the user's
// config directory.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "locate config dir")
		}
		dir = filepath.Join(base, "hiernet", "sessions")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create session dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) file(id string) string { return filepath.Join(s.dir, id+sessionExt) }

func readSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", filepath.Base(path))
	}
	return &sess, nil
}

// Get loads a session. Expired sessions are removed on sight.
func (s *FileStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, err := readSession(s.file(id))
	s.mu.RUnlock()

	switch {
	case errors.Is(err, errors.ErrCodeInvalidFormat):
		return nil, err
	case os.IsNotExist(err):
		return nil, errors.New(errors.ErrCodeSessionNotFound, "no session %s", id)
	case err != nil:
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read session %s", id)
	}

	if sess.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, errors.New(errors.ErrCodeSessionExpired, "session %s expired at %s",
			id, sess.ExpiresAt.Format(time.RFC3339))
	}
	return sess, nil
}

func (s *FileStore) Set(ctx context.Context, sess *Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode session")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".session-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session %s", sess.ID)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write session %s", sess.ID)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session %s", sess.ID)
	}
	if err := os.Rename(tmp.Name(), s.file(sess.ID)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write session %s", sess.ID)
	}
	return nil
}

// Delete removes a session. Deleting a missing session is not an error.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "remove session %s", id)
	}
	return nil
}

// Cleanup removes expired sessions and files that no longer decode.
func (s *FileStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "list sessions")
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeCancelled, err, "session cleanup")
		}
		if !isSessionFile(e) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		sess, err := readSession(path)
		if errors.Is(err, errors.ErrCodeInvalidFormat) || (err == nil && sess.IsExpired()) {
			_ = os.Remove(path)
		}
	}
	return nil
}

func isSessionFile(e fs.DirEntry) bool {
	return !e.IsDir() && strings.HasSuffix(e.Name(), sessionExt) && !strings.HasPrefix(e.Name(), ".")
}

var _ Store = (*FileStore)(nil)

// =============================================================================
// CLI convenience wrapper
// =============================================================================

const defaultCLISessionID = "current"

// CLIStore wraps a Store with the single session used by the CLI.
type CLIStore struct {
	store     Store
	sessionID string
	ttl       time.Duration
}

// NewCLIStore creates a CLI session store in dir (empty for the default).
func NewCLIStore(dir string) (*CLIStore, error) {
	store, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{store: store, sessionID: defaultCLISessionID, ttl: DefaultTTL}, nil
}

// SetTTL changes how long the CLI session survives without use.
func (c *CLIStore) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		c.ttl = ttl
	}
}

// Current returns the CLI session.
func (c *CLIStore) Current(ctx context.Context) (*Session, error) {
	return c.store.Get(ctx, c.sessionID)
}

// Start replaces the CLI session with a fresh one editing document.
func (c *CLIStore) Start(ctx context.Context, document, backend string) (*Session, error) {
	sess, err := New(document, backend, c.ttl)
	if err != nil {
		return nil, err
	}
	sess.ID = c.sessionID
	return sess, c.store.Set(ctx, sess)
}

// Save touches and stores the CLI session.
func (c *CLIStore) Save(ctx context.Context, sess *Session) error {
	sess.ID = c.sessionID
	sess.Touch(c.ttl)
	return c.store.Set(ctx, sess)
}

// End removes the CLI session along with any expired ones.
func (c *CLIStore) End(ctx context.Context) error {
	if err := c.store.Delete(ctx, c.sessionID); err != nil {
		return err
	}
	return c.store.Cleanup(ctx)
}
