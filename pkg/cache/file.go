package cache

import (
	"context"
	"encoding/binary"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/observability"
)

// entryExt marks cache entry files; anything else in the directory is left
// alone.
const entryExt = ".entry"

// headerSize is the fixed prefix of an entry file: the expiry as big-endian
// Unix nanoseconds, zero for entries that never expire.
const headerSize = 8

// FileCache keeps rendered artifacts as files under dir, sharded by the
// first two hex characters of the hashed key. Entries hold raw bytes behind
// a small expiry header, so SVG, PDF and PNG are stored as they are.
type FileCache struct {
	dir   string
	hooks observability.CacheHooks
}

// NewFileCache creates a file cache in dir, creating the directory.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create cache dir")
	}
	return &FileCache{dir: dir, hooks: observability.Cache()}, nil
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c.hooks.OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "read cache entry")
	}

	data, ok := decodeEntry(raw, time.Now())
	if !ok {
		_ = os.Remove(path)
		c.hooks.OnCacheMiss(ctx, keyType(key))
		return nil, false, nil
	}
	c.hooks.OnCacheHit(ctx, keyType(key))
	return data, true, nil
}

// Set writes the entry to a temporary file and renames it into place, so a
// concurrent Get sees either the old entry or the new one.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create cache shard")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create cache entry")
	}
	_, werr := tmp.Write(encodeEntry(data, expires))
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmp.Name(), path)
	}
	if werr != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeInternal, werr, "write cache entry")
	}

	c.hooks.OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete cache entry")
	}
	return nil
}

// Prune removes expired and unreadable entries and returns how many it
// removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	now := time.Now()
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(path, entryExt) {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if _, ok := decodeEntry(raw, now); !ok && os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, errors.Wrap(errors.ErrCodeCancelled, err, "prune cache")
	}
	return removed, nil
}

func (c *FileCache) Close() error { return nil }

// Dir returns the cache directory.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

func encodeEntry(data []byte, expires time.Time) []byte {
	out := make([]byte, headerSize+len(data))
	if !expires.IsZero() {
		binary.BigEndian.PutUint64(out, uint64(expires.UnixNano()))
	}
	copy(out[headerSize:], data)
	return out
}

// decodeEntry returns the payload of raw unless it is truncated or expired
// at now.
func decodeEntry(raw []byte, now time.Time) ([]byte, bool) {
	if len(raw) < headerSize {
		return nil, false
	}
	if exp := int64(binary.BigEndian.Uint64(raw)); exp != 0 && now.UnixNano() > exp {
		return nil, false
	}
	return raw[headerSize:], true
}

var _ Cache = (*FileCache)(nil)
