// Package store persists network documents by name.
//
// # Overview
//
// A [Store] holds encoded documents (the JSON written by
// [github.com/matzehuels/hiernet/pkg/io]) under validated names. Three
// backends are provided:
//
//   - [FileStore]: one JSON file per document in a directory, for the CLI
//   - [RedisStore]: one hash per document, for shared multi-instance servers
//   - [MongoStore]: one MongoDB document per name
//
// [Open] selects a backend from a [Config], retries transient connection
// failures and wraps the result so every load and save is reported to the
// registered [observability.StoreHooks].
//
// # Errors
//
// Loading or deleting a missing document returns DOCUMENT_NOT_FOUND. Invalid
// names return INVALID_NAME. Connection failures return NETWORK_ERROR.
package store

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hiernet/pkg/cache"
	"github.com/matzehuels/hiernet/pkg/errors"
	"github.com/matzehuels/hiernet/pkg/observability"
)

// Store is the interface for document storage backends.
type Store interface {
	// Load returns the encoded document called name.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save creates or replaces the document called name.
	Save(ctx context.Context, name string, data []byte) error

	// Delete removes the document called name.
	Delete(ctx context.Context, name string) error

	// List returns every stored document sorted by name.
	List(ctx context.Context) ([]Info, error)

	// Close releases connections held by the store.
	Close() error
}

// Info describes a stored document.
type Info struct {
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// File backend.
	Dir string `toml:"dir"`

	// Redis backend.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`

	// Mongo backend.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Open connects to the backend named in cfg. Connection attempts that fail
// with a network error are retried with backoff.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var s Store
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		s, err = open(ctx, cfg)
		if cache.IsRetryable(err) {
			logger.Warn("store connection failed", "backend", backendName(cfg), "err", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("store opened", "backend", backendName(cfg))
	return Instrument(s, backendName(cfg)), nil
}

func open(ctx context.Context, cfg Config) (Store, error) {
	switch backendName(cfg) {
	case BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, RedisOptions{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	case BackendMongo:
		return NewMongoStore(ctx, MongoOptions{URI: cfg.MongoURI, Database: cfg.MongoDatabase, Collection: cfg.MongoCollection})
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q", cfg.Backend)
}

func backendName(cfg Config) string {
	if cfg.Backend == "" {
		return BackendFile
	}
	return cfg.Backend
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeDocumentNotFound, "document %q not found", name)
}

// =============================================================================
// Instrumentation
// =============================================================================

// Instrument wraps s so loads and saves are reported to the registered store
// hooks under the given backend name.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Load(ctx context.Context, name string) ([]byte, error) {
	start := time.Now()
	data, err := s.Store.Load(ctx, name)
	observability.Store().OnLoad(ctx, s.backend, name, len(data), time.Since(start), err)
	return data, err
}

func (s *instrumented) Save(ctx context.Context, name string, data []byte) error {
	start := time.Now()
	err := s.Store.Save(ctx, name, data)
	observability.Store().OnSave(ctx, s.backend, name, len(data), time.Since(start), err)
	return err
}
