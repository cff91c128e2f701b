// Package cache stores rendered artifacts keyed by document content.
//
// Rendering a large document through Graphviz is the slowest step of the
// editor, so [editor.Runner] keeps SVG output in a [Cache] under a key that
// hashes the document bytes, the context stack and the render options. An
// edit changes the document bytes and therefore the key; stale entries are
// never served and simply expire.
//
// Two implementations are provided: [FileCache] for the CLI and server, and
// [NullCache] when caching is disabled. [RetryWithBackoff] is shared with the
// store backends for transient connection failures.
//
// [editor.Runner]: github.com/matzehuels/hiernet/pkg/editor.Runner
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the cached value and whether it was found. Expired and
	// unreadable entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// RenderKey identifies a rendered artifact of a document level.
	RenderKey(docHash string, opts RenderKeyOpts) string
}

// RenderKeyOpts are the inputs of a render that change its output.
type RenderKeyOpts struct {
	Context  []string `json:"context,omitempty"`
	Format   string   `json:"format"`
	Expand   bool     `json:"expand,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	Scale    float64  `json:"scale,omitempty"` // raster output only
}

// DefaultKeyer produces keys of the form "render:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// RenderKey hashes the document hash together with opts.
func (DefaultKeyer) RenderKey(docHash string, opts RenderKeyOpts) string {
	return hashKey("render", docHash, opts)
}

// RenderKey is shorthand for [DefaultKeyer.RenderKey].
func RenderKey(doc []byte, opts RenderKeyOpts) string {
	return DefaultKeyer{}.RenderKey(Hash(doc), opts)
}
