// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about model operations, cache and store access, and the
// HTTP API.
//
// Each event category has an interface with a no-op default. Models,
// file caches and servers capture their hooks when constructed, so
// register hooks before building those.
//
// # Usage
//
//	observability.SetModelHooks(&myModelHooks{})
//	observability.SetStoreHooks(&myStoreHooks{})
//
// [LogHooks] turns every event into a debug log line; the CLI registers it
// under --verbose:
//
//	observability.SetAll(observability.NewLogHooks(logger))
//
// Libraries emit events through the accessors:
//
//	observability.Store().OnLoad(ctx, "redis", name, size, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Model Hooks
// =============================================================================

// ModelHooks receives events from graph model operations. Model operations
// are synchronous and take no context.
type ModelHooks interface {
	// OnOperationStart records the start of a mutation at the given depth.
	OnOperationStart(op string, depth int)

	// OnOperationComplete records the end of a mutation.
	OnOperationComplete(op string, depth int, duration time.Duration, err error)

	// OnPropagate records a subgraph written back into its parent frame.
	OnPropagate(depth int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document stores.
type StoreHooks interface {
	// OnLoad records a document read.
	OnLoad(ctx context.Context, backend, name string, size int, duration time.Duration, err error)

	// OnSave records a document write.
	OnSave(ctx context.Context, backend, name string, size int, duration time.Duration, err error)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP API.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopModelHooks is a no-op implementation of ModelHooks.
type NoopModelHooks struct{}

func (NoopModelHooks) OnOperationStart(string, int)                          {}
func (NoopModelHooks) OnOperationComplete(string, int, time.Duration, error) {}
func (NoopModelHooks) OnPropagate(int)                                       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	modelHooks ModelHooks = NoopModelHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetModelHooks registers custom model hooks.
// Models created afterwards without explicit hooks use them.
func SetModelHooks(h ModelHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		modelHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Model returns the registered model hooks.
func Model() ModelHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return modelHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	modelHooks = NoopModelHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
	httpHooks = NoopHTTPHooks{}
}
