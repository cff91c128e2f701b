package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug line on a charmbracelet logger.
// It implements all hook interfaces, so one value can be registered
// everywhere with [SetAll].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log through l with a "hook" prefix.
func NewLogHooks(l *log.Logger) LogHooks {
	return LogHooks{Logger: l.WithPrefix("hook")}
}

// SetAll registers h for model, cache, store and HTTP events.
func SetAll(h LogHooks) {
	SetModelHooks(h)
	SetCacheHooks(h)
	SetStoreHooks(h)
	SetHTTPHooks(h)
}

func (h LogHooks) OnOperationStart(op string, depth int) {
	h.Logger.Debug("operation start", "op", op, "depth", depth)
}

func (h LogHooks) OnOperationComplete(op string, depth int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("operation failed", "op", op, "depth", depth, "took", d, "err", err)
		return
	}
	h.Logger.Debug("operation done", "op", op, "depth", depth, "took", d)
}

func (h LogHooks) OnPropagate(depth int) {
	h.Logger.Debug("propagate", "depth", depth)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnLoad(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	h.storeEvent("load", backend, name, size, d, err)
}

func (h LogHooks) OnSave(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	h.storeEvent("save", backend, name, size, d, err)
}

func (h LogHooks) storeEvent(op, backend, name string, size int, d time.Duration, err error) {
	kv := []any{"backend", backend, "document", name, "bytes", size, "took", d}
	if err != nil {
		kv = append(kv, "err", err)
	}
	h.Logger.Debug("store "+op, kv...)
}

func (h LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "path", path, "status", status, "took", d)
}
