package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Model hooks
	m := NoopModelHooks{}
	m.OnOperationStart("fold", 2)
	m.OnOperationComplete("fold", 2, time.Millisecond, nil)
	m.OnPropagate(1)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "render")
	c.OnCacheMiss(ctx, "render")
	c.OnCacheSet(ctx, "render", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnLoad(ctx, "file", "plant", 512, time.Millisecond, nil)
	s.OnSave(ctx, "redis", "plant", 512, time.Millisecond, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/documents/plant")
	h.OnResponse(ctx, "GET", "/documents/plant", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Model().(NoopModelHooks); !ok {
		t.Error("Model() should return NoopModelHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customModel := &testModelHooks{}
	SetModelHooks(customModel)
	if Model() != customModel {
		t.Error("SetModelHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Model().(NoopModelHooks); !ok {
		t.Error("Reset() should restore NoopModelHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testModelHooks{}
	SetModelHooks(custom)

	// Setting nil should be ignored
	SetModelHooks(nil)

	if Model() != custom {
		t.Error("SetModelHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testModelHooks struct{ NoopModelHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestLogHooks(t *testing.T) {
	defer Reset()
	var buf bytes.Buffer
	l := log.New(&buf)
	l.SetLevel(log.DebugLevel)

	SetAll(NewLogHooks(l))
	ctx := context.Background()
	Model().OnOperationComplete("fold", 1, time.Millisecond, nil)
	Cache().OnCacheMiss(ctx, "render")
	Store().OnSave(ctx, "file", "plant", 42, time.Millisecond, errors.New("disk full"))
	HTTP().OnResponse(ctx, "GET", "/documents", 200, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"hook", "operation done", "cache miss", "store save", "disk full", "status=200"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
