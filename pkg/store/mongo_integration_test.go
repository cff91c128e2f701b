//go:build integration

package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// Run with: HIERNET_TEST_MONGO=mongodb://localhost:27017 go test -tags integration ./pkg/store
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("HIERNET_TEST_MONGO")
	if uri == "" {
		t.Skip("HIERNET_TEST_MONGO not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoOptions{
		URI:        uri,
		Database:   "hiernet_test",
		Collection: fmt.Sprintf("documents_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("NewMongoStore error: %v", err)
	}
	defer s.Close()
	t.Cleanup(func() { _ = s.coll.Drop(ctx) })
	exerciseStore(t, s)
}
