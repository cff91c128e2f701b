package store

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/hiernet/pkg/errors"
)

// DefaultRedisPrefix namespaces document keys.
const DefaultRedisPrefix = "hiernet:doc:"

// RedisOptions configures [NewRedisStore].
type RedisOptions struct {
	Addr     string // defaults to localhost:6379
	Password string
	DB       int
	Prefix   string // defaults to DefaultRedisPrefix
}

// RedisStore keeps each document in a hash with fields "data" and
// "updated_at" under <prefix><name>.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
// [Open] retries it while the server comes up.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to redis at %s", opts.Addr)
	}
	return NewRedisStoreFromClient(client, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store owns the
// client and closes it on Close.
func NewRedisStoreFromClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(name string) string { return s.prefix + name }

func (s *RedisStore) Load(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateDocumentName(name); err != nil {
		return nil, err
	}
	data, err := s.client.HGet(ctx, s.key(name), "data").Bytes()
	if err == redis.Nil {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load %s", name)
	}
	return data, nil
}

func (s *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	err := s.client.HSet(ctx, s.key(name),
		"data", data,
		"updated_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save %s", name)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateDocumentName(name); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(name)).Result()
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "delete %s", name)
	}
	if n == 0 {
		return notFound(name)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "scan documents")
	}

	type fields struct {
		size    *redis.IntCmd
		updated *redis.StringCmd
	}
	cmds := make([]fields, len(keys))
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = fields{size: p.HStrLen(ctx, k, "data"), updated: p.HGet(ctx, k, "updated_at")}
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list documents")
	}

	out := make([]Info, 0, len(keys))
	for i, k := range keys {
		info := Info{Name: strings.TrimPrefix(k, s.prefix), Size: int(cmds[i].size.Val())}
		if ts, err := time.Parse(time.RFC3339Nano, cmds[i].updated.Val()); err == nil {
			info.UpdatedAt = ts
		}
		out = append(out, info)
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
