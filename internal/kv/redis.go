package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-local-store/internal/storage"
)

// RedisStore keeps blobs under prefix+key. With a positive ttl every read
// and write pushes the expiry out again, so an idle session ends on its own.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var cmd *redis.StringCmd
	if s.ttl > 0 {
		cmd = s.client.GetEx(ctx, s.prefix+key, s.ttl)
	} else {
		cmd = s.client.Get(ctx, s.prefix+key)
	}

	value, err := cmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storage.Wrap("get "+key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
	return storage.Wrap("put "+key, err)
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	return storage.Wrap("delete "+key, err)
}
