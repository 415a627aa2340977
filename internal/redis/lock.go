package redisclient

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/clinic-local-store/internal/storage"
)

var (
	ErrLockNotAcquired = errors.New("blob lock not acquired")
)

// Locker guards a read-modify-write on one blob key across processes.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type redisKeyLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKeyLocker creates a locker that uses a per blob Redis key
func NewRedisKeyLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisKeyLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisKeyLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := fmt.Sprintf("lock:blob:%s", key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return storage.Wrap("acquire blob lock", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		if err := l.release(context.WithoutCancel(ctx), lockKey, token); err != nil {
			log.Printf("lock=%s release failed, expires in %s: %v", lockKey, l.ttl, err)
		}
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisKeyLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release blob lock: %w", err)
	}
	return nil
}
