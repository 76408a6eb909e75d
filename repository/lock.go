package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker serialises work on one key across service instances.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// Lock blocks until the key is acquired or ctx is done. The lock expires after
// ttl even if unlock is never called.
func (l *redisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return func() {
				releaseScript.Run(context.Background(), l.client, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("lock %s not acquired: %w", key, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

type nopLocker struct{}

// NewNopLocker returns a Locker that never blocks; the database row lock is
// then the only serialisation.
func NewNopLocker() Locker {
	return nopLocker{}
}

func (nopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
