package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("lock redis unavailable")

// releaseLua deletes KEYS[1] only while it still holds our token.
var releaseLua = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

// RedisLocker implements Locker with SET NX PX leases. The TTL bounds how
// long a crashed holder can block other replicas.
type RedisLocker struct {
	redis   redis.UniversalClient
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

func NewRedisLocker(client redis.UniversalClient, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{
		redis:   client,
		ttl:     ttl,
		wait:    wait,
		backoff: 25 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, key, token, deadline); err != nil {
			l.release(context.WithoutCancel(ctx), held, token)
			return nil, err
		}
		held = append(held, key)
	}

	return func() {
		l.release(context.WithoutCancel(ctx), held, token)
	}, nil
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string, deadline time.Time) error {
	for {
		ok, err := l.redis.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}

		timer := time.NewTimer(l.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *RedisLocker) release(ctx context.Context, keys []string, token string) {
	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseLua.Run(ctx, l.redis, []string{keys[i]}, token).Err(); err != nil {
			logger.WarnContext(ctx, "Failed to release identity lock", "key", keys[i], "error", err)
		}
	}
}
