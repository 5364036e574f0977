package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"booking-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// only the owner may delete the key
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

type RedisLocker struct {
	rdb     *redis.Client
	log     *zap.Logger
	retry   time.Duration
	maxWait time.Duration
}

func NewRedisLocker(rdb *redis.Client, log *zap.Logger) *RedisLocker {
	return &RedisLocker{
		rdb:     rdb,
		log:     log.With(zap.String("component", "lock")),
		retry:   50 * time.Millisecond,
		maxWait: 5 * time.Second,
	}
}

// Acquire sets key with NX and a ttl, polling until it succeeds, the context
// is done or maxWait elapses.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	owner, err := utils.GeneratePaymentToken()
	if err != nil {
		return nil, fmt.Errorf("generate lock owner: %w", err)
	}

	deadline := time.Now().Add(l.maxWait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, owner, ttl).Result()
		if err != nil {
			l.log.Error("Failed to acquire lock", zap.String("key", key), zap.Error(err))
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-time.After(l.retry):
		}
	}

	var once sync.Once
	release := func(ctx context.Context) error {
		var relErr error
		once.Do(func() {
			if err := releaseScript.Run(ctx, l.rdb, []string{key}, owner).Err(); err != nil {
				l.log.Warn("Failed to release lock", zap.String("key", key), zap.Error(err))
				relErr = fmt.Errorf("release lock %s: %w", key, err)
			}
		})
		return relErr
	}

	return release, nil
}
