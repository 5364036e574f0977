package lock

import (
	"context"
	"errors"
	"time"
)

// ErrNotAcquired is returned when the lock is still held by someone else
// after the caller's context or wait budget ran out.
var ErrNotAcquired = errors.New("lock not acquired")

// ReleaseFunc gives the lock back. It is safe to call more than once.
type ReleaseFunc func(ctx context.Context) error

// Locker serializes short critical sections across API instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}

// NoopLocker grants every lock immediately. Used when Redis is not configured;
// the database exclusion constraint still rejects overlapping units.
type NoopLocker struct{}

func (NoopLocker) Acquire(context.Context, string, time.Duration) (ReleaseFunc, error) {
	return func(context.Context) error { return nil }, nil
}
