package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

var ErrLockHeld = errors.New("lock is held by another owner")

// Locker hands out single-attempt distributed mutexes.
type Locker struct {
	rs *redsync.Redsync
}

func NewLocker(r Redis) *Locker {
	return &Locker{
		rs: redsync.New(goredis.NewPool(r.RDB())),
	}
}

// WithLock runs fn while holding key. It returns ErrLockHeld without waiting if key is taken.
func (l *Locker) WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	mutex := l.rs.NewMutex(key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isContention(err) {
			return ErrLockHeld
		}

		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		// fn may outlive ctx; release with a fresh context.
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		_, _ = mutex.UnlockContext(unlockCtx)
	}()

	return fn(ctx)
}

func isContention(err error) bool {
	var taken *redsync.ErrTaken

	return errors.Is(err, redsync.ErrFailed) ||
		errors.As(err, &taken) ||
		strings.Contains(err.Error(), "lock already taken")
}
