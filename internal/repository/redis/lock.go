package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPrefix = "lock:"

// releaseScript deletes the lock only if it still holds our token, so an
// instance whose lease expired cannot release someone else's lock
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Locker hands out advisory locks shared by every service instance
type Locker struct {
	client *Client
}

// NewLocker creates a new advisory locker
func NewLocker(client *Client) *Locker {
	return &Locker{client: client}
}

// TryLock attempts to take key for ttl without waiting. When acquired is
// false another holder owns the lock and release is nil.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error) {
	fullKey := lockPrefix + key
	token := uuid.New().String()

	ok, err := l.client.rdb.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}
		return nil
	}
	return release, true, nil
}
