package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still carries our value.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker hands out short-lived exclusive locks (SET NX PX).
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLocker(rdb *redis.Client, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl}
}

// Acquire tries once to take key. On success the returned release func must
// be called; it reports whether the lock was still held at release time.
func (l *Locker) Acquire(ctx context.Context, key string) (release func(context.Context) (bool, error), ok bool, err error) {
	value := uuid.NewString()
	ok, err = l.rdb.SetNX(ctx, key, value, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	return func(ctx context.Context) (bool, error) {
		deleted, err := releaseScript.Run(ctx, l.rdb, []string{key}, value).Int64()
		if err != nil {
			return false, err
		}
		return deleted == 1, nil
	}, true, nil
}
