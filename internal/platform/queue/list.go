package queue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when the wait timed out without a message.
var ErrEmpty = errors.New("queue empty")

// List is a FIFO queue backed by a redis list (LPUSH + BRPOP).
type List struct {
	rdb  *redis.Client
	name string
	wait time.Duration
}

// NewList returns a queue named name. Pop blocks for at most wait.
func NewList(rdb *redis.Client, name string, wait time.Duration) *List {
	return &List{rdb: rdb, name: name, wait: wait}
}

func (l *List) Push(ctx context.Context, payload string) error {
	return l.rdb.LPush(ctx, l.name, payload).Err()
}

// Requeue puts a payload back at the consuming end.
func (l *List) Requeue(ctx context.Context, payload string) error {
	return l.rdb.RPush(ctx, l.name, payload).Err()
}

func (l *List) Pop(ctx context.Context) (string, error) {
	res, err := l.rdb.BRPop(ctx, l.wait, l.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrEmpty
		}
		return "", err
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return "", ErrEmpty
	}
	return res[1], nil
}
