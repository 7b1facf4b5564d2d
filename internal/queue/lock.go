package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld means another worker is currently processing a message for the
// same sender. The caller requeues without consuming a retry attempt.
var ErrLockHeld = errors.New("user lock held")

// UserLock serializes message processing per sender across workers. A lease
// in Redis, keyed by (channel, sender), held for the duration of one message.
type UserLock interface {
	Acquire(ctx context.Context, channel, senderID string) (release func(), err error)
}

type redisUserLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisUserLock(client *redis.Client, ttl time.Duration) UserLock {
	return &redisUserLock{client: client, ttl: ttl}
}

func (l *redisUserLock) Acquire(ctx context.Context, channel, senderID string) (func(), error) {
	key := fmt.Sprintf("intake:user-lock:%s:%s", channel, senderID)

	ok, err := l.client.SetNX(ctx, key, "1", l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring user lock: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	release := func() {
		// Best-effort. The TTL reclaims the lease if the delete is lost.
		_ = l.client.Del(context.WithoutCancel(ctx), key).Err()
	}
	return release, nil
}
