// Package lock serializes shift mutations of one owner across server
// instances with a Redis lock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/DrkBotBase/delivery"
)

const (
	keyPrefix     = "shift-owner"
	defaultTTL    = 30 * time.Second
	retryInterval = 50 * time.Millisecond
	retryLimit    = 40
)

type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 20,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis %s: %w", addr, err)
	}

	return rdb, nil
}

func NewRedisLocker(rdb *redis.Client, logger *logrus.Logger) *RedisLocker {
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    defaultTTL,
		logger: logger,
	}
}

// Lock waits up to two seconds for the owner's lock. The returned release
// func must be called once the mutation is done.
func (l *RedisLocker) Lock(ctx context.Context, ownerID string) (func(), error) {
	key := fmt.Sprintf("%s:%s", keyPrefix, ownerID)

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(retryInterval), retryLimit),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, &delivery.Error{
			Code:    delivery.ECONFLICT,
			Message: "Another shift operation is in progress",
			Err:     err,
			Fields:  map[string]interface{}{"owner_id": ownerID},
		}
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// the request context may already be done
		err := lock.Release(context.Background())
		if err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.logger.WithError(err).WithField("key", key).Warn("could not release owner lock")
		}
	}, nil
}
