package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	readyTimeout  = 10 * time.Second
	retryInterval = 250 * time.Millisecond
)

// Connect opens a Redis client for the connection URL and pings it until it
// becomes ready or the timeout elapses.
func Connect(ctx context.Context, connURL string) (*redis.Client, error) {
	if connURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(connURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	client := redis.NewClient(opts)

	deadline := time.Now().Add(readyTimeout)
	for {
		pingCtx, cancel := context.WithTimeout(ctx, retryInterval)
		err = client.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return client, nil
		}

		if time.Now().After(deadline) || ctx.Err() != nil {
			_ = client.Close()
			return nil, errors.Join(ErrRedisNotReady, err)
		}
		time.Sleep(retryInterval)
	}
}

// Healthcheck returns a probe suitable for periodic liveness checks.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
