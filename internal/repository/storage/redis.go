package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const connectTimeout = 30 * time.Second

// New connects to Redis, retrying with exponential backoff until it answers PING.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectTimeout

	ping := func() error {
		return conn.Ping(ctx).Err()
	}

	if err := backoff.Retry(ping, backoff.WithContext(policy, ctx)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}
