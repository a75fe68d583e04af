package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const outboxKeyPrefix = "outbox:"

// OutboxRepository keeps messages for sessions that had no live connection.
type OutboxRepository interface {
	Push(ctx context.Context, sessionID, text string) error
	// Drain returns all pending messages in delivery order and removes them.
	Drain(ctx context.Context, sessionID string) ([]string, error)
}

type dbOutbox struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOutboxRepository(client *redis.Client, ttl time.Duration) OutboxRepository {
	return &dbOutbox{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbOutbox) Push(ctx context.Context, sessionID, text string) error {
	key := outboxKeyPrefix + sessionID

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, text)
		if that.ttl > 0 {
			pipe.Expire(ctx, key, that.ttl)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push message: %w", err)
	}

	return nil
}

func (that *dbOutbox) Drain(ctx context.Context, sessionID string) ([]string, error) {
	key := outboxKeyPrefix + sessionID

	var messages *redis.StringSliceCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		messages = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to drain messages: %w", err)
	}

	return messages.Val(), nil
}
