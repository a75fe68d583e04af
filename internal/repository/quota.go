package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	quotaKeyPrefix = "quota:"
	quotaKeyTTL    = 48 * time.Hour
)

// QuotaRepository counts calls to a rate-limited API per UTC day.
type QuotaRepository interface {
	// Used returns how many calls were spent on the day of now.
	Used(ctx context.Context, name string, now time.Time) (int, error)
	// Spend records one call and returns the new total for the day.
	Spend(ctx context.Context, name string, now time.Time) (int, error)
	// Exhaust marks the day's quota as spent.
	Exhaust(ctx context.Context, name string, now time.Time, limit int) error
}

type dbQuota struct {
	client *redis.Client
}

func NewQuotaRepository(client *redis.Client) QuotaRepository {
	return &dbQuota{client: client}
}

func (that *dbQuota) Used(ctx context.Context, name string, now time.Time) (int, error) {
	used, err := that.client.Get(ctx, quotaKey(name, now)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get quota: %w", err)
	}

	return used, nil
}

func (that *dbQuota) Spend(ctx context.Context, name string, now time.Time) (int, error) {
	key := quotaKey(name, now)

	var incr *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, quotaKeyTTL)

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to spend quota: %w", err)
	}

	return int(incr.Val()), nil
}

func (that *dbQuota) Exhaust(ctx context.Context, name string, now time.Time, limit int) error {
	if err := that.client.Set(ctx, quotaKey(name, now), limit, quotaKeyTTL).Err(); err != nil {
		return fmt.Errorf("failed to exhaust quota: %w", err)
	}

	return nil
}

func quotaKey(name string, now time.Time) string {
	return quotaKeyPrefix + name + ":" + now.UTC().Format(time.DateOnly)
}
