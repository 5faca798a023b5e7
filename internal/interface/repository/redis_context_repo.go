package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jshah-ind/travelbot/internal/domain/entity"
	"github.com/jshah-ind/travelbot/internal/domain/repository"

	"github.com/facebookgo/clock"
	"github.com/redis/go-redis/v9"
)

const defaultContextKeyPrefix = "travelbot:context:"

// RedisContextRepository stores contexts as JSON strings with a native
// key TTL, so expired contexts disappear without a sweep.
type RedisContextRepository struct {
	client redis.UniversalClient
	clock  clock.Clock
	prefix string
}

// NewRedisContextRepository creates a redis backed context repository
func NewRedisContextRepository(client redis.UniversalClient, clk clock.Clock, prefix string) repository.ContextRepository {
	if prefix == "" {
		prefix = defaultContextKeyPrefix
	}
	return &RedisContextRepository{
		client: client,
		clock:  clk,
		prefix: prefix,
	}
}

func (r *RedisContextRepository) key(ownerKey string) string {
	return r.prefix + ownerKey
}

func (r *RedisContextRepository) Get(ctx context.Context, ownerKey string) (*entity.ConversationContext, error) {
	data, err := r.client.Get(ctx, r.key(ownerKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get context for %s: %w", ownerKey, err)
	}

	var c entity.ConversationContext
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to decode context for %s: %w", ownerKey, err)
	}
	return &c, nil
}

func (r *RedisContextRepository) Save(ctx context.Context, c *entity.ConversationContext) error {
	ttl := c.ExpiresAt.Sub(r.clock.Now())
	if ttl <= 0 {
		return r.Delete(ctx, c.OwnerKey)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode context for %s: %w", c.OwnerKey, err)
	}
	if err := r.client.Set(ctx, r.key(c.OwnerKey), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save context for %s: %w", c.OwnerKey, err)
	}
	return nil
}

func (r *RedisContextRepository) Delete(ctx context.Context, ownerKey string) error {
	if err := r.client.Del(ctx, r.key(ownerKey)).Err(); err != nil {
		return fmt.Errorf("failed to delete context for %s: %w", ownerKey, err)
	}
	return nil
}

// DeleteExpired is a no-op; redis evicts expired keys itself.
func (r *RedisContextRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
