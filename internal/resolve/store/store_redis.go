package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

const defaultKeyPrefix = "discordcore:entity"

// RedisCache stores envelopes as JSON strings under prefix:kind:id so that
// several client processes can share what they have fetched.
type RedisCache struct {
	client    redis.UniversalClient
	cacheTTL  time.Duration
	keyPrefix string
}

// NewRedisCache creates a Redis-backed cache. A zero TTL stores keys without expiry.
func NewRedisCache(client redis.UniversalClient, cacheTTL time.Duration, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCache{client: client, cacheTTL: cacheTTL, keyPrefix: keyPrefix}
}

func (c *RedisCache) key(kind domain.Kind, id domain.Snowflake) string {
	return fmt.Sprintf("%s:%s:%s", c.keyPrefix, kind, id)
}

func (c *RedisCache) Get(ctx context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error) {
	data, err := c.client.Get(ctx, c.key(kind, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return record.Envelope{}, sentinel.ErrNotFound
	}
	if err != nil {
		return record.Envelope{}, fmt.Errorf("redis get %s %s: %w", kind, id, err)
	}
	var env record.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return record.Envelope{}, fmt.Errorf("decode cached %s %s: %w", kind, id, err)
	}
	return env, nil
}

func (c *RedisCache) Put(ctx context.Context, env record.Envelope) error {
	id, ok := env.ID()
	if !ok {
		return ErrNoIdentifier
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", env.Kind, id, err)
	}
	if err := c.client.Set(ctx, c.key(env.Kind, id), data, c.cacheTTL).Err(); err != nil {
		return fmt.Errorf("redis set %s %s: %w", env.Kind, id, err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, kind domain.Kind, id domain.Snowflake) error {
	if err := c.client.Del(ctx, c.key(kind, id)).Err(); err != nil {
		return fmt.Errorf("redis del %s %s: %w", kind, id, err)
	}
	return nil
}
