package store

import (
	"context"
	"errors"
	"log/slog"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/circuit"
	"discordcore/pkg/platform/sentinel"
)

// Cache is the store contract shared by every backend.
type Cache interface {
	Get(ctx context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error)
	Put(ctx context.Context, env record.Envelope) error
	Delete(ctx context.Context, kind domain.Kind, id domain.Snowflake) error
}

// FallbackCache serves from a shared primary (Redis) and switches to a local
// fallback while the breaker is open. The primary keeps being probed so the
// breaker can close again.
type FallbackCache struct {
	primary  Cache
	fallback Cache
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFallbackCache(primary, fallback Cache, breaker *circuit.Breaker, logger *slog.Logger) *FallbackCache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FallbackCache{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (c *FallbackCache) Get(ctx context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error) {
	env, err := c.primary.Get(ctx, kind, id)
	if err == nil || errors.Is(err, sentinel.ErrNotFound) {
		if c.success(ctx) {
			return env, err
		}
		// still probing: the fallback may hold entries written during the outage
		if err != nil {
			return c.fallback.Get(ctx, kind, id)
		}
		return env, nil
	}
	if c.failure(ctx, err) {
		return c.fallback.Get(ctx, kind, id)
	}
	return record.Envelope{}, err
}

func (c *FallbackCache) Put(ctx context.Context, env record.Envelope) error {
	if c.breaker.IsOpen() {
		if err := c.fallback.Put(ctx, env); err != nil {
			return err
		}
	}
	if err := c.primary.Put(ctx, env); err != nil {
		if c.failure(ctx, err) {
			return c.fallback.Put(ctx, env)
		}
		return err
	}
	c.success(ctx)
	return nil
}

// Delete evicts from both stores so a recovered primary and the fallback
// never disagree about a removed entity.
func (c *FallbackCache) Delete(ctx context.Context, kind domain.Kind, id domain.Snowflake) error {
	fallbackErr := c.fallback.Delete(ctx, kind, id)
	if err := c.primary.Delete(ctx, kind, id); err != nil {
		if c.failure(ctx, err) {
			return fallbackErr
		}
		return err
	}
	c.success(ctx)
	return fallbackErr
}

func (c *FallbackCache) success(ctx context.Context) bool {
	usePrimary, change := c.breaker.RecordSuccess()
	if change.Closed {
		c.logger.InfoContext(ctx, "cache primary recovered", "breaker", c.breaker.Name())
	}
	return usePrimary
}

func (c *FallbackCache) failure(ctx context.Context, err error) bool {
	useFallback, change := c.breaker.RecordFailure()
	if change.Opened {
		c.logger.WarnContext(ctx, "cache primary failing, switching to fallback",
			"breaker", c.breaker.Name(),
			"error", err,
		)
	}
	return useFallback
}
