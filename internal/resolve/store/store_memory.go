package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

// ErrNoIdentifier is returned when storing a record that carries no ID.
var ErrNoIdentifier = errors.New("record has no identifier")

type key struct {
	kind domain.Kind
	id   domain.Snowflake
}

type cachedEnvelope struct {
	env      record.Envelope
	storedAt time.Time
}

// InMemoryCache keeps envelopes in a map guarded by an RWMutex. Entries older
// than the TTL are treated as missing; a zero TTL keeps entries forever.
type InMemoryCache struct {
	mu       sync.RWMutex
	entries  map[key]cachedEnvelope
	cacheTTL time.Duration
	now      func() time.Time
}

// NewInMemoryCache creates an in-memory cache with the specified TTL.
func NewInMemoryCache(cacheTTL time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries:  make(map[key]cachedEnvelope),
		cacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Get returns the envelope for (kind, id), or sentinel.ErrNotFound when it is
// absent or expired.
func (c *InMemoryCache) Get(_ context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if cached, ok := c.entries[key{kind, id}]; ok {
		if c.cacheTTL == 0 || c.now().Sub(cached.storedAt) < c.cacheTTL {
			return cached.env, nil
		}
	}
	return record.Envelope{}, sentinel.ErrNotFound
}

// Put stores env, replacing any previous envelope for the same key.
func (c *InMemoryCache) Put(_ context.Context, env record.Envelope) error {
	id, ok := env.ID()
	if !ok {
		return ErrNoIdentifier
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key{env.Kind, id}] = cachedEnvelope{env: env, storedAt: c.now()}
	return nil
}

func (c *InMemoryCache) Delete(_ context.Context, kind domain.Kind, id domain.Snowflake) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key{kind, id})
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *InMemoryCache) Sweep() int {
	if c.cacheTTL == 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	dropped := 0
	now := c.now()
	for k, cached := range c.entries {
		if now.Sub(cached.storedAt) >= c.cacheTTL {
			delete(c.entries, k)
			dropped++
		}
	}
	return dropped
}
