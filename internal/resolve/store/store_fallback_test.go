package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/circuit"
	"discordcore/pkg/platform/sentinel"
)

var errDown = errors.New("connection refused")

// flakyCache wraps an in-memory cache and fails every call while down is set.
type flakyCache struct {
	*InMemoryCache
	down bool
}

func (f *flakyCache) Get(ctx context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error) {
	if f.down {
		return record.Envelope{}, errDown
	}
	return f.InMemoryCache.Get(ctx, kind, id)
}

func (f *flakyCache) Put(ctx context.Context, env record.Envelope) error {
	if f.down {
		return errDown
	}
	return f.InMemoryCache.Put(ctx, env)
}

func (f *flakyCache) Delete(ctx context.Context, kind domain.Kind, id domain.Snowflake) error {
	if f.down {
		return errDown
	}
	return f.InMemoryCache.Delete(ctx, kind, id)
}

func newFallback(threshold int) (*FallbackCache, *flakyCache, *InMemoryCache, *circuit.Breaker) {
	primary := &flakyCache{InMemoryCache: NewInMemoryCache(0)}
	local := NewInMemoryCache(0)
	breaker := circuit.New("redis", circuit.WithFailureThreshold(threshold), circuit.WithSuccessThreshold(2))
	return NewFallbackCache(primary, local, breaker, nil), primary, local, breaker
}

func TestFallbackCache_HealthyPrimary(t *testing.T) {
	ctx := context.Background()
	c, primary, local, _ := newFallback(2)

	require.NoError(t, c.Put(ctx, userEnvelope(1, "a")))
	assert.Equal(t, 1, primary.Len())
	assert.Equal(t, 0, local.Len(), "fallback unused while closed")

	_, err := c.Get(ctx, domain.KindUser, 1)
	require.NoError(t, err)
	_, err = c.Get(ctx, domain.KindUser, 2)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestFallbackCache_OutageAndRecovery(t *testing.T) {
	ctx := context.Background()
	c, primary, local, breaker := newFallback(2)
	primary.down = true

	// below threshold the failure surfaces
	assert.ErrorIs(t, c.Put(ctx, userEnvelope(1, "a")), errDown)
	assert.False(t, breaker.IsOpen())

	// the failure that opens the breaker is absorbed by the fallback
	require.NoError(t, c.Put(ctx, userEnvelope(1, "a")))
	assert.True(t, breaker.IsOpen())
	assert.Equal(t, 1, local.Len())

	_, err := c.Get(ctx, domain.KindUser, 1)
	require.NoError(t, err, "served by fallback")

	primary.down = false
	// primary answers a miss, but the entry written during the outage is still found
	_, err = c.Get(ctx, domain.KindUser, 1)
	require.NoError(t, err)
	assert.True(t, breaker.IsOpen())

	_, _ = c.Get(ctx, domain.KindUser, 1)
	assert.False(t, breaker.IsOpen(), "closed after two primary successes")
}

func TestFallbackCache_DeleteReachesBoth(t *testing.T) {
	ctx := context.Background()
	c, primary, local, _ := newFallback(1)
	require.NoError(t, primary.Put(ctx, userEnvelope(1, "a")))
	require.NoError(t, local.Put(ctx, userEnvelope(1, "a")))

	require.NoError(t, c.Delete(ctx, domain.KindUser, 1))
	assert.Equal(t, 0, primary.Len())
	assert.Equal(t, 0, local.Len())

	primary.down = true
	assert.NoError(t, c.Delete(ctx, domain.KindUser, 1), "breaker opens on first failure")
}
