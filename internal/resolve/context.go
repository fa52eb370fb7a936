// Package resolve turns identifiers into entities: cache first, network on a
// miss, with at most one fetch in flight per key.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"discordcore/internal/entity"
	"discordcore/internal/record"
	"discordcore/internal/resolve/metrics"
	"discordcore/pkg/domain"
	"discordcore/pkg/platform/sentinel"
)

// DefaultFetchTimeout bounds a shared fetch once no caller can cancel it.
const DefaultFetchTimeout = 30 * time.Second

// Context is the session-wide resolver. It is safe for concurrent use and is
// meant to be created once at startup and shared by every entity it produces.
type Context struct {
	fetcher      Fetcher
	store        Store
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	fetchTimeout time.Duration
	flights      singleflight.Group
}

var _ entity.Resolver = (*Context)(nil)

// Option configures a Context.
type Option func(*Context)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Context) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Context) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithFetchTimeout bounds each network fetch. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Context) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// New builds a Context fetching through fetcher and caching in store.
func New(fetcher Fetcher, store Store, opts ...Option) *Context {
	c := &Context{
		fetcher:      fetcher,
		store:        store,
		logger:       slog.New(slog.DiscardHandler),
		tracer:       otel.Tracer("discordcore/internal/resolve"),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func flightKey(kind domain.Kind, id domain.Snowflake) string {
	return string(kind) + ":" + id.String()
}

// Resolve returns the entity for (kind, id). A cache hit returns without any
// network activity. On a miss, concurrent callers for the same key share one
// fetch and receive the same entity or the same *ResolutionFailure. A caller
// whose ctx ends stops waiting, but the shared fetch runs to completion and
// populates the cache. Failures are not cached and never retried here.
func (c *Context) Resolve(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (entity.Entity, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, kind)
	}
	if id.IsZero() {
		return nil, fmt.Errorf("%w: zero %s identifier", ErrInvalidRequest, kind)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if ent, ok := c.cached(ctx, kind, id, parent); ok {
		c.metrics.IncrementCacheHit(kind)
		return ent, nil
	}
	c.metrics.IncrementCacheMiss(kind)

	shared := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(flightKey(kind, id), func() (any, error) {
		return c.fetch(shared, kind, id, parent)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.IncrementCoalesced(kind)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(entity.Entity), nil
	case <-ctx.Done():
		c.logger.DebugContext(ctx, "caller stopped waiting for shared fetch",
			"kind", kind,
			"id", id,
			"error", ctx.Err(),
		)
		return nil, ctx.Err()
	}
}

// cached looks the key up in the store. Store failures are logged and treated
// as a miss: the cache is an optimization, not a source of truth.
func (c *Context) cached(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (entity.Entity, bool) {
	env, err := c.store.Get(ctx, kind, id)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			c.metrics.IncrementCacheError(kind, "get")
			c.logger.WarnContext(ctx, "cache read failed",
				"kind", kind,
				"id", id,
				"error", err,
			)
		}
		return nil, false
	}
	ent, err := c.wrap(env, parent)
	if err != nil {
		c.logger.WarnContext(ctx, "discarding unusable cache entry",
			"kind", kind,
			"id", id,
			"error", err,
		)
		return nil, false
	}
	return ent, true
}

func (c *Context) wrap(env record.Envelope, parent domain.Snowflake) (entity.Entity, error) {
	if env.Parent.IsZero() {
		env.Parent = parent
	}
	return entity.New(env, c)
}

func (c *Context) fetch(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (entity.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	// A flight that started after another one stored the key finds it here.
	if ent, ok := c.cached(ctx, kind, id, parent); ok {
		return ent, nil
	}

	ctx, span := c.tracer.Start(ctx, "resolve.fetch", trace.WithAttributes(
		attribute.String("entity.kind", kind.String()),
		attribute.String("entity.id", id.String()),
	))
	defer span.End()

	start := time.Now()
	env, err := c.fetcher.Fetch(ctx, kind, id, parent)
	if err == nil {
		err = checkEnvelope(env, kind, id)
	}
	var ent entity.Entity
	if err == nil {
		if env.Parent.IsZero() {
			env.Parent = parent
		}
		ent, err = entity.New(env, c)
		if err != nil {
			err = NewFetchError(CategoryBadData, "unusable record", err)
		}
	}
	if err != nil {
		failure := newFailure(kind, id, err)
		c.metrics.ObserveFetch(kind, string(failure.Category), time.Since(start))
		span.RecordError(failure)
		span.SetStatus(codes.Error, string(failure.Category))
		c.logger.WarnContext(ctx, "fetch failed",
			"kind", kind,
			"id", id,
			"category", failure.Category,
			"retryable", failure.Retryable,
			"error", err,
		)
		return nil, failure
	}
	c.metrics.ObserveFetch(kind, "ok", time.Since(start))

	if err := c.store.Put(ctx, env); err != nil {
		c.metrics.IncrementCacheError(kind, "put")
		c.logger.WarnContext(ctx, "cache write failed",
			"kind", kind,
			"id", id,
			"error", err,
		)
	}
	c.logger.DebugContext(ctx, "fetched entity",
		"kind", kind,
		"id", id,
		"duration", time.Since(start),
	)
	return ent, nil
}

func checkEnvelope(env record.Envelope, kind domain.Kind, id domain.Snowflake) error {
	if env.Record == nil || env.Kind != kind {
		return NewFetchError(CategoryBadData, fmt.Sprintf("expected %s record, got %q", kind, env.Kind), nil)
	}
	got, ok := env.ID()
	if !ok || got != id {
		return NewFetchError(CategoryBadData, fmt.Sprintf("expected %s %s, got %s", kind, id, got), nil)
	}
	return nil
}

// Invalidate drops the cached record for (kind, id) so the next Resolve fetches it.
func (c *Context) Invalidate(ctx context.Context, kind domain.Kind, id domain.Snowflake) error {
	return c.store.Delete(ctx, kind, id)
}

// Prime stores a record obtained elsewhere, such as a gateway event.
func (c *Context) Prime(ctx context.Context, env record.Envelope) error {
	return c.store.Put(ctx, env)
}
