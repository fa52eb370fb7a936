package entity

import (
	"context"
	"errors"
	"iter"
	"slices"

	"golang.org/x/sync/errgroup"

	"discordcore/pkg/domain"
)

// DefaultConcurrency bounds the resolutions a single stream runs at once.
const DefaultConcurrency = 8

// FailurePolicy decides what a stream does after an element fails.
type FailurePolicy int

const (
	// FailFast yields the first failure and ends the stream. Resolutions not
	// yet started are never started.
	FailFast FailurePolicy = iota
	// CollectAll yields every failure and keeps resolving the rest.
	CollectAll
)

type streamConfig struct {
	policy      FailurePolicy
	concurrency int
}

// StreamOption configures ResolveMany.
type StreamOption func(*streamConfig)

func WithPolicy(p FailurePolicy) StreamOption {
	return func(c *streamConfig) {
		c.policy = p
	}
}

// WithConcurrency sets how many identifiers resolve in parallel. Values below 1 are ignored.
func WithConcurrency(n int) StreamOption {
	return func(c *streamConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

type result[T any] struct {
	value T
	err   error
}

// ResolveMany returns a lazy sequence resolving each identifier to a T.
//
// Nothing happens until the sequence is ranged over. Elements arrive in
// completion order, not input order. Under FailFast (the default) the first
// failure is yielded and the sequence ends; breaking out of the loop has the
// same effect. Stopping cancels this stream's outstanding resolutions, which
// the resolver may still complete for other callers.
func ResolveMany[T Entity](
	ctx context.Context,
	r Resolver,
	kind domain.Kind,
	ids []domain.Snowflake,
	parent domain.Snowflake,
	opts ...StreamOption,
) iter.Seq2[T, error] {
	cfg := streamConfig{policy: FailFast, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}
	ids = slices.Clone(ids)

	return func(yield func(T, error) bool) {
		var zero T
		if len(ids) == 0 {
			return
		}
		if err := ctx.Err(); err != nil {
			yield(zero, err)
			return
		}

		streamCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		results := make(chan result[T])
		g, gctx := errgroup.WithContext(streamCtx)
		g.SetLimit(cfg.concurrency)

		go func() {
			defer close(results)
			for _, id := range ids {
				if gctx.Err() != nil {
					break
				}
				g.Go(func() error {
					if gctx.Err() != nil {
						return nil
					}
					v, err := ResolveOne[T](gctx, r, kind, id, parent)
					select {
					case results <- result[T]{value: v, err: err}:
					case <-streamCtx.Done():
						return nil
					}
					if err != nil && cfg.policy == FailFast {
						return err
					}
					return nil
				})
			}
			_ = g.Wait()
		}()

		delivered := 0
		for res := range results {
			delivered++
			if !yield(res.value, res.err) {
				return
			}
			if res.err != nil && cfg.policy == FailFast {
				return
			}
		}
		// A caller cancellation can drop elements before they are sent.
		if delivered < len(ids) {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
			}
		}
	}
}

// Collect drains seq. Successful elements are returned even when some failed;
// failures are joined into the returned error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var (
		out  []T
		errs []error
	)
	for v, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, v)
	}
	return out, errors.Join(errs...)
}
