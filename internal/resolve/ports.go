package resolve

import (
	"context"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Fetcher retrieves one record from the network. Implementations return
// *FetchError so failures can be classified; a confirmed absence must use
// CategoryNotFound so it is never mistaken for a transient failure.
type Fetcher interface {
	Fetch(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (record.Envelope, error)
}

// Store caches envelopes keyed by kind and identifier. Get returns
// sentinel.ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, kind domain.Kind, id domain.Snowflake) (record.Envelope, error)
	Put(ctx context.Context, env record.Envelope) error
	Delete(ctx context.Context, kind domain.Kind, id domain.Snowflake) error
}
