// Package entity wraps decoded records in typed entities.
//
// Accessors over the record are synchronous and never block. Accessors that
// follow a relationship take a context and go through a Resolver, which owns
// caching, coalescing and network access; entities never perform I/O themselves.
// An entity's record is never mutated: fresher data means a new entity.
package entity

import (
	"context"
	"fmt"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

// Entity is the common surface of every wrapped record.
type Entity interface {
	Kind() domain.Kind
	ID() (domain.Snowflake, error)
}

// Resolver turns an identifier into an entity. parent is the owning scope for
// kinds whose payloads do not name it (roles and emojis) and zero otherwise.
type Resolver interface {
	Resolve(ctx context.Context, kind domain.Kind, id, parent domain.Snowflake) (Entity, error)
}

// New wraps the record held by env in the entity type matching its kind.
func New(env record.Envelope, r Resolver) (Entity, error) {
	switch rec := env.Record.(type) {
	case *record.Emoji:
		if env.Parent.IsZero() {
			return nil, fmt.Errorf("wrap emoji: %w", ErrMissingScope)
		}
		return NewGuildEmoji(rec, env.Parent, r), nil
	case *record.Role:
		if env.Parent.IsZero() {
			return nil, fmt.Errorf("wrap role: %w", ErrMissingScope)
		}
		return NewRole(rec, env.Parent, r), nil
	case *record.User:
		return NewUser(rec, r), nil
	case *record.Guild:
		return NewGuild(rec, r), nil
	case nil:
		return nil, fmt.Errorf("wrap %s: nil record", env.Kind)
	default:
		return nil, fmt.Errorf("wrap %s: %w", env.Kind, record.ErrUnknownKind)
	}
}

// ResolveOne resolves id and checks that the resolver produced a T.
func ResolveOne[T Entity](ctx context.Context, r Resolver, kind domain.Kind, id, parent domain.Snowflake) (T, error) {
	var zero T
	ent, err := r.Resolve(ctx, kind, id, parent)
	if err != nil {
		return zero, err
	}
	typed, ok := ent.(T)
	if !ok {
		return zero, &InconsistentDataError{
			Kind:   kind,
			Detail: fmt.Sprintf("resolver returned %T for %s %s", ent, kind, id),
		}
	}
	return typed, nil
}
