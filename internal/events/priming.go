// Package events keeps the entity cache warm from gateway updates relayed
// over Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"discordcore/internal/platform/kafka/consumer"
	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

// Op is the kind of change an event carries.
type Op string

const (
	OpUpsert Op = "upsert"
	OpDelete Op = "delete"
)

// Event is the JSON message published by gateway relays.
type Event struct {
	Op     Op               `json:"op"`
	Kind   domain.Kind      `json:"kind"`
	Parent domain.Snowflake `json:"parent,omitzero"`
	ID     domain.Snowflake `json:"id,omitzero"`
	Data   json.RawMessage  `json:"data,omitempty"`
}

// Cache is the part of the resolution context the handler writes to.
type Cache interface {
	Prime(ctx context.Context, env record.Envelope) error
	Invalidate(ctx context.Context, kind domain.Kind, id domain.Snowflake) error
}

// PrimingHandler applies entity events to the cache. Entities already handed
// out keep their record; the next resolution sees the new one.
type PrimingHandler struct {
	cache  Cache
	logger *slog.Logger
}

var _ consumer.Handler = (*PrimingHandler)(nil)

func NewPrimingHandler(cache Cache, logger *slog.Logger) *PrimingHandler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PrimingHandler{cache: cache, logger: logger}
}

// Handle applies one message. Malformed messages are logged and skipped so
// they are committed rather than redelivered; cache failures are returned.
func (h *PrimingHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var ev Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		h.skip(ctx, msg, "undecodable event", err)
		return nil
	}
	if !ev.Kind.Valid() {
		h.skip(ctx, msg, "unknown kind", fmt.Errorf("kind %q", ev.Kind))
		return nil
	}

	switch ev.Op {
	case OpUpsert:
		return h.upsert(ctx, msg, ev)
	case OpDelete:
		if ev.ID.IsZero() {
			h.skip(ctx, msg, "delete without id", nil)
			return nil
		}
		if err := h.cache.Invalidate(ctx, ev.Kind, ev.ID); err != nil {
			return fmt.Errorf("evict %s %s: %w", ev.Kind, ev.ID, err)
		}
		h.logger.DebugContext(ctx, "evicted entity", "kind", ev.Kind, "id", ev.ID)
		return nil
	default:
		h.skip(ctx, msg, "unknown op", fmt.Errorf("op %q", ev.Op))
		return nil
	}
}

func (h *PrimingHandler) upsert(ctx context.Context, msg *consumer.Message, ev Event) error {
	rec, err := record.Decode(ev.Kind, ev.Data)
	if err != nil {
		h.skip(ctx, msg, "invalid record", err)
		return nil
	}
	if id, ok := rec.Identifier(); !ok || (!ev.ID.IsZero() && id != ev.ID) {
		h.skip(ctx, msg, "record identifier does not match event", nil)
		return nil
	}
	if (ev.Kind == domain.KindEmoji || ev.Kind == domain.KindRole) && ev.Parent.IsZero() {
		h.skip(ctx, msg, "scoped record without parent", nil)
		return nil
	}

	envs := []record.Envelope{record.Wrap(rec, ev.Parent)}
	if guild, ok := rec.(*record.Guild); ok {
		envs = append(envs, guildChildren(guild)...)
	}
	for _, env := range envs {
		if err := h.cache.Prime(ctx, env); err != nil {
			id, _ := env.ID()
			return fmt.Errorf("prime %s %s: %w", env.Kind, id, err)
		}
	}
	h.logger.DebugContext(ctx, "primed entities", "kind", ev.Kind, "count", len(envs))
	return nil
}

// guildChildren scopes the roles and custom emojis embedded in a guild
// payload so they can be cached on their own.
func guildChildren(g *record.Guild) []record.Envelope {
	guildID, _ := g.ID.Get()
	var envs []record.Envelope
	roles, _ := g.Roles.Get()
	for i := range roles {
		envs = append(envs, record.Wrap(&roles[i], guildID))
	}
	emojis, _ := g.Emojis.Get()
	for i := range emojis {
		if emojis[i].ID.IsSet() {
			envs = append(envs, record.Wrap(&emojis[i], guildID))
		}
	}
	return envs
}

func (h *PrimingHandler) skip(ctx context.Context, msg *consumer.Message, reason string, err error) {
	h.logger.WarnContext(ctx, "skipping entity event",
		"reason", reason,
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"error", err,
	)
}
