package entity

import (
	"context"
	"fmt"
	"iter"

	"k8s.io/apimachinery/pkg/util/sets"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

const cdnBaseURL = "https://cdn.discordapp.com"

// GuildEmoji is a custom emoji belonging to a guild.
type GuildEmoji struct {
	resolver Resolver
	rec      *record.Emoji
	guildID  domain.Snowflake
}

// NewGuildEmoji wraps rec, which belongs to the guild guildID.
func NewGuildEmoji(rec *record.Emoji, guildID domain.Snowflake, r Resolver) *GuildEmoji {
	return &GuildEmoji{resolver: r, rec: rec, guildID: guildID}
}

func (e *GuildEmoji) Kind() domain.Kind {
	return domain.KindEmoji
}

// ID returns the emoji ID. Unicode emoji have none.
func (e *GuildEmoji) ID() (domain.Snowflake, error) {
	id, ok := e.rec.ID.Get()
	if !ok {
		return 0, &MissingIdentifierError{Kind: domain.KindEmoji}
	}
	return id, nil
}

func (e *GuildEmoji) Name() string {
	return required(domain.KindEmoji, "name", e.rec.Name)
}

// RoleIDs returns the roles this emoji is whitelisted to. No whitelist means no
// restriction and yields an empty set.
func (e *GuildEmoji) RoleIDs() sets.Set[domain.Snowflake] {
	return e.rec.Roles.Set()
}

// Roles resolves the whitelisted roles. See ResolveMany for failure semantics.
func (e *GuildEmoji) Roles(ctx context.Context, opts ...StreamOption) iter.Seq2[*Role, error] {
	return ResolveMany[*Role](ctx, e.resolver, domain.KindRole, sets.List(e.RoleIDs()), e.guildID, opts...)
}

// UserID returns the ID of the user that created the emoji. The creator is only
// present when the payload was fetched with emoji management permission.
func (e *GuildEmoji) UserID() (domain.Snowflake, bool) {
	u, ok := e.rec.User.Get()
	if !ok {
		return 0, false
	}
	return u.ID.Get()
}

// User resolves the user that created the emoji.
func (e *GuildEmoji) User(ctx context.Context) (*User, error) {
	id, ok := e.UserID()
	if !ok {
		return nil, fmt.Errorf("emoji creator: %w", ErrFieldUnset)
	}
	return ResolveOne[*User](ctx, e.resolver, domain.KindUser, id, 0)
}

// Creator wraps the creator embedded in the payload without resolving it.
func (e *GuildEmoji) Creator() (*User, bool) {
	u, ok := e.rec.User.Get()
	if !ok {
		return nil, false
	}
	return NewUser(&u, e.resolver), true
}

func (e *GuildEmoji) RequireColons() bool {
	return required(domain.KindEmoji, "require_colons", e.rec.RequireColons)
}

func (e *GuildEmoji) Managed() bool {
	return required(domain.KindEmoji, "managed", e.rec.Managed)
}

func (e *GuildEmoji) Animated() bool {
	return required(domain.KindEmoji, "animated", e.rec.Animated)
}

// Available reports whether the emoji can be used; it may be false when the
// guild lost boosts. Unset on payloads that predate the field.
func (e *GuildEmoji) Available() (bool, bool) {
	return e.rec.Available.Get()
}

func (e *GuildEmoji) GuildID() domain.Snowflake {
	return e.guildID
}

// Guild resolves the guild this emoji belongs to.
func (e *GuildEmoji) Guild(ctx context.Context) (*Guild, error) {
	return ResolveOne[*Guild](ctx, e.resolver, domain.KindGuild, e.guildID, 0)
}

// Mention returns the message markup that renders the emoji.
func (e *GuildEmoji) Mention() string {
	id, ok := e.rec.ID.Get()
	if !ok {
		return e.Name()
	}
	if e.Animated() {
		return fmt.Sprintf("<a:%s:%s>", e.Name(), id)
	}
	return fmt.Sprintf("<:%s:%s>", e.Name(), id)
}

// ImageURL returns the CDN URL of the emoji image, or "" for unicode emoji.
func (e *GuildEmoji) ImageURL() string {
	id, ok := e.rec.ID.Get()
	if !ok {
		return ""
	}
	ext := "png"
	if e.Animated() {
		ext = "gif"
	}
	return fmt.Sprintf("%s/emojis/%s.%s", cdnBaseURL, id, ext)
}
