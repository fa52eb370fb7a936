package entity

import (
	"fmt"

	"discordcore/internal/record"
	"discordcore/pkg/domain"
)

// User is a Discord user.
type User struct {
	resolver Resolver
	rec      *record.User
}

func NewUser(rec *record.User, r Resolver) *User {
	return &User{resolver: r, rec: rec}
}

func (u *User) Kind() domain.Kind {
	return domain.KindUser
}

func (u *User) ID() (domain.Snowflake, error) {
	id, ok := u.rec.ID.Get()
	if !ok {
		return 0, &MissingIdentifierError{Kind: domain.KindUser}
	}
	return id, nil
}

func (u *User) Username() string {
	return required(domain.KindUser, "username", u.rec.Username)
}

func (u *User) Discriminator() string {
	return required(domain.KindUser, "discriminator", u.rec.Discriminator)
}

// Tag returns the username#discriminator form.
func (u *User) Tag() string {
	return u.Username() + "#" + u.Discriminator()
}

// Avatar returns the avatar hash, unset for users with the default avatar.
func (u *User) Avatar() (string, bool) {
	return u.rec.Avatar.Get()
}

func (u *User) Bot() bool {
	return u.rec.Bot.OrElse(false)
}

// AvatarURL returns the CDN URL of the user's avatar, or "" when unset.
func (u *User) AvatarURL() string {
	hash, ok := u.rec.Avatar.Get()
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s/avatars/%s/%s.png", cdnBaseURL, required(domain.KindUser, "id", u.rec.ID), hash)
}

func (u *User) Mention() string {
	return fmt.Sprintf("<@%s>", required(domain.KindUser, "id", u.rec.ID))
}
