package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"discordcore/pkg/domain"
)

const emojiPayload = `{
	"id": "41771983429993937",
	"name": "LUL",
	"roles": ["41771983429993000", "41771983429993111"],
	"user": {"id": "96008815106887111", "username": "Luigi", "discriminator": "0002", "avatar": null},
	"require_colons": true,
	"managed": false,
	"animated": false
}`

func TestDecodeEmoji(t *testing.T) {
	t.Run("complete payload", func(t *testing.T) {
		rec, err := DecodeEmoji([]byte(emojiPayload))
		require.NoError(t, err)

		id, ok := rec.Identifier()
		require.True(t, ok)
		assert.Equal(t, domain.Snowflake(41771983429993937), id)

		name, _ := rec.Name.Get()
		assert.Equal(t, "LUL", name)
		assert.True(t, rec.Roles.Set().HasAll(41771983429993000, 41771983429993111))
		assert.Equal(t, 2, rec.Roles.Len())

		user, ok := rec.User.Get()
		require.True(t, ok)
		_, hasAvatar := user.Avatar.Get()
		assert.False(t, hasAvatar, "null avatar decodes as unset")

		_, hasAvailable := rec.Available.Get()
		assert.False(t, hasAvailable)
	})

	t.Run("absent roles yield an empty set", func(t *testing.T) {
		rec, err := DecodeEmoji([]byte(`{"id":"1","name":"a","require_colons":true,"managed":false,"animated":false}`))
		require.NoError(t, err)
		assert.False(t, rec.Roles.IsSet())
		assert.NotNil(t, rec.Roles.Set())
		assert.Equal(t, 0, rec.Roles.Set().Len())
	})

	t.Run("empty roles are set but empty", func(t *testing.T) {
		rec, err := DecodeEmoji([]byte(`{"id":"1","name":"a","roles":[],"require_colons":true,"managed":false,"animated":false}`))
		require.NoError(t, err)
		assert.True(t, rec.Roles.IsSet())
		assert.Equal(t, 0, rec.Roles.Set().Len())
	})

	t.Run("identifier-less emoji decodes", func(t *testing.T) {
		rec, err := DecodeEmoji([]byte(`{"id":null,"name":"🔥","require_colons":false,"managed":false,"animated":false}`))
		require.NoError(t, err)
		_, ok := rec.Identifier()
		assert.False(t, ok)
	})

	t.Run("missing required field fails at decode", func(t *testing.T) {
		_, err := DecodeEmoji([]byte(`{"id":"1","name":"a","require_colons":true,"animated":false}`))
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, domain.KindEmoji, de.Kind)
		assert.Equal(t, "managed", de.Field)
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("null required field fails at decode", func(t *testing.T) {
		_, err := DecodeEmoji([]byte(`{"id":"1","name":null,"require_colons":true,"managed":false,"animated":false}`))
		assert.ErrorIs(t, err, ErrMissingField)
	})

	t.Run("invalid nested user reports the path", func(t *testing.T) {
		_, err := DecodeEmoji([]byte(`{"id":"1","name":"a","user":{"id":"2","discriminator":"0001"},"require_colons":true,"managed":false,"animated":false}`))
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "user.username", de.Field)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodeEmoji([]byte(`{"id":`))
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Empty(t, de.Field)
	})

	t.Run("wrong field type", func(t *testing.T) {
		_, err := DecodeEmoji([]byte(`{"id":"1","name":"a","roles":"nope","require_colons":true,"managed":false,"animated":false}`))
		require.Error(t, err)
	})
}

func TestDecodeRoles(t *testing.T) {
	t.Run("permissions as string or number", func(t *testing.T) {
		roles, err := DecodeRoles([]byte(`[
			{"id":"10","name":"mods","color":3447003,"hoist":true,"position":1,"permissions":"66321471","managed":false,"mentionable":true},
			{"id":"11","name":"old","color":0,"hoist":false,"position":2,"permissions":8,"managed":true,"mentionable":false}
		]`))
		require.NoError(t, err)
		require.Len(t, roles, 2)

		perms, _ := roles[0].Permissions.Get()
		assert.Equal(t, Permissions(66321471), perms)
		perms, _ = roles[1].Permissions.Get()
		assert.True(t, perms.Has(8))
	})

	t.Run("invalid element fails the whole list", func(t *testing.T) {
		_, err := DecodeRoles([]byte(`[{"id":"10","name":"mods"}]`))
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "[0].color", de.Field)
	})
}

func TestDecodeGuild(t *testing.T) {
	t.Run("embedded records are validated", func(t *testing.T) {
		_, err := DecodeGuild([]byte(`{"id":"1","name":"g","owner_id":"2","emojis":[{"id":"3","name":"x"}]}`))
		var de *DecodeError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "emojis[0].require_colons", de.Field)
	})

	t.Run("minimal guild", func(t *testing.T) {
		g, err := DecodeGuild([]byte(`{"id":"1","name":"g","owner_id":"2","icon":"abc"}`))
		require.NoError(t, err)
		assert.Equal(t, "abc", g.Icon.OrElse(""))
		_, hasRoles := g.Roles.Get()
		assert.False(t, hasRoles)
	})
}

func TestDecode_UnknownKind(t *testing.T) {
	rec, err := Decode(domain.Kind("channel"), []byte(`{}`))
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestDecode_FailureReturnsNilInterface(t *testing.T) {
	rec, err := Decode(domain.KindUser, []byte(`{}`))
	require.Error(t, err)
	assert.True(t, rec == nil)
}

func TestEnvelope_JSON(t *testing.T) {
	rec, err := DecodeEmoji([]byte(emojiPayload))
	require.NoError(t, err)
	env := Wrap(rec, 81384788765712384)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	var decoded Envelope
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, domain.KindEmoji, decoded.Kind)
	assert.Equal(t, domain.Snowflake(81384788765712384), decoded.Parent)
	assert.Equal(t, rec, decoded.Record)

	t.Run("absent optional fields stay absent", func(t *testing.T) {
		assert.NotContains(t, string(data), "available")
	})
}

func TestRequired_Unset(t *testing.T) {
	var r Required[string]
	_, ok := r.Get()
	assert.False(t, ok)
	assert.True(t, r.IsZero())
	assert.True(t, Req("x").IsSet())
}

func TestOptional_OrElse(t *testing.T) {
	assert.Equal(t, "fallback", Optional[string]{}.OrElse("fallback"))
	assert.Equal(t, "v", Opt("v").OrElse("fallback"))
}
