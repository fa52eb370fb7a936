package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnowflake(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Snowflake
		wantErr error
	}{
		{"empty string", "", 0, ErrEmptyID},
		{"zero", "0", 0, ErrInvalidID},
		{"negative", "-42", 0, ErrInvalidID},
		{"not a number", "abc", 0, ErrInvalidID},
		{"overflows 63 bits", "18446744073709551615", 0, ErrInvalidID},
		{"whitespace", " 42 ", 0, ErrInvalidID},
		{"oversized input", strings.Repeat("9", 100), 0, ErrInvalidID},
		{"small value", "1", 1, nil},
		{"real identifier", "175928847299117063", 175928847299117063, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSnowflake(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnowflake_Ordering(t *testing.T) {
	a, b := Snowflake(1), Snowflake(2)

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 0, a.Compare(Snowflake(1)))

	ids := []Snowflake{30, 10, 20}
	slices.SortFunc(ids, Snowflake.Compare)
	assert.Equal(t, []Snowflake{10, 20, 30}, ids)
}

func TestSnowflake_Timestamp(t *testing.T) {
	id := MustParseSnowflake("175928847299117063")
	want := time.Date(2016, time.April, 30, 11, 18, 25, 796_000_000, time.UTC)
	assert.Equal(t, want, id.Timestamp())
}

func TestSnowflake_JSON(t *testing.T) {
	t.Run("encodes as string", func(t *testing.T) {
		data, err := json.Marshal(Snowflake(41771983423143937))
		require.NoError(t, err)
		assert.JSONEq(t, `"41771983423143937"`, string(data))
	})

	t.Run("decodes string and number forms", func(t *testing.T) {
		var fromString, fromNumber Snowflake
		require.NoError(t, json.Unmarshal([]byte(`"41771983423143937"`), &fromString))
		require.NoError(t, json.Unmarshal([]byte(`41771983423143937`), &fromNumber))
		assert.Equal(t, Snowflake(41771983423143937), fromString)
		assert.Equal(t, fromString, fromNumber)
	})

	t.Run("rejects null and garbage", func(t *testing.T) {
		var id Snowflake
		assert.ErrorIs(t, json.Unmarshal([]byte(`null`), &id), ErrInvalidID)
		assert.ErrorIs(t, json.Unmarshal([]byte(`"nope"`), &id), ErrInvalidID)
		assert.ErrorIs(t, json.Unmarshal([]byte(`true`), &id), ErrInvalidID)
	})

	t.Run("decodes inside slices", func(t *testing.T) {
		var ids []Snowflake
		require.NoError(t, json.Unmarshal([]byte(`["1","2"]`), &ids))
		assert.Equal(t, []Snowflake{1, 2}, ids)
	})
}

func TestKind_Valid(t *testing.T) {
	for _, k := range Kinds {
		assert.True(t, k.Valid(), k)
	}
	assert.False(t, Kind("channel").Valid())
	assert.False(t, Kind("").Valid())
}
