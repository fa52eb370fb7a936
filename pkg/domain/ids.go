package domain

import (
	"bytes"
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DiscordEpoch is the first millisecond of 2015, the zero point of Snowflake timestamps.
const DiscordEpoch int64 = 1420070400000

var (
	ErrEmptyID   = errors.New("empty identifier")
	ErrInvalidID = errors.New("invalid identifier")
)

// Snowflake is the 64-bit identifier naming every entity. Zero means "no identifier".
type Snowflake uint64

// ParseSnowflake parses the decimal wire form of an identifier.
// Identifiers are always positive and fit in 63 bits.
func ParseSnowflake(s string) (Snowflake, error) {
	if s == "" {
		return 0, ErrEmptyID
	}
	id, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	if id.Int64() <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidID, s)
	}
	return Snowflake(id.Int64()), nil
}

// MustParseSnowflake is ParseSnowflake for constants and tests.
func MustParseSnowflake(s string) Snowflake {
	id, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

func (s Snowflake) IsZero() bool {
	return s == 0
}

func (s Snowflake) Compare(other Snowflake) int {
	return cmp.Compare(s, other)
}

func (s Snowflake) Less(other Snowflake) bool {
	return s < other
}

// Timestamp returns the creation time encoded in the upper 42 bits.
func (s Snowflake) Timestamp() time.Time {
	ms := int64(s>>22) + DiscordEpoch
	return time.UnixMilli(ms).UTC()
}

// MarshalJSON encodes the identifier as a string, matching the API's wire format.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts both the string and the numeric form.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null", ErrInvalidID)
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
	}
	id, err := ParseSnowflake(raw)
	if err != nil {
		return err
	}
	*s = id
	return nil
}
