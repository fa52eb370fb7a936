package domain

import (
	"testing"
)

// FuzzParseSnowflake checks that parsing never panics and that every accepted
// identifier survives a round trip through its string form.
func FuzzParseSnowflake(f *testing.F) {
	f.Add("")
	f.Add("0")
	f.Add("175928847299117063")
	f.Add("-1")
	f.Add("9223372036854775808")
	f.Add("+12")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		id, err := ParseSnowflake(input)
		if err != nil {
			return
		}
		if id.IsZero() {
			t.Fatal("zero identifier accepted")
		}
		roundTrip, err := ParseSnowflake(id.String())
		if err != nil {
			t.Fatalf("accepted identifier failed round trip: %v", err)
		}
		if roundTrip != id {
			t.Fatalf("round trip changed value: %d != %d", roundTrip, id)
		}
	})
}
