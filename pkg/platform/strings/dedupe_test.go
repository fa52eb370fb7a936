package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "empty", input: []string{}, expected: []string{}},
		{name: "trims", input: []string{" k1:9092 ", "k2:9092\t"}, expected: []string{"k1:9092", "k2:9092"}},
		{name: "first occurrence wins", input: []string{"b", "a", "b", " a"}, expected: []string{"b", "a"}},
		{name: "drops blanks", input: []string{"", "  ", "a"}, expected: []string{"a"}},
		{name: "case sensitive", input: []string{"Topic", "topic"}, expected: []string{"Topic", "topic"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}
