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
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "trims repository urls",
			input:    []string{"  https://github.com/eclipse/a  ", "https://github.com/eclipse/b "},
			expected: []string{"https://github.com/eclipse/a", "https://github.com/eclipse/b"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"b", "a", "b", "c", "a"},
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "removes empty strings",
			input:    []string{"", "a", "  "},
			expected: []string{"a"},
		},
		{
			name:     "preserves case",
			input:    []string{"Repo", "repo"},
			expected: []string{"Repo", "repo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty(" ", ""))
	assert.Equal(t, "https://site.example", FirstNonEmpty("", " https://site.example ", "https://fallback.example"))
}
