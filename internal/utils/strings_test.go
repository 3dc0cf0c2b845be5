package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "wildcard",
			input:    "*",
			expected: []string{"*"},
		},
		{
			name:     "two origins",
			input:    "http://localhost:3000, https://minty.example.com",
			expected: []string{"http://localhost:3000", "https://minty.example.com"},
		},
		{
			name:     "varied spacing",
			input:    "a,  b , c",
			expected: []string{"a", "b", "c"},
		},
		{
			name:     "only separators",
			input:    " , ,, ",
			expected: nil,
		},
		{
			name:     "trailing comma",
			input:    "http://localhost:8080,",
			expected: []string{"http://localhost:8080"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseCSV(tt.input))
		})
	}
}
