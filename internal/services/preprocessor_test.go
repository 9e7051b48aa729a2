package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses whitespace", "  Wireless   Headphones ", "Wireless Headphones"},
		{"keeps single words", "Books", "Books"},
		{"composes decomposed unicode", "Café", "Café"},
		{"empty input", "", ""},
		{"tabs and newlines", "Smart\tHome\nHub", "Smart Home Hub"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}
