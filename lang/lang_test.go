package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AIConnect-rgb/aiconnct/lang"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "empty string",
			text:     "",
			expected: "en",
		},
		{
			name:     "whitespace only",
			text:     "   \n\t ",
			expected: "en",
		},
		{
			name:     "clear english",
			text:     "The city council should install solar panels on every bus stop in the downtown area this year",
			expected: "en",
		},
		{
			name:     "clear german",
			text:     "Die Stadtverwaltung sollte dieses Jahr Solarzellen über jeder Bushaltestelle in der Innenstadt anbringen",
			expected: "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lang.Detect(tt.text))
		})
	}
}

func TestSpeechTag(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected string
	}{
		{
			name:     "english",
			code:     "en",
			expected: "en-US",
		},
		{
			name:     "telugu",
			code:     "te",
			expected: "te-IN",
		},
		{
			name:     "uppercase code",
			code:     "DE",
			expected: "de-DE",
		},
		{
			name:     "unmapped code falls back",
			code:     "xx",
			expected: "en-US",
		},
		{
			name:     "empty code falls back",
			code:     "",
			expected: "en-US",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lang.SpeechTag(tt.code))
		})
	}
}
