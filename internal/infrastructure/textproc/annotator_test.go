//go:build unit
// +build unit

package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentence",
			input:    "Bonjour le monde",
			expected: []string{"Bonjour", "le", "monde"},
		},
		{
			name:     "apostrophe splits clitic",
			input:    "l'homme c'était",
			expected: []string{"l", "homme", "c", "était"},
		},
		{
			name:     "intra-word hyphen kept",
			input:    "peut-être demain",
			expected: []string{"peut-être", "demain"},
		},
		{
			name:     "punctuation dropped",
			input:    "Oui ! Non ? Peut-être...",
			expected: []string{"Oui", "Non", "Peut-être"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := Tokenize(tt.input)
			if tt.expected == nil {
				assert.Empty(t, tokens)
			} else {
				assert.Equal(t, tt.expected, tokens)
			}
		})
	}
}

func TestAnnotate_CountsSentences(t *testing.T) {
	stats := Annotate("Il pleut. Le vent souffle ! Vraiment ?")

	assert.Equal(t, 3, stats.Sentences)
}

func TestAnnotate_EllipsisCountsOnce(t *testing.T) {
	stats := Annotate("Il hésita... puis partit.")

	assert.Equal(t, 2, stats.Sentences)
}

func TestAnnotate_TokenStatistics(t *testing.T) {
	stats := Annotate("le chat et le chien")

	assert.Equal(t, 5, stats.Tokens)
	// Types: le, chat, et, chien
	assert.InDelta(t, 0.8, stats.TypeTokenRatio, 1e-9)
	// Stopwords: le, et, le
	assert.InDelta(t, 0.6, stats.StopwordRatio, 1e-9)
}

func TestAnnotate_EmptyText(t *testing.T) {
	stats := Annotate("")

	assert.Equal(t, 0, stats.Tokens)
	assert.Equal(t, 0, stats.Sentences)
	assert.Equal(t, 0.0, stats.TypeTokenRatio)
	assert.Equal(t, 0.0, stats.StopwordRatio)
}
