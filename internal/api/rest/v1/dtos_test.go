//go:build unit
// +build unit

package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTextRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request GenerateTextRequest
		wantErr bool
	}{
		{
			name:    "valid minimal request",
			request: GenerateTextRequest{Prompt: "Il était une fois"},
			wantErr: false,
		},
		{
			name: "valid full request",
			request: GenerateTextRequest{
				Prompt:      "La nuit tombait sur Paris",
				MaxTokens:   128,
				Temperature: 0.8,
				TopK:        40,
				TopP:        0.95,
			},
			wantErr: false,
		},
		{
			name:    "missing prompt",
			request: GenerateTextRequest{MaxTokens: 32},
			wantErr: true,
		},
		{
			name:    "max tokens above limit",
			request: GenerateTextRequest{Prompt: "Bonjour", MaxTokens: 8192},
			wantErr: true,
		},
		{
			name:    "temperature above limit",
			request: GenerateTextRequest{Prompt: "Bonjour", Temperature: 3.0},
			wantErr: true,
		},
		{
			name:    "top_p above one",
			request: GenerateTextRequest{Prompt: "Bonjour", TopP: 1.5},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.request.Validate()
			if test.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
