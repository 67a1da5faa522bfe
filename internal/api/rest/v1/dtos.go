package v1

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the JSON body returned on failed requests.
type ErrorResponse struct {
	Message string `json:"message"`
}

// InfoResponse is the JSON body returned on informational responses.
type InfoResponse struct {
	Message string `json:"message"`
}

// GenerateTextRequest is the request body for generation endpoints.
type GenerateTextRequest struct {
	Prompt      string  `json:"prompt" validate:"required,min=1"`
	MaxTokens   int     `json:"max_tokens" validate:"omitempty,min=1,max=4096"`
	Temperature float64 `json:"temperature" validate:"omitempty,min=0,max=2"`
	TopK        int     `json:"top_k" validate:"omitempty,min=0"`
	TopP        float64 `json:"top_p" validate:"omitempty,min=0,max=1"`
}

// Validate for validating GenerateTextRequest struct
func (r *GenerateTextRequest) Validate() error {
	validate := validator.New()

	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validation failed for GenerateTextRequest: %w", err)
	}

	return nil
}

// GenerateTextResponse is the response body of the generate endpoint.
type GenerateTextResponse struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	TokensUsed int    `json:"tokens_used"`
}

// StreamChunk is one element of the chunked generation stream.
type StreamChunk struct {
	Token string `json:"token,omitempty"`
	Done  bool   `json:"done,omitempty"`
}

// ModelMetaResponse describes one registered model.
type ModelMetaResponse struct {
	ID              string    `json:"id"`
	DateTimeCreated time.Time `json:"date_time_created"`
	Name            string    `json:"name"`
	VocabSize       int       `json:"vocab_size"`
	SeqLen          int       `json:"seq_len"`
	EmbedDim        int       `json:"embed_dim"`
	NumHeads        int       `json:"num_heads"`
	NumLayers       int       `json:"num_layers"`
	Parameters      int64     `json:"parameters"`
	FinalLoss       float64   `json:"final_loss"`
}

// DocumentResponse describes one collected corpus document. Content is only
// set when a single document is fetched by id.
type DocumentResponse struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	Title       string    `json:"title,omitempty"`
	Genre       string    `json:"genre,omitempty"`
	CollectedAt time.Time `json:"collected_at"`
	Bytes       int       `json:"bytes"`
	Content     string    `json:"content,omitempty"`
}
