package textgen

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ModelMeta entity: metadata about a trained model checkpoint.
type ModelMeta struct {
	ID              string    `validate:"required,uuid4"`
	DateTimeCreated time.Time `validate:"required"`
	Name            string    `validate:"required,min=1,max=255"`
	VocabSize       int       `validate:"required,min=1"`
	SeqLen          int       `validate:"required,min=1"`
	EmbedDim        int       `validate:"required,min=1"`
	NumHeads        int       `validate:"required,min=1"`
	NumLayers       int       `validate:"required,min=1"`
	Parameters      int64     `validate:"required,min=1"`
	FinalLoss       float64   `validate:"min=0"`
	CheckpointPath  string    `validate:"required,min=1,max=2048"`
	TokenizerPath   string    `validate:"required,min=1,max=2048"`
}

// Validate for validating ModelMeta struct
func (m *ModelMeta) Validate() error {
	validate := validator.New()

	err := validate.Struct(m)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var messages []string
			for _, fieldErr := range validationErrors {
				messages = append(messages, fmt.Sprintf("Field: %s, Tag: %s", fieldErr.Field(), fieldErr.Tag()))
			}
			return fmt.Errorf("validation failed: %v", messages)
		}
		return fmt.Errorf("validation error: %w", err)
	}

	return nil
}

// ModelMetaQuery filters model metadata listings.
type ModelMetaQuery struct {
	Name         string    `validate:"omitempty,max=255"`
	CreatedAfter time.Time `validate:"omitempty"`

	SortBy    string `validate:"omitempty,oneof=name date_time_created final_loss parameters"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
	Limit     int    `validate:"omitempty,min=1,max=500"`
	Offset    int    `validate:"omitempty,min=0"`
}

// NewModelMetaQuery creates a query with default pagination.
func NewModelMetaQuery() *ModelMetaQuery {
	return &ModelMetaQuery{
		Limit:  100,
		Offset: 0,
	}
}

// Validate for validating ModelMetaQuery struct
func (q *ModelMetaQuery) Validate() error {
	validate := validator.New()

	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("validation failed for ModelMetaQuery: %w", err)
	}

	return nil
}
