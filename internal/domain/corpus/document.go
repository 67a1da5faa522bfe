package corpus

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Document entity: a single raw text collected into the corpus, either a
// downloaded Gutenberg book or a scraped web page.
type Document struct {
	ID          string    `validate:"required,uuid4"`
	Source      string    `validate:"required,min=1,max=255"`
	URL         string    `validate:"required,max=2048"`
	Title       string    `validate:"omitempty,max=255"`
	Genre       string    `validate:"omitempty,oneof=litterature_generale thriller_policier fantasy_sf"`
	CollectedAt time.Time `validate:"required"`
	Content     string    `validate:"required"`
}

// Validate for validating Document struct
func (d *Document) Validate() error {
	validate := validator.New()

	err := validate.Struct(d)
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

// DocumentQuery filters document listings.
type DocumentQuery struct {
	Source         string    `validate:"omitempty,max=255"`
	Genre          string    `validate:"omitempty,oneof=litterature_generale thriller_policier fantasy_sf"`
	CollectedAfter time.Time `validate:"omitempty"`

	SortBy    string `validate:"omitempty,oneof=source genre collected_at"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
	Limit     int    `validate:"omitempty,min=1,max=500"`
	Offset    int    `validate:"omitempty,min=0"`
}

// NewDocumentQuery creates a query with default pagination.
func NewDocumentQuery() *DocumentQuery {
	return &DocumentQuery{
		Limit:  100,
		Offset: 0,
	}
}

// Validate for validating DocumentQuery struct
func (q *DocumentQuery) Validate() error {
	validate := validator.New()

	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("validation failed for DocumentQuery: %w", err)
	}

	return nil
}
