package corpus

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Annotation holds lightweight linguistic statistics computed for a document.
// The dataset builder uses these to filter degenerate documents before
// tokenization.
type Annotation struct {
	DocumentID     string    `validate:"required,uuid4"`
	Sentences      int       `validate:"min=0"`
	Tokens         int       `validate:"min=0"`
	TypeTokenRatio float64   `validate:"min=0,max=1"`
	StopwordRatio  float64   `validate:"min=0,max=1"`
	AnnotatedAt    time.Time `validate:"required"`
}

// Validate for validating Annotation struct
func (a *Annotation) Validate() error {
	validate := validator.New()

	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("validation failed for Annotation: %w", err)
	}

	return nil
}
