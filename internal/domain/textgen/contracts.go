package textgen

import (
	"context"
	"fmt"

	"github.com/JayHzn/ai-story-generator/internal/pkg/validators"

	"github.com/go-playground/validator/v10"
)

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	Prompt      string  `validate:"required,min=1"`
	MaxTokens   int     `validate:"omitempty,min=1,max=4096"`
	Temperature float64 `validate:"omitempty,min=0,max=2"`
	TopK        int     `validate:"omitempty,min=0"`
	TopP        float64 `validate:"omitempty,min=0,max=1"`
}

// Validate for validating GenerateRequest struct
func (r *GenerateRequest) Validate() error {
	validate := validator.New()

	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validation failed for GenerateRequest: %w", err)
	}

	return nil
}

// GenerateResult is the outcome of a generation call.
type GenerateResult struct {
	Prompt     string
	Completion string
	TokensUsed int
}

// TrainRequest describes one training run over a prepared dataset.
type TrainRequest struct {
	Name          string  `validate:"required,min=1,max=255"`
	DatasetDir    string  `validate:"required"`
	TokenizerPath string  `validate:"required"`
	OutputDir     string  `validate:"required"`
	EmbedDim      int     `validate:"required,min=8"`
	NumHeads      int     `validate:"required,min=1,head_division"`
	NumLayers     int     `validate:"required,min=1"`
	Epochs        int     `validate:"required,min=1"`
	BatchSize     int     `validate:"required,min=1"`
	LearningRate  float64 `validate:"required,gt=0"`
}

// Validate for validating TrainRequest struct
func (r *TrainRequest) Validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("head_division", validators.HeadDivisionValidation); err != nil {
		return fmt.Errorf("failed to register validator: %w", err)
	}

	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("validation failed for TrainRequest: %w", err)
	}

	return nil
}

// GenerationService defines methods for producing text from a trained model.
type GenerationService interface {
	// Generate produces a completion for the request prompt.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// GenerateStream produces a completion token by token. The emit callback
	// receives each decoded token; returning an error aborts generation.
	GenerateStream(ctx context.Context, req *GenerateRequest, emit func(token string) error) error
}

// TrainingService defines methods for training models on prepared datasets.
type TrainingService interface {
	// Train runs a full training job and registers the resulting checkpoint.
	Train(ctx context.Context, req *TrainRequest) (*ModelMeta, error)
}

// EvaluationService defines methods for scoring trained models.
type EvaluationService interface {
	// Perplexity computes exp(mean cross-entropy) over the validation split
	// of the dataset a model was trained on.
	Perplexity(ctx context.Context, checkpointPath, datasetDir string) (float64, error)

	// BLEU scores generated candidates against reference texts.
	BLEU(ctx context.Context, candidates, references []string) (float64, error)
}

// MetadataService defines read/delete access to registered models.
type MetadataService interface {
	// List retrieves model metadata considering a query filter when set.
	List(ctx context.Context, query *ModelMetaQuery) ([]*ModelMeta, error)

	// GetByID retrieves model metadata by ID.
	GetByID(ctx context.Context, modelID string) (*ModelMeta, error)

	// DeleteByID deletes model metadata by ID.
	DeleteByID(ctx context.Context, modelID string) error
}

// ModelRepository defines the interface for ModelMeta-related operations
type ModelRepository interface {
	// Create adds a new ModelMeta to the database
	Create(ctx context.Context, meta *ModelMeta) error
	// List lists ModelMetas in the database with optional filter
	List(ctx context.Context, query *ModelMetaQuery) ([]*ModelMeta, error)
	// GetByID retrieves a ModelMeta from the database by ID
	GetByID(ctx context.Context, modelID string) (*ModelMeta, error)
	// DeleteByID deletes a ModelMeta in the database by ID
	DeleteByID(ctx context.Context, modelID string) error
}
