//go:build integration
// +build integration

package app

import (
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/domain/corpus"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/require"
)

// TestServices holds all application services and dependencies for testing
type TestServices struct {
	// Corpus services
	CorpusMetadataService corpus.MetadataService
	AnnotationService     corpus.AnnotationService

	// Pipeline and model services
	PipelineService      PipelineService
	TrainingService      textgen.TrainingService
	EvaluationService    textgen.EvaluationService
	ModelMetadataService textgen.MetadataService

	// Infrastructure
	DBContext *persistence.TestContext
}

// SetupTestServices initializes all application services for integration tests
func SetupTestServices(t *testing.T, dbType string) *TestServices {
	t.Helper()

	logger := testutil.SetupTestLogger(t)

	// Setup database
	dbContext := persistence.SetupTestDB(t, dbType)

	corpusMetadataService, err := NewCorpusMetadataService(dbContext.DocumentRepo, dbContext.AnnotationRepo, logger)
	require.NoError(t, err, "Failed to create corpus MetadataService")

	annotationService, err := NewAnnotationService(dbContext.DocumentRepo, dbContext.AnnotationRepo, logger)
	require.NoError(t, err, "Failed to create AnnotationService")

	pipelineService, err := NewPipelineService(logger)
	require.NoError(t, err, "Failed to create PipelineService")

	trainingService, err := NewTrainingService(dbContext.ModelRepo, logger)
	require.NoError(t, err, "Failed to create TrainingService")

	evaluationService, err := NewEvaluationService(logger)
	require.NoError(t, err, "Failed to create EvaluationService")

	modelMetadataService, err := NewModelMetadataService(dbContext.ModelRepo, logger)
	require.NoError(t, err, "Failed to create model MetadataService")

	return &TestServices{
		CorpusMetadataService: corpusMetadataService,
		AnnotationService:     annotationService,
		PipelineService:       pipelineService,
		TrainingService:       trainingService,
		EvaluationService:     evaluationService,
		ModelMetadataService:  modelMetadataService,
		DBContext:             dbContext,
	}
}
