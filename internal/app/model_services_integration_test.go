//go:build integration
// +build integration

package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/dataset"
	"github.com/JayHzn/ai-story-generator/internal/pkg/config"
	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestCorpus writes a tiny repetitive corpus that trains in seconds.
func writeTestCorpus(t *testing.T, dir string) {
	t.Helper()

	text := strings.Repeat("Le chat dort sur le canapé. La nuit tombe sur la ville.\n\n", 40)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "corpus.txt"), []byte(text), 0644))
}

// prepareTestDataset runs the pipeline end to end and returns the dataset
// directory and tokenizer path.
func prepareTestDataset(t *testing.T, services *TestServices) (string, string) {
	t.Helper()
	ctx := context.Background()

	rawDir := t.TempDir()
	cleanDir := t.TempDir()
	datasetDir := t.TempDir()
	tokenizerPath := filepath.Join(t.TempDir(), "tokenizer.txt")

	writeTestCorpus(t, rawDir)

	stats, err := services.PipelineService.CleanCorpus(ctx, rawDir, cleanDir)
	require.NoError(t, err)
	require.Len(t, stats, 1)

	vocabSize, err := services.PipelineService.TrainTokenizer(ctx, cleanDir, 300, tokenizerPath)
	require.NoError(t, err)
	require.Greater(t, vocabSize, 259)

	manifest, err := services.PipelineService.BuildDataset(ctx, cleanDir, tokenizerPath, dataset.BuildOptions{
		SeqLen:      16,
		Stride:      8,
		ValFraction: 0.1,
	}, datasetDir)
	require.NoError(t, err)
	require.Greater(t, manifest.TrainExamples, 0)
	require.Greater(t, manifest.ValExamples, 0)

	return datasetDir, tokenizerPath
}

func trainTestModel(t *testing.T, services *TestServices) *textgen.ModelMeta {
	t.Helper()

	datasetDir, tokenizerPath := prepareTestDataset(t, services)

	meta, err := services.TrainingService.Train(context.Background(), &textgen.TrainRequest{
		Name:          "conteur-test",
		DatasetDir:    datasetDir,
		TokenizerPath: tokenizerPath,
		OutputDir:     t.TempDir(),
		EmbedDim:      16,
		NumHeads:      2,
		NumLayers:     1,
		Epochs:        1,
		BatchSize:     8,
		LearningRate:  1e-3,
	})
	require.NoError(t, err)
	return meta
}

func TestTrainingService_Train(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	meta := trainTestModel(t, services)

	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, "conteur-test", meta.Name)
	assert.Equal(t, 16, meta.SeqLen)
	assert.Greater(t, meta.Parameters, int64(0))
	assert.Greater(t, meta.FinalLoss, 0.0)
	assert.FileExists(t, meta.CheckpointPath)
	assert.FileExists(t, meta.TokenizerPath)

	// The model was registered
	stored, err := services.ModelMetadataService.GetByID(context.Background(), meta.ID)
	require.NoError(t, err)
	assert.Equal(t, meta.Name, stored.Name)
}

func TestTrainingService_Train_InvalidRequest(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	_, err := services.TrainingService.Train(context.Background(), &textgen.TrainRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestGenerationService_Generate(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	meta := trainTestModel(t, services)

	generationService, err := NewGenerationService(meta.CheckpointPath, meta.TokenizerPath, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	result, err := generationService.Generate(context.Background(), &textgen.GenerateRequest{
		Prompt:    "Le chat",
		MaxTokens: 8,
	})
	require.NoError(t, err)

	assert.Equal(t, "Le chat", result.Prompt)
	assert.LessOrEqual(t, result.TokensUsed, 8)
}

func TestGenerationService_GenerateStream(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	meta := trainTestModel(t, services)

	generationService, err := NewGenerationService(meta.CheckpointPath, meta.TokenizerPath, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	var tokens []string
	err = generationService.GenerateStream(context.Background(), &textgen.GenerateRequest{
		Prompt:    "La nuit",
		MaxTokens: 5,
	}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(tokens), 5)
}

func TestGenerationService_InvalidRequest(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	meta := trainTestModel(t, services)

	generationService, err := NewGenerationService(meta.CheckpointPath, meta.TokenizerPath, testutil.SetupTestLogger(t))
	require.NoError(t, err)

	_, err = generationService.Generate(context.Background(), &textgen.GenerateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestNewGenerationService_MissingCheckpoint(t *testing.T) {
	_, err := NewGenerationService(filepath.Join(t.TempDir(), "nope.ckpt"), filepath.Join(t.TempDir(), "nope.txt"), testutil.SetupTestLogger(t))
	assert.Error(t, err)
}

func TestEvaluationService_Perplexity(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	meta := trainTestModel(t, services)

	datasetDir, _ := prepareTestDataset(t, services)

	ppl, err := services.EvaluationService.Perplexity(context.Background(), meta.CheckpointPath, datasetDir)
	require.NoError(t, err)
	assert.Greater(t, ppl, 1.0)
}

func TestEvaluationService_BLEU(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)

	score, err := services.EvaluationService.BLEU(context.Background(),
		[]string{"le chat dort sur le canapé rouge"},
		[]string{"le chat dort sur le canapé rouge"})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-12)

	_, err = services.EvaluationService.BLEU(context.Background(), nil, nil)
	require.Error(t, err)

	_, err = services.EvaluationService.BLEU(context.Background(), []string{"a"}, []string{"a", "b"})
	require.Error(t, err)
}

func TestModelMetadataService_ListAndDelete(t *testing.T) {
	services := SetupTestServices(t, config.SqliteDbType)
	ctx := context.Background()
	meta := trainTestModel(t, services)

	query := textgen.NewModelMetaQuery()
	query.Name = "conteur"
	metas, err := services.ModelMetadataService.List(ctx, query)
	require.NoError(t, err)
	require.Len(t, metas, 1)

	require.NoError(t, services.ModelMetadataService.DeleteByID(ctx, meta.ID))

	_, err = services.ModelMetadataService.GetByID(ctx, meta.ID)
	require.Error(t, err)
}
