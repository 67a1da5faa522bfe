package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/dataset"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/model"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/tokenizer"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// trainingService implements the TrainingService interface for running
// training jobs over prepared datasets
type trainingService struct {
	modelRepo textgen.ModelRepository
	logger    logger.Logger
}

// NewTrainingService creates a new instance of TrainingService
func NewTrainingService(modelRepo textgen.ModelRepository, logger logger.Logger) (textgen.TrainingService, error) {
	return &trainingService{modelRepo: modelRepo, logger: logger}, nil
}

// Train runs a full training job and registers the resulting checkpoint
func (s *trainingService) Train(ctx context.Context, req *textgen.TrainRequest) (*textgen.ModelMeta, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	manifest, err := dataset.LoadManifest(req.DatasetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset manifest: %w", err)
	}

	trainExamples, err := dataset.LoadSplit(req.DatasetDir, dataset.TrainSplit)
	if err != nil {
		return nil, fmt.Errorf("failed to load train split: %w", err)
	}
	valExamples, err := dataset.LoadSplit(req.DatasetDir, dataset.ValSplit)
	if err != nil && manifest.ValExamples > 0 {
		return nil, fmt.Errorf("failed to load validation split: %w", err)
	}

	config := model.Config{
		VocabSize: manifest.VocabSize,
		SeqLen:    manifest.SequenceLength,
		EmbedDim:  req.EmbedDim,
		NumHeads:  req.NumHeads,
		NumLayers: req.NumLayers,
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model configuration: %w", err)
	}

	m := model.NewGPT(config)
	s.logger.Info(fmt.Sprintf("Training %s: %d parameters, %d train / %d validation examples",
		req.Name, m.NumParameters(), len(trainExamples), len(valExamples)))

	trainConfig := model.DefaultTrainingConfig()
	trainConfig.LearningRate = req.LearningRate
	trainConfig.BatchSize = req.BatchSize
	trainConfig.NumEpochs = req.Epochs

	optimizer, err := model.NewOptimizer(m.Parameters(), trainConfig)
	if err != nil {
		return nil, err
	}

	stepsPerEpoch := (len(trainExamples) + trainConfig.BatchSize - 1) / trainConfig.BatchSize
	totalSteps := stepsPerEpoch * trainConfig.NumEpochs
	scheduler := model.NewLRScheduler(trainConfig.LearningRate, trainConfig.MinLR, trainConfig.WarmupSteps, totalSteps)
	bar := progressbar.Default(int64(totalSteps), "training")

	finalLoss := 0.0
	for epoch := 0; epoch < trainConfig.NumEpochs; epoch++ {
		model.ShuffleExamples(trainExamples)

		epochLoss := 0.0
		for start := 0; start < len(trainExamples); start += trainConfig.BatchSize {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("training aborted: %w", err)
			}

			end := start + trainConfig.BatchSize
			if end > len(trainExamples) {
				end = len(trainExamples)
			}

			inputs := make([][]int, 0, end-start)
			targets := make([][]int, 0, end-start)
			for _, example := range trainExamples[start:end] {
				input, target := model.SplitExample(example)
				inputs = append(inputs, input)
				targets = append(targets, target)
			}

			loss := model.TrainStep(m, inputs, targets, optimizer, scheduler.NextLR(), trainConfig.GradientClipValue)
			epochLoss = loss
			_ = bar.Add(1)
		}
		finalLoss = epochLoss

		if len(valExamples) > 0 {
			valLoss := model.EvaluateLoss(m, valExamples)
			finalLoss = valLoss
			s.logger.Info(fmt.Sprintf("Epoch %d finished: train loss %.4f, validation loss %.4f", epoch+1, epochLoss, valLoss))
		} else {
			s.logger.Info(fmt.Sprintf("Epoch %d finished: train loss %.4f", epoch+1, epochLoss))
		}
	}

	if err := os.MkdirAll(req.OutputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	checkpointPath := filepath.Join(req.OutputDir, req.Name+".ckpt")
	if err := m.Save(checkpointPath); err != nil {
		return nil, fmt.Errorf("failed to save checkpoint: %w", err)
	}

	meta := &textgen.ModelMeta{
		ID:              uuid.New().String(),
		DateTimeCreated: time.Now().UTC(),
		Name:            req.Name,
		VocabSize:       config.VocabSize,
		SeqLen:          config.SeqLen,
		EmbedDim:        config.EmbedDim,
		NumHeads:        config.NumHeads,
		NumLayers:       config.NumLayers,
		Parameters:      m.NumParameters(),
		FinalLoss:       finalLoss,
		CheckpointPath:  checkpointPath,
		TokenizerPath:   req.TokenizerPath,
	}

	if err := s.modelRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("failed to register model: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Training finished: model %s, final loss %.4f, checkpoint %s", meta.ID, finalLoss, checkpointPath))
	return meta, nil
}

// generationService implements the GenerationService interface for producing
// text from a trained model
type generationService struct {
	model     *model.GPT
	tokenizer *tokenizer.BPE
	logger    logger.Logger
}

const defaultMaxTokens = 128

// NewGenerationService creates a new instance of GenerationService by loading
// a checkpoint and its tokenizer from disk.
func NewGenerationService(checkpointPath, tokenizerPath string, logger logger.Logger) (textgen.GenerationService, error) {
	m, err := model.Load(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	bpe := tokenizer.NewBPE()
	if err := bpe.Load(tokenizerPath); err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	return &generationService{model: m, tokenizer: bpe, logger: logger}, nil
}

// errEndOfText aborts streaming once the model emits the end-of-text token.
var errEndOfText = errors.New("end of text")

// Generate produces a completion for the request prompt
func (s *generationService) Generate(ctx context.Context, req *textgen.GenerateRequest) (*textgen.GenerateResult, error) {
	var completion []int
	err := s.generate(ctx, req, func(id int) error {
		completion = append(completion, id)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &textgen.GenerateResult{
		Prompt:     req.Prompt,
		Completion: s.tokenizer.Decode(completion),
		TokensUsed: len(completion),
	}, nil
}

// GenerateStream produces a completion token by token
func (s *generationService) GenerateStream(ctx context.Context, req *textgen.GenerateRequest, emit func(token string) error) error {
	return s.generate(ctx, req, func(id int) error {
		return emit(s.tokenizer.Decode([]int{id}))
	})
}

func (s *generationService) generate(ctx context.Context, req *textgen.GenerateRequest, emit func(id int) error) error {
	if err := req.Validate(); err != nil {
		return err
	}

	promptIDs := s.tokenizer.Encode(req.Prompt)
	if len(promptIDs) == 0 {
		return fmt.Errorf("prompt encodes to no tokens")
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	sampleConfig := &model.SampleConfig{
		Temperature: req.Temperature,
		TopK:        req.TopK,
		TopP:        req.TopP,
	}

	err := s.model.GenerateStream(promptIDs, maxTokens, sampleConfig, func(id int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if id == s.tokenizer.EosID() {
			return errEndOfText
		}
		return emit(id)
	})
	if err != nil && !errors.Is(err, errEndOfText) {
		return err
	}
	return nil
}

// evaluationService implements the EvaluationService interface for scoring
// trained models
type evaluationService struct {
	logger logger.Logger
}

// NewEvaluationService creates a new instance of EvaluationService
func NewEvaluationService(logger logger.Logger) (textgen.EvaluationService, error) {
	return &evaluationService{logger: logger}, nil
}

// Perplexity computes exp(mean cross-entropy) over the validation split
func (s *evaluationService) Perplexity(ctx context.Context, checkpointPath, datasetDir string) (float64, error) {
	m, err := model.Load(checkpointPath)
	if err != nil {
		return 0, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	examples, err := dataset.LoadSplit(datasetDir, dataset.ValSplit)
	if err != nil {
		return 0, fmt.Errorf("failed to load validation split: %w", err)
	}
	if len(examples) == 0 {
		return 0, fmt.Errorf("validation split is empty")
	}

	ppl := model.Perplexity(m, examples)
	s.logger.Info(fmt.Sprintf("Perplexity %.4f over %d examples for %s", ppl, len(examples), checkpointPath))
	return ppl, nil
}

// BLEU scores generated candidates against reference texts
func (s *evaluationService) BLEU(ctx context.Context, candidates, references []string) (float64, error) {
	if len(candidates) == 0 {
		return 0, fmt.Errorf("no candidates provided")
	}
	if len(candidates) != len(references) {
		return 0, fmt.Errorf("candidate count %d != reference count %d", len(candidates), len(references))
	}
	return model.CorpusBLEU(candidates, references), nil
}

// modelMetadataService implements the textgen MetadataService interface for
// retrieving and deleting model metadata
type modelMetadataService struct {
	modelRepo textgen.ModelRepository
	logger    logger.Logger
}

// NewModelMetadataService creates a new instance of textgen MetadataService
func NewModelMetadataService(modelRepo textgen.ModelRepository, logger logger.Logger) (textgen.MetadataService, error) {
	return &modelMetadataService{modelRepo: modelRepo, logger: logger}, nil
}

// List retrieves model metadata considering a query filter when set
func (s *modelMetadataService) List(ctx context.Context, query *textgen.ModelMetaQuery) ([]*textgen.ModelMeta, error) {
	metas, err := s.modelRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return metas, nil
}

// GetByID retrieves model metadata by ID
func (s *modelMetadataService) GetByID(ctx context.Context, modelID string) (*textgen.ModelMeta, error) {
	meta, err := s.modelRepo.GetByID(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return meta, nil
}

// DeleteByID deletes model metadata by ID
func (s *modelMetadataService) DeleteByID(ctx context.Context, modelID string) error {
	if err := s.modelRepo.DeleteByID(ctx, modelID); err != nil {
		return fmt.Errorf("%w", err)
	}

	s.logger.Info(fmt.Sprintf("Deleted model metadata with id %s", modelID))
	return nil
}
