package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JayHzn/ai-story-generator/internal/infrastructure/dataset"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/textproc"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/tokenizer"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"
)

// PipelineService orchestrates the corpus preparation chain: cleaning,
// tokenizer training and dataset building.
type PipelineService interface {
	// CleanCorpus cleans every raw text file under inputDir into outputDir.
	CleanCorpus(ctx context.Context, inputDir, outputDir string) ([]*textproc.CleanStats, error)

	// TrainTokenizer fits a byte-level BPE tokenizer on the cleaned corpus and
	// saves it to outputPath, returning the final vocabulary size.
	TrainTokenizer(ctx context.Context, corpusDir string, vocabSize int, outputPath string) (int, error)

	// BuildDataset encodes the cleaned corpus with a saved tokenizer and
	// slices it into train/validation shards under outputDir.
	BuildDataset(ctx context.Context, corpusDir, tokenizerPath string, opts dataset.BuildOptions, outputDir string) (*dataset.Manifest, error)
}

// pipelineService implements the PipelineService interface
type pipelineService struct {
	cleaner *textproc.Cleaner
	builder *dataset.Builder
	logger  logger.Logger
}

// NewPipelineService creates a new instance of PipelineService
func NewPipelineService(logger logger.Logger) (PipelineService, error) {
	cleaner, err := textproc.NewCleaner(logger)
	if err != nil {
		return nil, err
	}
	builder, err := dataset.NewBuilder(logger)
	if err != nil {
		return nil, err
	}
	return &pipelineService{cleaner: cleaner, builder: builder, logger: logger}, nil
}

// CleanCorpus cleans every raw text file under inputDir into outputDir
func (s *pipelineService) CleanCorpus(ctx context.Context, inputDir, outputDir string) ([]*textproc.CleanStats, error) {
	stats, err := s.cleaner.CleanCorpus(inputDir, outputDir)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return stats, nil
}

// TrainTokenizer fits a byte-level BPE tokenizer on the cleaned corpus
func (s *pipelineService) TrainTokenizer(ctx context.Context, corpusDir string, vocabSize int, outputPath string) (int, error) {
	texts, err := readCorpusTexts(corpusDir)
	if err != nil {
		return 0, err
	}

	bpe := tokenizer.NewBPE()
	if err := bpe.Train(texts, vocabSize); err != nil {
		return 0, fmt.Errorf("tokenizer training failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0750); err != nil {
		return 0, fmt.Errorf("failed to create tokenizer directory: %w", err)
	}
	if err := bpe.Save(outputPath); err != nil {
		return 0, fmt.Errorf("failed to save tokenizer: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Tokenizer trained with %d tokens, saved to %s", bpe.VocabSize(), outputPath))
	return bpe.VocabSize(), nil
}

// BuildDataset encodes the cleaned corpus and slices it into shards
func (s *pipelineService) BuildDataset(ctx context.Context, corpusDir, tokenizerPath string, opts dataset.BuildOptions, outputDir string) (*dataset.Manifest, error) {
	bpe := tokenizer.NewBPE()
	if err := bpe.Load(tokenizerPath); err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}

	texts, err := readCorpusTexts(corpusDir)
	if err != nil {
		return nil, err
	}

	// Documents are separated by the end-of-text token so that no example
	// spans a document boundary unmarked.
	var ids []int
	for _, text := range texts {
		ids = append(ids, bpe.Encode(text)...)
		ids = append(ids, bpe.EosID())
	}

	opts.VocabSize = bpe.VocabSize()
	manifest, err := s.builder.Build(ids, opts, outputDir)
	if err != nil {
		return nil, fmt.Errorf("dataset build failed: %w", err)
	}

	s.logger.Info(fmt.Sprintf("Dataset built: %d examples (%d train, %d validation)", manifest.ExampleCount, manifest.TrainExamples, manifest.ValExamples))
	return manifest, nil
}

// readCorpusTexts loads every .txt file under dir in deterministic order.
func readCorpusTexts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no .txt files found in %s", dir)
	}

	texts := make([]string, 0, len(names))
	for _, name := range names {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		texts = append(texts, string(content))
	}
	return texts, nil
}
