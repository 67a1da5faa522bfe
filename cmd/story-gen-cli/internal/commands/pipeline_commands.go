package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/JayHzn/ai-story-generator/internal/app"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/dataset"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/tokenizer"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// PipelineCommandHandler encapsulates logic for corpus preparation via CLI.
type PipelineCommandHandler struct {
	pipelineService app.PipelineService
	logger          logger.Logger
}

// NewPipelineCommandHandler initializes and returns a PipelineCommandHandler instance
// with configured logger and pipeline service.
func NewPipelineCommandHandler() (*PipelineCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	pipelineService, err := app.NewPipelineService(loggerInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline service: %w", err)
	}

	return &PipelineCommandHandler{
		pipelineService: pipelineService,
		logger:          loggerInstance,
	}, nil
}

// CleanCorpusCmd cleans every raw text file in a directory
func (commandHandler *PipelineCommandHandler) CleanCorpusCmd(cmd *cobra.Command, _ []string) {
	inputDir, err := cmd.Flags().GetString("input-dir")
	if err != nil {
		commandHandler.logger.Error("invalid input-dir flag ", err)
		return
	}
	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		commandHandler.logger.Error("invalid output-dir flag ", err)
		return
	}

	stats, err := commandHandler.pipelineService.CleanCorpus(cmd.Context(), inputDir, outputDir)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	for _, stat := range stats {
		commandHandler.logger.Info(stat.Input, ": ", stat.BytesIn, " -> ", stat.BytesOut, " bytes")
	}
	commandHandler.logger.Info("Cleaned ", len(stats), " files into ", outputDir)
}

// TrainTokenizerCmd fits a byte-level BPE tokenizer on a cleaned corpus
func (commandHandler *PipelineCommandHandler) TrainTokenizerCmd(cmd *cobra.Command, _ []string) {
	corpusDir, err := cmd.Flags().GetString("corpus-dir")
	if err != nil {
		commandHandler.logger.Error("invalid corpus-dir flag ", err)
		return
	}
	vocabSize, err := cmd.Flags().GetInt("vocab-size")
	if err != nil {
		commandHandler.logger.Error("invalid vocab-size flag ", err)
		return
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		commandHandler.logger.Error("invalid output flag ", err)
		return
	}

	finalVocab, err := commandHandler.pipelineService.TrainTokenizer(cmd.Context(), corpusDir, vocabSize, outputPath)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Tokenizer with ", finalVocab, " tokens saved to ", outputPath)
}

// EncodeCmd encodes a text with a saved tokenizer and prints the token IDs
func (commandHandler *PipelineCommandHandler) EncodeCmd(cmd *cobra.Command, _ []string) {
	tokenizerPath, err := cmd.Flags().GetString("tokenizer")
	if err != nil {
		commandHandler.logger.Error("invalid tokenizer flag ", err)
		return
	}
	text, err := cmd.Flags().GetString("text")
	if err != nil {
		commandHandler.logger.Error("invalid text flag ", err)
		return
	}
	inputFile, err := cmd.Flags().GetString("input-file")
	if err != nil {
		commandHandler.logger.Error("invalid input-file flag ", err)
		return
	}

	if inputFile != "" {
		content, err := os.ReadFile(filepath.Clean(inputFile))
		if err != nil {
			commandHandler.logger.Error(err)
			return
		}
		text = string(content)
	}
	if text == "" {
		commandHandler.logger.Error("either --text or --input-file must be set")
		return
	}

	bpe := tokenizer.NewBPE()
	if err := bpe.Load(tokenizerPath); err != nil {
		commandHandler.logger.Error(err)
		return
	}

	ids := bpe.Encode(text)
	commandHandler.logger.Info("Encoded ", len(ids), " tokens: ", ids)
}

// BuildDatasetCmd encodes a cleaned corpus and slices it into training shards
func (commandHandler *PipelineCommandHandler) BuildDatasetCmd(cmd *cobra.Command, _ []string) {
	corpusDir, err := cmd.Flags().GetString("corpus-dir")
	if err != nil {
		commandHandler.logger.Error("invalid corpus-dir flag ", err)
		return
	}
	tokenizerPath, err := cmd.Flags().GetString("tokenizer")
	if err != nil {
		commandHandler.logger.Error("invalid tokenizer flag ", err)
		return
	}
	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		commandHandler.logger.Error("invalid output-dir flag ", err)
		return
	}
	seqLen, err := cmd.Flags().GetInt("seq-len")
	if err != nil {
		commandHandler.logger.Error("invalid seq-len flag ", err)
		return
	}
	stride, err := cmd.Flags().GetInt("stride")
	if err != nil {
		commandHandler.logger.Error("invalid stride flag ", err)
		return
	}
	valFraction, err := cmd.Flags().GetFloat64("val-fraction")
	if err != nil {
		commandHandler.logger.Error("invalid val-fraction flag ", err)
		return
	}

	manifest, err := commandHandler.pipelineService.BuildDataset(cmd.Context(), corpusDir, tokenizerPath, dataset.BuildOptions{
		SeqLen:      seqLen,
		Stride:      stride,
		ValFraction: valFraction,
	}, outputDir)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Dataset with ", manifest.TrainExamples, " train and ",
		manifest.ValExamples, " validation examples written to ", outputDir)
}

// InitPipelineCommands registers corpus preparation commands
func InitPipelineCommands(rootCmd *cobra.Command) error {
	handler, err := NewPipelineCommandHandler()

	if err != nil {
		return fmt.Errorf("failed to create pipeline command handler %w", err)
	}

	var cleanCorpusCmd = &cobra.Command{
		Use:   "clean-corpus",
		Short: "Clean raw corpus text files",
		Run:   handler.CleanCorpusCmd,
	}
	cleanCorpusCmd.Flags().StringP("input-dir", "", "data/raw", "Directory containing raw text files")
	cleanCorpusCmd.Flags().StringP("output-dir", "", "data/clean", "Directory for cleaned text files")
	rootCmd.AddCommand(cleanCorpusCmd)

	var trainTokenizerCmd = &cobra.Command{
		Use:   "train-tokenizer",
		Short: "Train a byte-level BPE tokenizer on a cleaned corpus",
		Run:   handler.TrainTokenizerCmd,
	}
	trainTokenizerCmd.Flags().StringP("corpus-dir", "", "data/clean", "Directory containing cleaned text files")
	trainTokenizerCmd.Flags().IntP("vocab-size", "", 8000, "Target vocabulary size")
	trainTokenizerCmd.Flags().StringP("output", "", "models/tokenizer.txt", "Path for the saved tokenizer")
	rootCmd.AddCommand(trainTokenizerCmd)

	var encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Encode a text with a saved tokenizer",
		Run:   handler.EncodeCmd,
	}
	encodeCmd.Flags().StringP("tokenizer", "", "models/tokenizer.txt", "Path to the saved tokenizer")
	encodeCmd.Flags().StringP("text", "", "", "Text to encode")
	encodeCmd.Flags().StringP("input-file", "", "", "File whose content is encoded instead of --text")
	rootCmd.AddCommand(encodeCmd)

	var buildDatasetCmd = &cobra.Command{
		Use:   "build-dataset",
		Short: "Slice an encoded corpus into training shards",
		Run:   handler.BuildDatasetCmd,
	}
	buildDatasetCmd.Flags().StringP("corpus-dir", "", "data/clean", "Directory containing cleaned text files")
	buildDatasetCmd.Flags().StringP("tokenizer", "", "models/tokenizer.txt", "Path to the saved tokenizer")
	buildDatasetCmd.Flags().StringP("output-dir", "", "data/dataset", "Directory for the dataset shards")
	buildDatasetCmd.Flags().IntP("seq-len", "", 128, "Sequence length of each training example")
	buildDatasetCmd.Flags().IntP("stride", "", 64, "Stride between consecutive examples")
	buildDatasetCmd.Flags().Float64P("val-fraction", "", 0.1, "Fraction of examples held out for validation")
	rootCmd.AddCommand(buildDatasetCmd)

	return nil
}
