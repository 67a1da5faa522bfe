package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/JayHzn/ai-story-generator/internal/app"
	"github.com/JayHzn/ai-story-generator/internal/domain/textgen"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/hub"
	"github.com/JayHzn/ai-story-generator/internal/infrastructure/persistence"
	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/spf13/cobra"
)

// ModelCommandHandler encapsulates logic for training, evaluating and sampling
// models via CLI.
type ModelCommandHandler struct {
	logger logger.Logger
}

// NewModelCommandHandler initializes and returns a ModelCommandHandler instance
// with a configured logger.
func NewModelCommandHandler() (*ModelCommandHandler, error) {
	loggerInstance, err := setupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}

	return &ModelCommandHandler{logger: loggerInstance}, nil
}

// TrainCmd runs a full training job and registers the resulting checkpoint
func (commandHandler *ModelCommandHandler) TrainCmd(cmd *cobra.Command, _ []string) {
	name, err := cmd.Flags().GetString("name")
	if err != nil {
		commandHandler.logger.Error("invalid name flag ", err)
		return
	}
	datasetDir, err := cmd.Flags().GetString("dataset-dir")
	if err != nil {
		commandHandler.logger.Error("invalid dataset-dir flag ", err)
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
	embedDim, err := cmd.Flags().GetInt("embed-dim")
	if err != nil {
		commandHandler.logger.Error("invalid embed-dim flag ", err)
		return
	}
	numHeads, err := cmd.Flags().GetInt("num-heads")
	if err != nil {
		commandHandler.logger.Error("invalid num-heads flag ", err)
		return
	}
	numLayers, err := cmd.Flags().GetInt("num-layers")
	if err != nil {
		commandHandler.logger.Error("invalid num-layers flag ", err)
		return
	}
	epochs, err := cmd.Flags().GetInt("epochs")
	if err != nil {
		commandHandler.logger.Error("invalid epochs flag ", err)
		return
	}
	batchSize, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		commandHandler.logger.Error("invalid batch-size flag ", err)
		return
	}
	learningRate, err := cmd.Flags().GetFloat64("learning-rate")
	if err != nil {
		commandHandler.logger.Error("invalid learning-rate flag ", err)
		return
	}
	dsn, err := cmd.Flags().GetString("db")
	if err != nil {
		commandHandler.logger.Error("invalid db flag ", err)
		return
	}

	db, err := openDatabase(dsn)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	modelRepo, err := persistence.NewGormModelRepository(db, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	trainingService, err := app.NewTrainingService(modelRepo, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	meta, err := trainingService.Train(cmd.Context(), &textgen.TrainRequest{
		Name:          name,
		DatasetDir:    datasetDir,
		TokenizerPath: tokenizerPath,
		OutputDir:     outputDir,
		EmbedDim:      embedDim,
		NumHeads:      numHeads,
		NumLayers:     numLayers,
		Epochs:        epochs,
		BatchSize:     batchSize,
		LearningRate:  learningRate,
	})
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Trained model ", meta.Name, " (", meta.Parameters, " parameters, final loss ",
		meta.FinalLoss, ") registered as ", meta.ID)
}

// GenerateCmd samples a completion from a trained checkpoint
func (commandHandler *ModelCommandHandler) GenerateCmd(cmd *cobra.Command, _ []string) {
	checkpointPath, err := cmd.Flags().GetString("checkpoint")
	if err != nil {
		commandHandler.logger.Error("invalid checkpoint flag ", err)
		return
	}
	tokenizerPath, err := cmd.Flags().GetString("tokenizer")
	if err != nil {
		commandHandler.logger.Error("invalid tokenizer flag ", err)
		return
	}
	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		commandHandler.logger.Error("invalid prompt flag ", err)
		return
	}
	maxTokens, err := cmd.Flags().GetInt("max-tokens")
	if err != nil {
		commandHandler.logger.Error("invalid max-tokens flag ", err)
		return
	}
	temperature, err := cmd.Flags().GetFloat64("temperature")
	if err != nil {
		commandHandler.logger.Error("invalid temperature flag ", err)
		return
	}
	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		commandHandler.logger.Error("invalid top-k flag ", err)
		return
	}
	topP, err := cmd.Flags().GetFloat64("top-p")
	if err != nil {
		commandHandler.logger.Error("invalid top-p flag ", err)
		return
	}

	generationService, err := app.NewGenerationService(checkpointPath, tokenizerPath, commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	req := &textgen.GenerateRequest{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopK:        topK,
		TopP:        topP,
	}

	// Stream tokens to stdout as they are sampled
	err = generationService.GenerateStream(cmd.Context(), req, func(token string) error {
		_, writeErr := fmt.Fprint(os.Stdout, token)
		return writeErr
	})
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	fmt.Fprintln(os.Stdout)
}

// EvalPerplexityCmd scores a checkpoint on the validation split of a dataset
func (commandHandler *ModelCommandHandler) EvalPerplexityCmd(cmd *cobra.Command, _ []string) {
	checkpointPath, err := cmd.Flags().GetString("checkpoint")
	if err != nil {
		commandHandler.logger.Error("invalid checkpoint flag ", err)
		return
	}
	datasetDir, err := cmd.Flags().GetString("dataset-dir")
	if err != nil {
		commandHandler.logger.Error("invalid dataset-dir flag ", err)
		return
	}

	evaluationService, err := app.NewEvaluationService(commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	perplexity, err := evaluationService.Perplexity(cmd.Context(), checkpointPath, datasetDir)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Validation perplexity: ", perplexity)
}

// EvalBLEUCmd scores generated candidates against reference texts
func (commandHandler *ModelCommandHandler) EvalBLEUCmd(cmd *cobra.Command, _ []string) {
	candidateFile, err := cmd.Flags().GetString("candidate-file")
	if err != nil {
		commandHandler.logger.Error("invalid candidate-file flag ", err)
		return
	}
	referenceFile, err := cmd.Flags().GetString("reference-file")
	if err != nil {
		commandHandler.logger.Error("invalid reference-file flag ", err)
		return
	}

	candidates, err := readLines(candidateFile)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}
	references, err := readLines(referenceFile)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	evaluationService, err := app.NewEvaluationService(commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	score, err := evaluationService.BLEU(cmd.Context(), candidates, references)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	commandHandler.logger.Info("Corpus BLEU: ", score)
}

// PullArtifactsCmd downloads model artifacts from the Hugging Face hub
func (commandHandler *ModelCommandHandler) PullArtifactsCmd(cmd *cobra.Command, _ []string) {
	modelID, err := cmd.Flags().GetString("model-id")
	if err != nil {
		commandHandler.logger.Error("invalid model-id flag ", err)
		return
	}
	files, err := cmd.Flags().GetStringSlice("files")
	if err != nil {
		commandHandler.logger.Error("invalid files flag ", err)
		return
	}
	destDir, err := cmd.Flags().GetString("dest-dir")
	if err != nil {
		commandHandler.logger.Error("invalid dest-dir flag ", err)
		return
	}

	puller, err := hub.NewPuller(commandHandler.logger)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	paths, err := puller.PullArtifacts(modelID, files, destDir)
	if err != nil {
		commandHandler.logger.Error(err)
		return
	}

	for _, path := range paths {
		commandHandler.logger.Info("Pulled ", filepath.Base(path), " to ", path)
	}
}

// readLines loads a text file as one entry per non-empty line.
func readLines(path string) ([]string, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(content), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return lines, nil
}

// InitModelCommands registers model-related commands
func InitModelCommands(rootCmd *cobra.Command) error {
	handler, err := NewModelCommandHandler()

	if err != nil {
		return fmt.Errorf("failed to create model command handler %w", err)
	}

	var trainCmd = &cobra.Command{
		Use:   "train",
		Short: "Train a model on a prepared dataset",
		Run:   handler.TrainCmd,
	}
	trainCmd.Flags().StringP("name", "", "", "Name under which the model is registered")
	trainCmd.Flags().StringP("dataset-dir", "", "data/dataset", "Directory containing the dataset shards")
	trainCmd.Flags().StringP("tokenizer", "", "models/tokenizer.txt", "Path to the saved tokenizer")
	trainCmd.Flags().StringP("output-dir", "", "models", "Directory for the trained checkpoint")
	trainCmd.Flags().IntP("embed-dim", "", 128, "Embedding dimension")
	trainCmd.Flags().IntP("num-heads", "", 4, "Number of attention heads")
	trainCmd.Flags().IntP("num-layers", "", 4, "Number of transformer layers")
	trainCmd.Flags().IntP("epochs", "", 3, "Number of training epochs")
	trainCmd.Flags().IntP("batch-size", "", 16, "Training batch size")
	trainCmd.Flags().Float64P("learning-rate", "", 3e-4, "Peak learning rate")
	trainCmd.Flags().StringP("db", "", "story_gen.db", "Path to the sqlite registry")
	rootCmd.AddCommand(trainCmd)

	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Sample a completion from a trained checkpoint",
		Run:   handler.GenerateCmd,
	}
	generateCmd.Flags().StringP("checkpoint", "", "models/conteur.ckpt", "Path to the trained checkpoint")
	generateCmd.Flags().StringP("tokenizer", "", "models/tokenizer.txt", "Path to the saved tokenizer")
	generateCmd.Flags().StringP("prompt", "", "", "Prompt to complete")
	generateCmd.Flags().IntP("max-tokens", "", 128, "Maximum number of tokens to generate")
	generateCmd.Flags().Float64P("temperature", "", 0, "Sampling temperature (0 means greedy)")
	generateCmd.Flags().IntP("top-k", "", 0, "Top-k sampling cutoff (0 disables)")
	generateCmd.Flags().Float64P("top-p", "", 0, "Nucleus sampling threshold (0 disables)")
	rootCmd.AddCommand(generateCmd)

	var evalPerplexityCmd = &cobra.Command{
		Use:   "eval-perplexity",
		Short: "Score a checkpoint on the validation split of a dataset",
		Run:   handler.EvalPerplexityCmd,
	}
	evalPerplexityCmd.Flags().StringP("checkpoint", "", "models/conteur.ckpt", "Path to the trained checkpoint")
	evalPerplexityCmd.Flags().StringP("dataset-dir", "", "data/dataset", "Directory containing the dataset shards")
	rootCmd.AddCommand(evalPerplexityCmd)

	var evalBLEUCmd = &cobra.Command{
		Use:   "eval-bleu",
		Short: "Score generated candidates against reference texts",
		Run:   handler.EvalBLEUCmd,
	}
	evalBLEUCmd.Flags().StringP("candidate-file", "", "", "File with one candidate text per line")
	evalBLEUCmd.Flags().StringP("reference-file", "", "", "File with one reference text per line")
	rootCmd.AddCommand(evalBLEUCmd)

	var pullArtifactsCmd = &cobra.Command{
		Use:   "pull-artifacts",
		Short: "Download model artifacts from the Hugging Face hub",
		Run:   handler.PullArtifactsCmd,
	}
	pullArtifactsCmd.Flags().StringP("model-id", "", "", "Hub model repository (e.g. org/model)")
	pullArtifactsCmd.Flags().StringSliceP("files", "", nil, "Files to pull from the repository")
	pullArtifactsCmd.Flags().StringP("dest-dir", "", "models", "Directory to copy the pulled files into")
	rootCmd.AddCommand(pullArtifactsCmd)

	return nil
}
