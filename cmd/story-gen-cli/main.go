// Package main is the entry point for the story-gen-cli application.
// It initializes the root command and registers the corpus, pipeline and model
// command groups, then executes the command-line interface.
package main

import (
	"fmt"
	"log"
	"os"

	commands "github.com/JayHzn/ai-story-generator/cmd/story-gen-cli/internal/commands"

	"github.com/spf13/cobra"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "story-gen-cli",
		Short: "French literature text generation CLI tool",
		Long: `story-gen-cli is a command-line tool for building a French literature corpus
and training small causal language models on it.

It downloads curated Project Gutenberg books, collects web pages, cleans the
raw text, trains a byte-level BPE tokenizer, slices the encoded corpus into
training shards, trains transformer checkpoints and samples completions from
them. Trained models and collected documents are tracked in a local registry.`,
	}

	// Initialize all command groups BEFORE executing
	if err := initializeCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize commands: %w", err)
	}

	// Execute root command ONCE after all commands are registered
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// initializeCommands registers all command groups with the root command.
func initializeCommands(rootCmd *cobra.Command) error {
	// Register corpus commands
	if err := commands.InitCorpusCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize corpus commands: %w", err)
	}

	// Register pipeline commands
	if err := commands.InitPipelineCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize pipeline commands: %w", err)
	}

	// Register model commands
	if err := commands.InitModelCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize model commands: %w", err)
	}

	return nil
}

// init sets up any necessary initialization before main runs.
func init() {
	// Set log flags for better error messages
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Ensure proper exit codes on errors
	log.SetOutput(os.Stderr)
}
