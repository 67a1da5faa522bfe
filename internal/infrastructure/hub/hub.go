// Package hub pulls pretrained artifact files, such as tokenizer and model
// checkpoints, from the Hugging Face Hub into a local directory.
package hub

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/lengrongfu/hf-hub/api"
)

// Puller downloads files from Hugging Face model repositories.
type Puller struct {
	logger logger.Logger
}

// NewPuller creates a new Puller
func NewPuller(logger logger.Logger) (*Puller, error) {
	return &Puller{logger: logger}, nil
}

// PullFile fetches a single file from the given model repository and copies
// it to destDir, returning the local path.
func (p *Puller) PullFile(modelID, fileName, destDir string) (string, error) {
	client, err := api.NewApi()
	if err != nil {
		return "", fmt.Errorf("failed to create hub client: %w", err)
	}

	p.logger.Info(fmt.Sprintf("Pulling %s from %s", fileName, modelID))

	cachedPath, err := client.Model(modelID).Get(fileName)
	if err != nil {
		return "", fmt.Errorf("failed to pull %s from %s: %w", fileName, modelID, err)
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	destPath := filepath.Join(destDir, filepath.Base(fileName))
	if err := copyFile(cachedPath, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// PullArtifacts fetches several files from one repository.
func (p *Puller) PullArtifacts(modelID string, fileNames []string, destDir string) ([]string, error) {
	if len(fileNames) == 0 {
		return nil, fmt.Errorf("no files requested from %s", modelID)
	}

	paths := make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		path, err := p.PullFile(modelID, fileName, destDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open cached file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to copy artifact: %w", err)
	}
	return nil
}
