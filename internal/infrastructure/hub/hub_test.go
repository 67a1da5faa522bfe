//go:build unit
// +build unit

package hub

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullArtifacts_NoFiles(t *testing.T) {
	p, err := NewPuller(testutil.SetupTestLogger(t))
	require.NoError(t, err)

	_, err = p.PullArtifacts("author/model", nil, t.TempDir())
	assert.Error(t, err)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	require.NoError(t, os.WriteFile(src, []byte("tokenizer data"), 0644))

	require.NoError(t, copyFile(src, dst))

	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "tokenizer data", string(content))
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()

	err := copyFile(filepath.Join(dir, "nope.txt"), filepath.Join(dir, "dst.txt"))
	assert.Error(t, err)
}
