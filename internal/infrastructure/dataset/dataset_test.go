//go:build unit
// +build unit

package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/JayHzn/ai-story-generator/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i % 97
	}
	return ids
}

func TestBuilder_Build_WritesShardsAndManifest(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	dir := t.TempDir()
	opts := BuildOptions{SeqLen: 8, Stride: 4, ValFraction: 0.25, VocabSize: 97}

	manifest, err := builder.Build(sequentialIDs(100), opts, dir)
	require.NoError(t, err)

	assert.Equal(t, 8, manifest.SequenceLength)
	assert.Equal(t, 97, manifest.VocabSize)
	assert.Equal(t, manifest.TrainExamples+manifest.ValExamples, manifest.ExampleCount)
	assert.Greater(t, manifest.TrainExamples, manifest.ValExamples)
	assert.NotEmpty(t, manifest.SourceChecksum)

	_, err = os.Stat(filepath.Join(dir, ManifestFileName))
	assert.NoError(t, err)
	for _, shard := range manifest.Shards {
		_, err = os.Stat(filepath.Join(dir, shard.Path))
		assert.NoError(t, err)
	}
}

func TestBuilder_Build_RoundtripThroughLoadSplit(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	dir := t.TempDir()
	ids := sequentialIDs(100)
	opts := BuildOptions{SeqLen: 8, Stride: 8, ValFraction: 0.2, VocabSize: 97}

	manifest, err := builder.Build(ids, opts, dir)
	require.NoError(t, err)

	train, err := LoadSplit(dir, TrainSplit)
	require.NoError(t, err)
	val, err := LoadSplit(dir, ValSplit)
	require.NoError(t, err)

	assert.Len(t, train, manifest.TrainExamples)
	assert.Len(t, val, manifest.ValExamples)

	// First example is the first window of the id stream
	require.Len(t, train[0], opts.SeqLen+1)
	assert.Equal(t, ids[:opts.SeqLen+1], train[0])
}

func TestBuilder_Build_StrideControlsOverlap(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	ids := sequentialIDs(50)

	dense, err := builder.Build(ids, BuildOptions{SeqLen: 8, Stride: 1, VocabSize: 97}, t.TempDir())
	require.NoError(t, err)
	sparse, err := builder.Build(ids, BuildOptions{SeqLen: 8, Stride: 8, VocabSize: 97}, t.TempDir())
	require.NoError(t, err)

	assert.Greater(t, dense.ExampleCount, sparse.ExampleCount)
}

func TestBuilder_Build_CorpusTooSmall(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	_, err = builder.Build(sequentialIDs(5), BuildOptions{SeqLen: 8, VocabSize: 97}, t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "corpus too small")
}

func TestBuilder_Build_InvalidValFraction(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	_, err = builder.Build(sequentialIDs(100), BuildOptions{SeqLen: 8, ValFraction: 1.0, VocabSize: 97}, t.TempDir())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation fraction")
}

func TestLoadManifest_MissingDirectory(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBuilder_Build_ChecksumTracksCorpus(t *testing.T) {
	logger := testutil.SetupTestLogger(t)
	builder, err := NewBuilder(logger)
	require.NoError(t, err)

	opts := BuildOptions{SeqLen: 8, Stride: 8, VocabSize: 97}

	first, err := builder.Build(sequentialIDs(100), opts, t.TempDir())
	require.NoError(t, err)
	same, err := builder.Build(sequentialIDs(100), opts, t.TempDir())
	require.NoError(t, err)

	other := sequentialIDs(100)
	other[0] = 42
	changed, err := builder.Build(other, opts, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, first.SourceChecksum, same.SourceChecksum)
	assert.NotEqual(t, first.SourceChecksum, changed.SourceChecksum)
}
