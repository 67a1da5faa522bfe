package dataset

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JayHzn/ai-story-generator/internal/pkg/logger"

	"github.com/golang/snappy"
)

// Split names used in shard files and the manifest.
const (
	TrainSplit = "train"
	ValSplit   = "val"
)

// ManifestFileName is written next to the shards.
const ManifestFileName = "manifest.json"

// defaultShardExamples caps how many examples one shard file holds.
const defaultShardExamples = 4096

// ShardInfo describes one shard file.
type ShardInfo struct {
	Path     string `json:"path"`
	Split    string `json:"split"`
	Examples int    `json:"examples"`
}

// Manifest describes a prepared dataset directory.
type Manifest struct {
	SequenceLength int         `json:"sequence_length"`
	Stride         int         `json:"stride"`
	VocabSize      int         `json:"vocab_size"`
	ExampleCount   int         `json:"example_count"`
	TrainExamples  int         `json:"train_examples"`
	ValExamples    int         `json:"val_examples"`
	SourceChecksum string      `json:"source_checksum"`
	Shards         []ShardInfo `json:"shards"`
}

// BuildOptions controls dataset preparation.
type BuildOptions struct {
	SeqLen      int
	Stride      int
	ValFraction float64
	VocabSize   int
}

// Builder slices an encoded corpus into fixed-length next-token-prediction
// examples and writes them as snappy-compressed shards.
type Builder struct {
	logger logger.Logger
}

// NewBuilder creates a new Builder
func NewBuilder(logger logger.Logger) (*Builder, error) {
	return &Builder{logger: logger}, nil
}

// Build slices ids into examples of SeqLen+1 tokens (input plus shifted
// target) advancing by Stride, splits them into train/validation and writes
// shards plus a manifest under outputDir.
func (b *Builder) Build(ids []int, opts BuildOptions, outputDir string) (*Manifest, error) {
	if opts.SeqLen < 2 {
		return nil, fmt.Errorf("sequence length must be at least 2, got %d", opts.SeqLen)
	}
	if opts.Stride <= 0 {
		opts.Stride = opts.SeqLen
	}
	if opts.ValFraction < 0 || opts.ValFraction >= 1 {
		return nil, fmt.Errorf("validation fraction must be in [0, 1), got %f", opts.ValFraction)
	}
	if len(ids) < opts.SeqLen+1 {
		return nil, fmt.Errorf("corpus too small: %d tokens for sequence length %d", len(ids), opts.SeqLen)
	}

	examples := sliceExamples(ids, opts.SeqLen, opts.Stride)
	if len(examples) == 0 {
		return nil, fmt.Errorf("no examples produced from %d tokens", len(ids))
	}

	valCount := int(float64(len(examples)) * opts.ValFraction)
	trainExamples := examples[:len(examples)-valCount]
	valExamples := examples[len(examples)-valCount:]
	if len(trainExamples) == 0 {
		return nil, fmt.Errorf("validation fraction %f leaves no training examples", opts.ValFraction)
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create dataset directory: %w", err)
	}

	manifest := &Manifest{
		SequenceLength: opts.SeqLen,
		Stride:         opts.Stride,
		VocabSize:      opts.VocabSize,
		ExampleCount:   len(examples),
		TrainExamples:  len(trainExamples),
		ValExamples:    len(valExamples),
		SourceChecksum: checksumIDs(ids),
	}

	trainShards, err := b.writeShards(outputDir, TrainSplit, trainExamples, opts.SeqLen)
	if err != nil {
		return nil, err
	}
	valShards, err := b.writeShards(outputDir, ValSplit, valExamples, opts.SeqLen)
	if err != nil {
		return nil, err
	}
	manifest.Shards = append(trainShards, valShards...)

	manifestBytes, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(outputDir, ManifestFileName)
	if err := os.WriteFile(manifestPath, manifestBytes, 0600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	b.logger.Info("Prepared dataset with ", len(examples), " examples in ", outputDir)
	return manifest, nil
}

// writeShards serializes examples for one split into snappy-compressed files.
func (b *Builder) writeShards(outputDir, split string, examples [][]int, seqLen int) ([]ShardInfo, error) {
	var shards []ShardInfo
	for start := 0; start < len(examples); start += defaultShardExamples {
		end := start + defaultShardExamples
		if end > len(examples) {
			end = len(examples)
		}
		chunk := examples[start:end]

		raw := make([]byte, 0, len(chunk)*(seqLen+1)*4)
		var buf [4]byte
		for _, example := range chunk {
			for _, id := range example {
				binary.LittleEndian.PutUint32(buf[:], uint32(id))
				raw = append(raw, buf[:]...)
			}
		}

		name := fmt.Sprintf("%s-%04d.bin.sz", split, len(shards))
		path := filepath.Join(outputDir, name)
		if err := os.WriteFile(path, snappy.Encode(nil, raw), 0600); err != nil {
			return nil, fmt.Errorf("failed to write shard %s: %w", name, err)
		}

		shards = append(shards, ShardInfo{
			Path:     name,
			Split:    split,
			Examples: len(chunk),
		})
	}
	return shards, nil
}

// LoadManifest reads the manifest of a prepared dataset directory.
func LoadManifest(dir string) (*Manifest, error) {
	raw, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse dataset manifest: %w", err)
	}
	return &manifest, nil
}

// LoadSplit reads all examples of one split back into memory.
func LoadSplit(dir, split string) ([][]int, error) {
	manifest, err := LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	exampleLen := manifest.SequenceLength + 1
	var examples [][]int
	for _, shard := range manifest.Shards {
		if shard.Split != split {
			continue
		}

		compressed, err := os.ReadFile(filepath.Join(dir, shard.Path))
		if err != nil {
			return nil, fmt.Errorf("failed to read shard %s: %w", shard.Path, err)
		}
		raw, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress shard %s: %w", shard.Path, err)
		}

		expected := shard.Examples * exampleLen * 4
		if len(raw) != expected {
			return nil, fmt.Errorf("shard %s has %d bytes, expected %d", shard.Path, len(raw), expected)
		}

		for i := 0; i < shard.Examples; i++ {
			example := make([]int, exampleLen)
			base := i * exampleLen * 4
			for j := 0; j < exampleLen; j++ {
				example[j] = int(binary.LittleEndian.Uint32(raw[base+j*4:]))
			}
			examples = append(examples, example)
		}
	}

	return examples, nil
}

// sliceExamples cuts the id stream into overlapping windows of seqLen+1.
func sliceExamples(ids []int, seqLen, stride int) [][]int {
	var examples [][]int
	for start := 0; start+seqLen+1 <= len(ids); start += stride {
		example := make([]int, seqLen+1)
		copy(example, ids[start:start+seqLen+1])
		examples = append(examples, example)
	}
	return examples
}

// checksumIDs hashes the token stream so a dataset can be tied back to the
// exact corpus encoding that produced it.
func checksumIDs(ids []int) string {
	h := sha256.New()
	var buf [4]byte
	for _, id := range ids {
		binary.LittleEndian.PutUint32(buf[:], uint32(id))
		h.Write(buf[:])
	}
	return hex.EncodeToString(h.Sum(nil))
}
