//go:build unit
// +build unit

package tokenizer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingCorpus() []string {
	return []string{
		"le chat dort sur le tapis",
		"le chien dort dans le jardin",
		"le chat et le chien dorment",
	}
}

func TestBPE_SpecialTokenIDs(t *testing.T) {
	tok := NewBPE()

	assert.Equal(t, 0, tok.PadID())
	assert.Equal(t, 2, tok.EosID())
}

func TestBPE_SpecialTokenIDs_BeforeTraining(t *testing.T) {
	tok := NewBPE()

	// Only special tokens are registered before training
	assert.Equal(t, 3, tok.VocabSize())
}

func TestBPE_Train_GrowsVocabulary(t *testing.T) {
	tok := NewBPE()

	err := tok.Train(trainingCorpus(), 300)
	require.NoError(t, err)

	assert.Greater(t, tok.VocabSize(), 259)
	assert.LessOrEqual(t, tok.VocabSize(), 300)
}

func TestBPE_Train_TargetTooSmall(t *testing.T) {
	tok := NewBPE()

	err := tok.Train(trainingCorpus(), 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target vocab size")
}

func TestBPE_Train_EmptyCorpus(t *testing.T) {
	tok := NewBPE()

	err := tok.Train(nil, 300)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestBPE_EncodeDecode_Roundtrip(t *testing.T) {
	tok := NewBPE()
	require.NoError(t, tok.Train(trainingCorpus(), 300))

	text := "le chat dort"
	ids := tok.Encode(text)
	require.NotEmpty(t, ids)

	// Merges shorten the id sequence below the byte count
	assert.Less(t, len(ids), len(text))
	assert.Equal(t, text, tok.Decode(ids))
}

func TestBPE_Encode_UnseenText(t *testing.T) {
	tok := NewBPE()
	require.NoError(t, tok.Train(trainingCorpus(), 300))

	// Byte-level fallback covers text never seen in training
	text := "château de Combourg"
	assert.Equal(t, text, tok.Decode(tok.Encode(text)))
}

func TestBPE_Decode_SkipsSpecialTokens(t *testing.T) {
	tok := NewBPE()
	require.NoError(t, tok.Train(trainingCorpus(), 300))

	ids := tok.Encode("le chat")
	ids = append(ids, tok.EosID())

	assert.Equal(t, "le chat", tok.Decode(ids))
}

func TestBPE_SaveLoad_Roundtrip(t *testing.T) {
	tok := NewBPE()
	require.NoError(t, tok.Train(trainingCorpus(), 300))

	path := filepath.Join(t.TempDir(), "tokenizer.txt")
	require.NoError(t, tok.Save(path))

	loaded := NewBPE()
	require.NoError(t, loaded.Load(path))

	assert.Equal(t, tok.VocabSize(), loaded.VocabSize())

	text := "le chien dort"
	assert.Equal(t, tok.Encode(text), loaded.Encode(text))
	assert.Equal(t, text, loaded.Decode(loaded.Encode(text)))
}

func TestBPE_Load_MissingFile(t *testing.T) {
	tok := NewBPE()

	err := tok.Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
