package tokenizer

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// Special token constants
const (
	PadToken = "<|pad|>"
	UnkToken = "<|unk|>"
	EosToken = "<|endoftext|>"
)

// Tokenizer defines the behavior the pipeline needs from a tokenizer.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
	VocabSize() int
	Save(path string) error
	Load(path string) error
}

// BPE implements byte-pair encoding. The vocabulary starts from the 256 raw
// bytes plus the special tokens; training repeatedly merges the most frequent
// adjacent pair until the target vocabulary size is reached. Any text can be
// encoded without unknown tokens.
type BPE struct {
	vocab       map[string]int
	vocabInv    map[int]string
	merges      []mergePair
	specialToks map[string]int
}

type mergePair struct {
	first  string
	second string
}

// NewBPE creates a byte-pair-encoding tokenizer with the special tokens
// registered at fixed ids.
func NewBPE() *BPE {
	specialToks := map[string]int{
		PadToken: 0,
		UnkToken: 1,
		EosToken: 2,
	}

	vocab := make(map[string]int)
	vocabInv := make(map[int]string)
	for tok, id := range specialToks {
		vocab[tok] = id
		vocabInv[id] = tok
	}

	return &BPE{
		vocab:       vocab,
		vocabInv:    vocabInv,
		merges:      []mergePair{},
		specialToks: specialToks,
	}
}

// PadID returns the id of the padding token.
func (t *BPE) PadID() int { return t.specialToks[PadToken] }

// EosID returns the id of the end-of-text token.
func (t *BPE) EosID() int { return t.specialToks[EosToken] }

// Train builds the merge table from a corpus until the vocabulary reaches
// targetVocabSize or no pair occurs more than once.
func (t *BPE) Train(corpus []string, targetVocabSize int) error {
	minVocab := len(t.specialToks) + 256
	if targetVocabSize < minVocab {
		return fmt.Errorf("target vocab size must be at least %d (bytes plus special tokens)", minVocab)
	}

	currentVocabSize := t.initByteVocab()

	words := make([][]string, 0, len(corpus))
	for _, text := range corpus {
		if len(text) == 0 {
			continue
		}
		words = append(words, byteTokens(text))
	}
	if len(words) == 0 {
		return fmt.Errorf("training corpus is empty")
	}

	for currentVocabSize < targetVocabSize {
		pairCounts := make(map[mergePair]int)
		for _, word := range words {
			for i := 0; i < len(word)-1; i++ {
				pairCounts[mergePair{word[i], word[i+1]}]++
			}
		}

		best, count := mostFrequentPair(pairCounts)
		if count < 2 {
			// Nothing left worth merging
			break
		}

		merged := best.first + best.second
		t.vocab[merged] = currentVocabSize
		t.vocabInv[currentVocabSize] = merged
		t.merges = append(t.merges, best)
		currentVocabSize++

		for i, word := range words {
			words[i] = applyMerge(word, best)
		}
	}

	return nil
}

// Encode converts text to token ids by replaying the learned merges.
func (t *BPE) Encode(text string) []int {
	tokens := byteTokens(text)
	for _, merge := range t.merges {
		tokens = applyMerge(tokens, merge)
	}

	ids := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		if id, exists := t.vocab[tok]; exists {
			ids = append(ids, id)
		} else {
			ids = append(ids, t.specialToks[UnkToken])
		}
	}
	return ids
}

// Decode converts token ids back to text, skipping special tokens.
func (t *BPE) Decode(ids []int) string {
	var sb strings.Builder
	for _, id := range ids {
		tok, exists := t.vocabInv[id]
		if !exists {
			continue
		}
		if _, isSpecial := t.specialToks[tok]; isSpecial {
			continue
		}
		for _, r := range tok {
			sb.WriteByte(byte(r))
		}
	}
	return sb.String()
}

// VocabSize returns the vocabulary size.
func (t *BPE) VocabSize() int {
	return len(t.vocab)
}

// Save writes the tokenizer to a text file with SPECIAL_TOKENS and MERGES
// sections. Merge operands are hex encoded so arbitrary bytes survive the
// line-oriented format.
func (t *BPE) Save(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create tokenizer file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close tokenizer file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("failed to flush tokenizer file: %w", ferr)
		}
	}()

	if _, err = fmt.Fprintln(w, "SPECIAL_TOKENS"); err != nil {
		return fmt.Errorf("failed to write special tokens header: %w", err)
	}
	for tok, id := range t.specialToks {
		if _, err = fmt.Fprintf(w, "%s\t%d\n", tok, id); err != nil {
			return fmt.Errorf("failed to write special token: %w", err)
		}
	}

	if _, err = fmt.Fprintln(w, "MERGES"); err != nil {
		return fmt.Errorf("failed to write merges header: %w", err)
	}
	for _, merge := range t.merges {
		first := hex.EncodeToString(tokenBytes(merge.first))
		second := hex.EncodeToString(tokenBytes(merge.second))
		if _, err = fmt.Fprintf(w, "%s %s\n", first, second); err != nil {
			return fmt.Errorf("failed to write merge rule: %w", err)
		}
	}

	return nil
}

// Load reads a tokenizer file and rebuilds the vocabulary from its merges.
func (t *BPE) Load(path string) (err error) {
	t.vocab = make(map[string]int)
	t.vocabInv = make(map[int]string)
	t.merges = []mergePair{}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open tokenizer file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close tokenizer file: %w", cerr)
		}
	}()

	scanner := bufio.NewScanner(f)
	section := ""
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "SPECIAL_TOKENS":
			section = "special"
			continue
		case "MERGES":
			section = "merges"
			continue
		}

		switch section {
		case "special":
			parts := strings.Split(line, "\t")
			if len(parts) != 2 {
				return fmt.Errorf("malformed special token line %q", line)
			}
			var id int
			if _, err = fmt.Sscanf(parts[1], "%d", &id); err != nil {
				return fmt.Errorf("failed to parse special token id: %w", err)
			}
			t.specialToks[parts[0]] = id
			t.vocab[parts[0]] = id
			t.vocabInv[id] = parts[0]

		case "merges":
			parts := strings.Split(line, " ")
			if len(parts) != 2 {
				return fmt.Errorf("malformed merge line %q", line)
			}
			firstBytes, err1 := hex.DecodeString(parts[0])
			secondBytes, err2 := hex.DecodeString(parts[1])
			if err1 != nil || err2 != nil {
				return fmt.Errorf("failed to decode merge operands in line %q", line)
			}
			t.merges = append(t.merges, mergePair{
				first:  bytesToken(firstBytes),
				second: bytesToken(secondBytes),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read tokenizer file: %w", err)
	}

	currentVocabSize := t.initByteVocab()
	for _, merge := range t.merges {
		merged := merge.first + merge.second
		t.vocab[merged] = currentVocabSize
		t.vocabInv[currentVocabSize] = merged
		currentVocabSize++
	}

	return nil
}

// initByteVocab registers the 256 byte tokens after the special tokens and
// returns the resulting vocabulary size.
func (t *BPE) initByteVocab() int {
	size := len(t.specialToks)
	for i := 0; i < 256; i++ {
		token := string(rune(i))
		if _, exists := t.vocab[token]; !exists {
			t.vocab[token] = size
			t.vocabInv[size] = token
			size++
		}
	}
	return size
}

// byteTokens splits text into one token per byte. Each byte is stored as a
// single-rune string so merges concatenate cleanly.
func byteTokens(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, b := range []byte(text) {
		tokens = append(tokens, string(rune(b)))
	}
	return tokens
}

// tokenBytes converts a byte-rune token back to the raw bytes it represents.
func tokenBytes(token string) []byte {
	out := make([]byte, 0, len(token))
	for _, r := range token {
		out = append(out, byte(r))
	}
	return out
}

// bytesToken converts raw bytes to the byte-rune token representation.
func bytesToken(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// applyMerge rewrites a word applying one merge rule left to right.
func applyMerge(word []string, merge mergePair) []string {
	if len(word) < 2 {
		return word
	}

	merged := make([]string, 0, len(word))
	for i := 0; i < len(word); {
		if i < len(word)-1 && word[i] == merge.first && word[i+1] == merge.second {
			merged = append(merged, merge.first+merge.second)
			i += 2
		} else {
			merged = append(merged, word[i])
			i++
		}
	}
	return merged
}

// mostFrequentPair picks the pair with the highest count, breaking ties by
// lexicographic order so training is deterministic.
func mostFrequentPair(counts map[mergePair]int) (mergePair, int) {
	var best mergePair
	maxCount := 0
	for p, count := range counts {
		if count > maxCount {
			best = p
			maxCount = count
			continue
		}
		if count == maxCount && maxCount > 0 {
			if p.first < best.first || (p.first == best.first && p.second < best.second) {
				best = p
			}
		}
	}
	return best, maxCount
}
