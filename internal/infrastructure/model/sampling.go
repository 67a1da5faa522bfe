package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// SampleConfig controls next-token sampling. Temperature 0 is greedy
// decoding; TopK and TopP are disabled at zero.
type SampleConfig struct {
	Temperature float64
	TopK        int
	TopP        float64
}

// Generate produces up to maxTokens new tokens greedily.
func (g *GPT) Generate(prompt []int, maxTokens int) ([]int, error) {
	return g.GenerateWithSampling(prompt, maxTokens, &SampleConfig{})
}

// GenerateWithSampling produces tokens autoregressively, returning the prompt
// plus the generated continuation.
func (g *GPT) GenerateWithSampling(prompt []int, maxTokens int, config *SampleConfig) ([]int, error) {
	tokens := make([]int, len(prompt))
	copy(tokens, prompt)

	err := g.GenerateStream(prompt, maxTokens, config, func(id int) error {
		tokens = append(tokens, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// GenerateStream produces tokens one at a time, invoking emit for each new
// token id. Generation stops at maxTokens, at the context window, or when
// emit returns an error. A prompt that already fills the context window is
// rejected so the caller never gets an empty completion with no explanation.
func (g *GPT) GenerateStream(prompt []int, maxTokens int, config *SampleConfig, emit func(id int) error) error {
	if len(prompt) >= g.config.SeqLen {
		return fmt.Errorf("prompt length %d exceeds context window %d", len(prompt), g.config.SeqLen-1)
	}

	tokens := make([]int, len(prompt))
	copy(tokens, prompt)

	for i := 0; i < maxTokens; i++ {
		if len(tokens) >= g.config.SeqLen {
			break
		}

		logits := g.Forward(tokens)

		lastPos := len(tokens) - 1
		lastLogits := make([]float64, g.config.VocabSize)
		for j := 0; j < g.config.VocabSize; j++ {
			lastLogits[j] = logits.At(lastPos, j)
		}

		next := sampleToken(lastLogits, config)
		if err := emit(next); err != nil {
			return err
		}
		tokens = append(tokens, next)
	}

	return nil
}

// sampleToken picks the next token from logits per the sampling config.
func sampleToken(logits []float64, config *SampleConfig) int {
	if config.Temperature == 0.0 {
		return argmax(logits)
	}

	scaled := make([]float64, len(logits))
	for i, logit := range logits {
		scaled[i] = logit / config.Temperature
	}

	probs := softmaxSlice(scaled)
	if config.TopK > 0 {
		probs = applyTopK(probs, config.TopK)
	}
	if config.TopP > 0.0 && config.TopP < 1.0 {
		probs = applyTopP(probs, config.TopP)
	}

	return sampleFromDistribution(probs)
}

func argmax(data []float64) int {
	maxIdx := 0
	for i := 1; i < len(data); i++ {
		if data[i] > data[maxIdx] {
			maxIdx = i
		}
	}
	return maxIdx
}

func softmaxSlice(logits []float64) []float64 {
	maxLogit := logits[0]
	for _, logit := range logits {
		if logit > maxLogit {
			maxLogit = logit
		}
	}

	expSum := 0.0
	probs := make([]float64, len(logits))
	for i, logit := range logits {
		probs[i] = math.Exp(logit - maxLogit)
		expSum += probs[i]
	}
	for i := range probs {
		probs[i] /= expSum
	}
	return probs
}

// applyTopK keeps the k most likely tokens and renormalizes.
func applyTopK(probs []float64, k int) []float64 {
	if k <= 0 || k >= len(probs) {
		return probs
	}

	indexed := sortedByProb(probs)

	filtered := make([]float64, len(probs))
	totalProb := 0.0
	for i := 0; i < k; i++ {
		filtered[indexed[i].index] = indexed[i].prob
		totalProb += indexed[i].prob
	}
	renormalize(filtered, totalProb)
	return filtered
}

// applyTopP keeps the smallest nucleus of tokens whose cumulative
// probability reaches p, then renormalizes.
func applyTopP(probs []float64, p float64) []float64 {
	if p <= 0.0 || p >= 1.0 {
		return probs
	}

	indexed := sortedByProb(probs)

	filtered := make([]float64, len(probs))
	cumProb := 0.0
	totalProb := 0.0
	for _, item := range indexed {
		if cumProb >= p {
			break
		}
		filtered[item.index] = item.prob
		cumProb += item.prob
		totalProb += item.prob
	}
	renormalize(filtered, totalProb)
	return filtered
}

type indexedProb struct {
	index int
	prob  float64
}

func sortedByProb(probs []float64) []indexedProb {
	indexed := make([]indexedProb, len(probs))
	for i, p := range probs {
		indexed[i] = indexedProb{i, p}
	}
	sort.Slice(indexed, func(i, j int) bool {
		return indexed[i].prob > indexed[j].prob
	})
	return indexed
}

func renormalize(probs []float64, total float64) {
	if total <= 0 {
		return
	}
	for i := range probs {
		probs[i] /= total
	}
}

func sampleFromDistribution(probs []float64) int {
	r := rand.Float64()
	cumProb := 0.0
	for i, prob := range probs {
		cumProb += prob
		if r < cumProb {
			return i
		}
	}
	return len(probs) - 1
}
