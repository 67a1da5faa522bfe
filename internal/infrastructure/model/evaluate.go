package model

import (
	"math"
	"strings"
)

// Perplexity is exp of the mean cross-entropy over the examples.
func Perplexity(m *GPT, examples [][]int) float64 {
	return math.Exp(EvaluateLoss(m, examples))
}

const bleuMaxOrder = 4

// CorpusBLEU computes corpus-level BLEU up to 4-grams with brevity penalty.
// Candidates and references are whitespace-tokenized pairwise; the i-th
// candidate is scored against the i-th reference.
func CorpusBLEU(candidates, references []string) float64 {
	if len(candidates) == 0 || len(candidates) != len(references) {
		return 0
	}

	matchesByOrder := make([]int, bleuMaxOrder)
	totalsByOrder := make([]int, bleuMaxOrder)
	candidateLength := 0
	referenceLength := 0

	for i := range candidates {
		candTokens := strings.Fields(candidates[i])
		refTokens := strings.Fields(references[i])
		candidateLength += len(candTokens)
		referenceLength += len(refTokens)

		for order := 1; order <= bleuMaxOrder; order++ {
			candCounts := ngramCounts(candTokens, order)
			refCounts := ngramCounts(refTokens, order)

			for gram, count := range candCounts {
				totalsByOrder[order-1] += count
				if refCount, ok := refCounts[gram]; ok {
					// Clipped count
					if count < refCount {
						matchesByOrder[order-1] += count
					} else {
						matchesByOrder[order-1] += refCount
					}
				}
			}
		}
	}

	// Geometric mean of modified n-gram precisions
	logPrecisionSum := 0.0
	for order := 0; order < bleuMaxOrder; order++ {
		if totalsByOrder[order] == 0 || matchesByOrder[order] == 0 {
			return 0
		}
		precision := float64(matchesByOrder[order]) / float64(totalsByOrder[order])
		logPrecisionSum += math.Log(precision)
	}
	geoMean := math.Exp(logPrecisionSum / bleuMaxOrder)

	// Brevity penalty
	bp := 1.0
	if candidateLength < referenceLength {
		bp = math.Exp(1.0 - float64(referenceLength)/float64(candidateLength))
	}

	return bp * geoMean
}

func ngramCounts(tokens []string, order int) map[string]int {
	counts := make(map[string]int)
	for i := 0; i+order <= len(tokens); i++ {
		counts[strings.Join(tokens[i:i+order], " ")]++
	}
	return counts
}
