//go:build unit
// +build unit

package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyConfig() Config {
	return Config{
		VocabSize: 16,
		SeqLen:    8,
		EmbedDim:  8,
		NumHeads:  2,
		NumLayers: 1,
		FFHidden:  16,
	}
}

func TestCrossEntropyLoss_UniformLogits(t *testing.T) {
	logits := NewTensor(2, 4)

	loss := CrossEntropyLoss(logits, []int{0, 3})

	// Uniform distribution over 4 classes: loss = ln(4)
	assert.InDelta(t, math.Log(4), loss, 1e-12)
}

func TestCrossEntropyLoss_ConfidentCorrect(t *testing.T) {
	logits := NewTensor(1, 4)
	logits.data = []float64{100, 0, 0, 0}

	loss := CrossEntropyLoss(logits, []int{0})

	assert.InDelta(t, 0.0, loss, 1e-9)
}

func TestCrossEntropyBackward_SumsToZeroPerRow(t *testing.T) {
	logits := NewTensor(2, 5)
	for i := range logits.data {
		logits.data[i] = float64(i%5) * 0.3
	}

	grad := CrossEntropyBackward(logits, []int{1, 4})

	for r := 0; r < 2; r++ {
		sum := 0.0
		for c := 0; c < 5; c++ {
			sum += grad.At(r, c)
		}
		assert.InDelta(t, 0.0, sum, 1e-12)
	}
}

func TestLRScheduler_WarmupThenDecay(t *testing.T) {
	sched := NewLRScheduler(1e-3, 1e-5, 10, 100)

	first := sched.NextLR()
	assert.InDelta(t, 1e-4, first, 1e-12)

	// Advance to the end of warmup
	var lr float64
	for i := 0; i < 9; i++ {
		lr = sched.NextLR()
	}
	assert.InDelta(t, 1e-3, lr, 1e-4)

	// Decay phase ends at the floor
	for i := 0; i < 200; i++ {
		lr = sched.NextLR()
	}
	assert.InDelta(t, 1e-5, lr, 1e-12)
}

func TestClipGradients(t *testing.T) {
	p := NewTensor(4)
	p.grad = []float64{3, 4, 0, 0} // norm 5

	ClipGradients([]*Tensor{p}, 1.0)

	norm := 0.0
	for _, g := range p.grad {
		norm += g * g
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-12)
}

func TestClipGradients_NoOpBelowThreshold(t *testing.T) {
	p := NewTensor(2)
	p.grad = []float64{0.3, 0.4}

	ClipGradients([]*Tensor{p}, 1.0)

	assert.Equal(t, []float64{0.3, 0.4}, p.grad)
}

func TestTrainStep_ReducesLossOnRepeatedBatch(t *testing.T) {
	rand.Seed(7)
	m := NewGPT(tinyConfig())

	// A single repetitive pattern the model should memorize quickly
	example := []int{1, 2, 3, 4, 1, 2, 3, 4, 1}
	input, target := SplitExample(example)
	inputs := [][]int{input}
	targets := [][]int{target}

	optimizer, err := NewOptimizer(m.Parameters(), DefaultTrainingConfig())
	require.NoError(t, err)

	firstLoss := TrainStep(m, inputs, targets, optimizer, 1e-2, 1.0)
	var lastLoss float64
	for i := 0; i < 30; i++ {
		lastLoss = TrainStep(m, inputs, targets, optimizer, 1e-2, 1.0)
	}

	assert.Less(t, lastLoss, firstLoss)
}

func TestNewOptimizer_Unsupported(t *testing.T) {
	config := DefaultTrainingConfig()
	config.Optimizer = "rmsprop"

	_, err := NewOptimizer(nil, config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported optimizer")
}

func TestSGDOptimizer_Step(t *testing.T) {
	p := NewTensor(2)
	p.data = []float64{1.0, -1.0}
	p.grad = []float64{0.5, 0.5}

	opt := NewSGDOptimizer(0)
	opt.Step([]*Tensor{p}, 0.1)

	assert.InDelta(t, 0.95, p.data[0], 1e-12)
	assert.InDelta(t, -1.05, p.data[1], 1e-12)
}

func TestGPT_NumParameters(t *testing.T) {
	m := NewGPT(tinyConfig())

	var expected int64
	for _, p := range m.Parameters() {
		expected += int64(p.Size())
	}
	assert.Equal(t, expected, m.NumParameters())
	assert.Greater(t, m.NumParameters(), int64(0))
}

func TestEvaluateLoss_EmptyExamples(t *testing.T) {
	m := NewGPT(tinyConfig())

	assert.Equal(t, 0.0, EvaluateLoss(m, nil))
}

func TestGradientCheck_LmHead(t *testing.T) {
	rand.Seed(11)
	m := NewGPT(tinyConfig())

	input := []int{3, 7, 2}
	target := []int{7, 2, 9}

	// Analytic gradient
	for _, p := range m.Parameters() {
		p.ZeroGrad()
	}
	logits, cache := m.ForwardWithCache(input)
	gradLogits := CrossEntropyBackward(logits, target)
	m.Backward(gradLogits, cache)
	analytic := m.lmHead.grad[0]

	// Numerical gradient via central difference
	const eps = 1e-5
	orig := m.lmHead.data[0]
	m.lmHead.data[0] = orig + eps
	lossPlus := CrossEntropyLoss(m.Forward(input), target)
	m.lmHead.data[0] = orig - eps
	lossMinus := CrossEntropyLoss(m.Forward(input), target)
	m.lmHead.data[0] = orig

	numerical := (lossPlus - lossMinus) / (2 * eps)
	assert.InDelta(t, numerical, analytic, 1e-6)
}
