package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Optimizer names accepted in TrainingConfig.
const (
	OptimizerAdam = "adam"
	OptimizerSGD  = "sgd"
)

// TrainingConfig holds the optimization hyperparameters.
type TrainingConfig struct {
	LearningRate      float64
	WeightDecay       float64
	GradientClipValue float64

	BatchSize int
	NumEpochs int
	MaxSteps  int // 0 means no cap

	WarmupSteps int
	DecaySteps  int
	MinLR       float64

	Optimizer   string
	AdamBeta1   float64
	AdamBeta2   float64
	AdamEpsilon float64
}

// DefaultTrainingConfig returns sensible defaults for small models.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		LearningRate:      3e-4,
		WeightDecay:       0.01,
		GradientClipValue: 1.0,

		BatchSize: 32,
		NumEpochs: 10,

		WarmupSteps: 100,
		DecaySteps:  1000,
		MinLR:       1e-5,

		Optimizer:   OptimizerAdam,
		AdamBeta1:   0.9,
		AdamBeta2:   0.999,
		AdamEpsilon: 1e-8,
	}
}

// Optimizer updates parameters from their accumulated gradients.
type Optimizer interface {
	Step(params []*Tensor, lr float64)
	ZeroGrad(params []*Tensor)
}

// SGDOptimizer implements plain stochastic gradient descent with L2 decay.
type SGDOptimizer struct {
	weightDecay float64
}

// NewSGDOptimizer creates an SGD optimizer.
func NewSGDOptimizer(weightDecay float64) *SGDOptimizer {
	return &SGDOptimizer{weightDecay: weightDecay}
}

// Step updates parameters: param -= lr * (grad + weightDecay*param).
func (opt *SGDOptimizer) Step(params []*Tensor, lr float64) {
	for _, p := range params {
		for i := range p.data {
			grad := p.grad[i] + opt.weightDecay*p.data[i]
			p.data[i] -= lr * grad
		}
	}
}

// ZeroGrad clears all gradients.
func (opt *SGDOptimizer) ZeroGrad(params []*Tensor) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// AdamOptimizer implements Adam with bias correction.
type AdamOptimizer struct {
	beta1       float64
	beta2       float64
	epsilon     float64
	weightDecay float64

	m []*Tensor
	v []*Tensor
	t int
}

// NewAdamOptimizer creates an Adam optimizer with moment state matching the
// parameter shapes.
func NewAdamOptimizer(params []*Tensor, beta1, beta2, epsilon, weightDecay float64) *AdamOptimizer {
	m := make([]*Tensor, len(params))
	v := make([]*Tensor, len(params))
	for i, p := range params {
		m[i] = NewTensor(p.shape...)
		v[i] = NewTensor(p.shape...)
	}
	return &AdamOptimizer{
		beta1:       beta1,
		beta2:       beta2,
		epsilon:     epsilon,
		weightDecay: weightDecay,
		m:           m,
		v:           v,
	}
}

// Step performs one Adam update.
func (opt *AdamOptimizer) Step(params []*Tensor, lr float64) {
	opt.t++
	bias1 := 1.0 - math.Pow(opt.beta1, float64(opt.t))
	bias2 := 1.0 - math.Pow(opt.beta2, float64(opt.t))

	for i, p := range params {
		for j := range p.data {
			grad := p.grad[j] + opt.weightDecay*p.data[j]

			opt.m[i].data[j] = opt.beta1*opt.m[i].data[j] + (1.0-opt.beta1)*grad
			opt.v[i].data[j] = opt.beta2*opt.v[i].data[j] + (1.0-opt.beta2)*grad*grad

			mHat := opt.m[i].data[j] / bias1
			vHat := opt.v[i].data[j] / bias2

			p.data[j] -= lr * mHat / (math.Sqrt(vHat) + opt.epsilon)
		}
	}
}

// ZeroGrad clears all gradients.
func (opt *AdamOptimizer) ZeroGrad(params []*Tensor) {
	for _, p := range params {
		p.ZeroGrad()
	}
}

// NewOptimizer builds the optimizer named by the config.
func NewOptimizer(params []*Tensor, config TrainingConfig) (Optimizer, error) {
	switch config.Optimizer {
	case OptimizerAdam, "":
		return NewAdamOptimizer(params, config.AdamBeta1, config.AdamBeta2, config.AdamEpsilon, config.WeightDecay), nil
	case OptimizerSGD:
		return NewSGDOptimizer(config.WeightDecay), nil
	default:
		return nil, fmt.Errorf("unsupported optimizer: %s", config.Optimizer)
	}
}

// LRScheduler produces a linear warmup followed by cosine decay to MinLR.
type LRScheduler struct {
	baseLR      float64
	minLR       float64
	warmupSteps int
	decaySteps  int
	step        int
}

// NewLRScheduler creates a scheduler.
func NewLRScheduler(baseLR, minLR float64, warmupSteps, decaySteps int) *LRScheduler {
	return &LRScheduler{
		baseLR:      baseLR,
		minLR:       minLR,
		warmupSteps: warmupSteps,
		decaySteps:  decaySteps,
	}
}

// NextLR advances the schedule one step and returns the learning rate.
func (sched *LRScheduler) NextLR() float64 {
	sched.step++

	if sched.warmupSteps > 0 && sched.step < sched.warmupSteps {
		return sched.baseLR * float64(sched.step) / float64(sched.warmupSteps)
	}
	if sched.step < sched.decaySteps {
		progress := float64(sched.step-sched.warmupSteps) / float64(sched.decaySteps-sched.warmupSteps)
		cosine := 0.5 * (1.0 + math.Cos(math.Pi*progress))
		return sched.minLR + (sched.baseLR-sched.minLR)*cosine
	}
	return sched.minLR
}

// CrossEntropyLoss computes the mean cross-entropy between (batch, vocab)
// logits and target token ids using the log-sum-exp trick.
func CrossEntropyLoss(logits *Tensor, targets []int) float64 {
	if len(logits.shape) != 2 {
		panic("model: CrossEntropyLoss requires 2D logits")
	}

	rows, cols := logits.shape[0], logits.shape[1]
	if len(targets) != rows {
		panic(fmt.Sprintf("model: target length %d != batch size %d", len(targets), rows))
	}

	totalLoss := 0.0
	for r := 0; r < rows; r++ {
		maxLogit := logits.data[r*cols]
		for c := 1; c < cols; c++ {
			if v := logits.data[r*cols+c]; v > maxLogit {
				maxLogit = v
			}
		}

		sumExp := 0.0
		for c := 0; c < cols; c++ {
			sumExp += math.Exp(logits.data[r*cols+c] - maxLogit)
		}
		logSumExp := maxLogit + math.Log(sumExp)

		totalLoss += logSumExp - logits.data[r*cols+targets[r]]
	}
	return totalLoss / float64(rows)
}

// TrainStep runs forward, backward and one optimizer update over a batch of
// input/target sequences. Returns the mean loss of the batch.
func TrainStep(m *GPT, inputs, targets [][]int, optimizer Optimizer, lr, clipValue float64) float64 {
	params := m.Parameters()
	optimizer.ZeroGrad(params)

	totalLoss := 0.0
	for i := range inputs {
		logits, cache := m.ForwardWithCache(inputs[i])
		totalLoss += CrossEntropyLoss(logits, targets[i])

		gradLogits := CrossEntropyBackward(logits, targets[i])
		m.Backward(gradLogits, cache)
	}

	if clipValue > 0 {
		ClipGradients(params, clipValue)
	}
	optimizer.Step(params, lr)

	return totalLoss / float64(len(inputs))
}

// ClipGradients rescales all gradients when their global norm exceeds maxNorm.
func ClipGradients(params []*Tensor, maxNorm float64) {
	globalNorm := 0.0
	for _, p := range params {
		for _, g := range p.grad {
			globalNorm += g * g
		}
	}
	globalNorm = math.Sqrt(globalNorm)

	if globalNorm > maxNorm {
		scale := maxNorm / globalNorm
		for _, p := range params {
			for i := range p.grad {
				p.grad[i] *= scale
			}
		}
	}
}

// ShuffleExamples shuffles training examples in place.
func ShuffleExamples(examples [][]int) {
	rand.Shuffle(len(examples), func(i, j int) {
		examples[i], examples[j] = examples[j], examples[i]
	})
}

// SplitExample cuts one seqLen+1 example into its input and shifted target.
func SplitExample(example []int) (input, target []int) {
	return example[:len(example)-1], example[1:]
}

// EvaluateLoss computes the mean cross-entropy over examples without
// touching gradients.
func EvaluateLoss(m *GPT, examples [][]int) float64 {
	if len(examples) == 0 {
		return 0
	}

	totalLoss := 0.0
	for _, example := range examples {
		input, target := SplitExample(example)
		logits := m.Forward(input)
		totalLoss += CrossEntropyLoss(logits, target)
	}
	return totalLoss / float64(len(examples))
}
