package model

import (
	"fmt"
	"math"
)

const layerNormEpsilon = 1e-5

// Config holds the transformer hyperparameters. FFHidden defaults to
// 4*EmbedDim when zero.
type Config struct {
	VocabSize int `json:"vocab_size"`
	SeqLen    int `json:"seq_len"`
	EmbedDim  int `json:"embed_dim"`
	NumHeads  int `json:"num_heads"`
	NumLayers int `json:"num_layers"`
	FFHidden  int `json:"ff_hidden"`
}

// Validate checks the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.VocabSize < 1 {
		return fmt.Errorf("vocab size must be positive, got %d", c.VocabSize)
	}
	if c.SeqLen < 1 {
		return fmt.Errorf("sequence length must be positive, got %d", c.SeqLen)
	}
	if c.NumHeads < 1 || c.NumLayers < 1 {
		return fmt.Errorf("heads and layers must be positive, got %d and %d", c.NumHeads, c.NumLayers)
	}
	if c.EmbedDim%c.NumHeads != 0 {
		return fmt.Errorf("embed dim %d must be divisible by num heads %d", c.EmbedDim, c.NumHeads)
	}
	return nil
}

func (c *Config) ffHidden() int {
	if c.FFHidden > 0 {
		return c.FFHidden
	}
	return 4 * c.EmbedDim
}

// LayerNorm normalizes activations per position across features.
type LayerNorm struct {
	gamma *Tensor
	beta  *Tensor
}

// NewLayerNorm creates a layer norm initialized to the identity transform.
func NewLayerNorm(dim int) *LayerNorm {
	gamma := NewTensor(dim)
	for i := range gamma.data {
		gamma.data[i] = 1.0
	}
	return &LayerNorm{gamma: gamma, beta: NewTensor(dim)}
}

// Forward applies layer normalization to a (seqLen, features) tensor.
func (ln *LayerNorm) Forward(x *Tensor) *Tensor {
	if len(x.shape) != 2 {
		panic("model: LayerNorm input must be 2D")
	}

	rows, cols := x.shape[0], x.shape[1]
	out := NewTensor(rows, cols)
	n := float64(cols)
	for r := 0; r < rows; r++ {
		mean := 0.0
		for c := 0; c < cols; c++ {
			mean += x.data[r*cols+c]
		}
		mean /= n

		variance := 0.0
		for c := 0; c < cols; c++ {
			diff := x.data[r*cols+c] - mean
			variance += diff * diff
		}
		variance /= n
		std := math.Sqrt(variance + layerNormEpsilon)

		for c := 0; c < cols; c++ {
			normalized := (x.data[r*cols+c] - mean) / std
			out.data[r*cols+c] = normalized*ln.gamma.data[c] + ln.beta.data[c]
		}
	}
	return out
}

// Attention implements multi-head causal self-attention.
type Attention struct {
	embedDim int
	numHeads int
	headDim  int

	wq, wk, wv, wo *Tensor
}

// AttentionCache stores the activations the backward pass needs.
type AttentionCache struct {
	input   *Tensor
	q, k, v *Tensor
	context *Tensor
}

// NewAttention creates an attention layer with scaled random projections.
func NewAttention(embedDim, numHeads int) *Attention {
	if embedDim%numHeads != 0 {
		panic(fmt.Sprintf("model: embedDim %d not divisible by numHeads %d", embedDim, numHeads))
	}

	scale := math.Sqrt(2.0 / float64(embedDim))
	wq := NewTensorRand(embedDim, embedDim)
	wk := NewTensorRand(embedDim, embedDim)
	wv := NewTensorRand(embedDim, embedDim)
	wo := NewTensorRand(embedDim, embedDim)
	for i := range wq.data {
		wq.data[i] *= scale
		wk.data[i] *= scale
		wv.data[i] *= scale
		wo.data[i] *= scale
	}

	return &Attention{
		embedDim: embedDim,
		numHeads: numHeads,
		headDim:  embedDim / numHeads,
		wq:       wq,
		wk:       wk,
		wv:       wv,
		wo:       wo,
	}
}

// Forward computes attention for x of shape (seqLen, embedDim).
func (a *Attention) Forward(x *Tensor) *Tensor {
	out, _ := a.ForwardWithCache(x)
	return out
}

// ForwardWithCache computes attention and keeps the activations needed to
// backpropagate.
func (a *Attention) ForwardWithCache(x *Tensor) (*Tensor, *AttentionCache) {
	seqLen := x.shape[0]

	cache := &AttentionCache{input: x.Clone()}
	cache.q = MatMul(x, a.wq)
	cache.k = MatMul(x, a.wk)
	cache.v = MatMul(x, a.wv)

	q := cache.q.Reshape(seqLen, a.numHeads, a.headDim)
	k := cache.k.Reshape(seqLen, a.numHeads, a.headDim)
	v := cache.v.Reshape(seqLen, a.numHeads, a.headDim)

	context := NewTensor(seqLen, a.embedDim)
	for h := 0; h < a.numHeads; h++ {
		qHead, kHead, vHead := extractHead(q, h, seqLen, a.headDim),
			extractHead(k, h, seqLen, a.headDim),
			extractHead(v, h, seqLen, a.headDim)

		weights := a.headWeights(qHead, kHead, seqLen)
		headContext := MatMul(weights, vHead)

		for i := 0; i < seqLen; i++ {
			for d := 0; d < a.headDim; d++ {
				context.data[i*a.embedDim+h*a.headDim+d] = headContext.data[i*a.headDim+d]
			}
		}
	}

	cache.context = context.Clone()
	return MatMul(context, a.wo), cache
}

// headWeights computes causal softmax attention weights for one head.
func (a *Attention) headWeights(qHead, kHead *Tensor, seqLen int) *Tensor {
	scores := MatMul(qHead, Transpose(kHead))
	scores = Scale(scores, 1.0/math.Sqrt(float64(a.headDim)))

	// Mask future positions before the softmax
	for i := 0; i < seqLen; i++ {
		for j := i + 1; j < seqLen; j++ {
			scores.data[i*seqLen+j] = -1e9
		}
	}
	return Softmax(scores)
}

// Backward propagates gradients through the attention layer and accumulates
// weight gradients. Returns the gradient with respect to the input.
func (a *Attention) Backward(gradOutput *Tensor, cache *AttentionCache) *Tensor {
	seqLen := cache.input.shape[0]

	gradContext, gradWo := MatMulBackward(cache.context, a.wo, gradOutput)
	a.wo.AccumulateGrad(gradWo)

	q := cache.q.Reshape(seqLen, a.numHeads, a.headDim)
	k := cache.k.Reshape(seqLen, a.numHeads, a.headDim)
	v := cache.v.Reshape(seqLen, a.numHeads, a.headDim)
	gradContext3 := gradContext.Reshape(seqLen, a.numHeads, a.headDim)

	gradQ := NewTensor(seqLen, a.numHeads, a.headDim)
	gradK := NewTensor(seqLen, a.numHeads, a.headDim)
	gradV := NewTensor(seqLen, a.numHeads, a.headDim)

	scale := 1.0 / math.Sqrt(float64(a.headDim))
	for h := 0; h < a.numHeads; h++ {
		qHead := extractHead(q, h, seqLen, a.headDim)
		kHead := extractHead(k, h, seqLen, a.headDim)
		vHead := extractHead(v, h, seqLen, a.headDim)
		gradContextHead := extractHead(gradContext3, h, seqLen, a.headDim)

		weights := a.headWeights(qHead, kHead, seqLen)

		gradWeights, gradVHead := MatMulBackward(weights, vHead, gradContextHead)
		gradScores := SoftmaxBackward(weights, gradWeights)
		gradScores = Scale(gradScores, scale)

		kT := Transpose(kHead)
		gradQHead, gradKT := MatMulBackward(qHead, kT, gradScores)
		gradKHead := Transpose(gradKT)

		storeHead(gradQ, gradQHead, h, seqLen, a.headDim)
		storeHead(gradK, gradKHead, h, seqLen, a.headDim)
		storeHead(gradV, gradVHead, h, seqLen, a.headDim)
	}

	gradQFlat := gradQ.Reshape(seqLen, a.embedDim)
	gradKFlat := gradK.Reshape(seqLen, a.embedDim)
	gradVFlat := gradV.Reshape(seqLen, a.embedDim)

	// The three projections share the input, so their gradients add
	gradInputQ, gradWq := MatMulBackward(cache.input, a.wq, gradQFlat)
	a.wq.AccumulateGrad(gradWq)
	gradInputK, gradWk := MatMulBackward(cache.input, a.wk, gradKFlat)
	a.wk.AccumulateGrad(gradWk)
	gradInputV, gradWv := MatMulBackward(cache.input, a.wv, gradVFlat)
	a.wv.AccumulateGrad(gradWv)

	return Add(Add(gradInputQ, gradInputK), gradInputV)
}

func extractHead(t *Tensor, h, seqLen, headDim int) *Tensor {
	out := NewTensor(seqLen, headDim)
	for i := 0; i < seqLen; i++ {
		for d := 0; d < headDim; d++ {
			out.data[i*headDim+d] = t.At(i, h, d)
		}
	}
	return out
}

func storeHead(dst, head *Tensor, h, seqLen, headDim int) {
	for i := 0; i < seqLen; i++ {
		for d := 0; d < headDim; d++ {
			dst.Set(head.data[i*headDim+d], i, h, d)
		}
	}
}

// FeedForward is the position-wise two-layer MLP with GELU activation.
type FeedForward struct {
	w1, b1 *Tensor
	w2, b2 *Tensor
}

// FFCache stores the activations the backward pass needs.
type FFCache struct {
	input         *Tensor
	preActivation *Tensor
	hidden        *Tensor
}

// NewFeedForward creates a feed-forward layer.
func NewFeedForward(embedDim, hiddenDim int) *FeedForward {
	return &FeedForward{
		w1: NewTensorRand(embedDim, hiddenDim),
		b1: NewTensor(hiddenDim),
		w2: NewTensorRand(hiddenDim, embedDim),
		b2: NewTensor(embedDim),
	}
}

// Forward applies the feed-forward network to (seqLen, embedDim).
func (ff *FeedForward) Forward(x *Tensor) *Tensor {
	out, _ := ff.ForwardWithCache(x)
	return out
}

// ForwardWithCache applies the network keeping activations for backward.
func (ff *FeedForward) ForwardWithCache(x *Tensor) (*Tensor, *FFCache) {
	cache := &FFCache{input: x.Clone()}

	hidden := addBias(MatMul(x, ff.w1), ff.b1)
	cache.preActivation = hidden.Clone()

	hidden = GELU(hidden)
	cache.hidden = hidden.Clone()

	return addBias(MatMul(hidden, ff.w2), ff.b2), cache
}

// Backward propagates gradients through the feed-forward layer.
func (ff *FeedForward) Backward(gradOutput *Tensor, cache *FFCache) *Tensor {
	gradHidden, gradW2 := MatMulBackward(cache.hidden, ff.w2, gradOutput)
	ff.w2.AccumulateGrad(gradW2)
	accumulateBiasGrad(ff.b2, gradOutput)

	gradPreActivation := GELUBackward(cache.preActivation, gradHidden)

	gradInput, gradW1 := MatMulBackward(cache.input, ff.w1, gradPreActivation)
	ff.w1.AccumulateGrad(gradW1)
	accumulateBiasGrad(ff.b1, gradPreActivation)

	return gradInput
}

// addBias adds a bias vector to each row of a 2D tensor.
func addBias(x, bias *Tensor) *Tensor {
	rows, cols := x.shape[0], x.shape[1]
	out := x.Clone()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[r*cols+c] += bias.data[c]
		}
	}
	return out
}

// accumulateBiasGrad sums the row gradients into the bias gradient.
func accumulateBiasGrad(bias, grad *Tensor) {
	cols := bias.Size()
	for i := range grad.data {
		bias.grad[i%cols] += grad.data[i]
	}
}

// TransformerBlock is a pre-norm block:
//
//	x = x + Attention(LayerNorm(x))
//	x = x + FeedForward(LayerNorm(x))
type TransformerBlock struct {
	ln1  *LayerNorm
	attn *Attention
	ln2  *LayerNorm
	ff   *FeedForward
}

// BlockCache stores the activations of one block's forward pass.
type BlockCache struct {
	input     *Tensor
	ln1Out    *Tensor
	attnCache *AttentionCache
	residual1 *Tensor
	ln2Out    *Tensor
	ffCache   *FFCache
}

// NewTransformerBlock creates a block for the given configuration.
func NewTransformerBlock(config Config) *TransformerBlock {
	return &TransformerBlock{
		ln1:  NewLayerNorm(config.EmbedDim),
		attn: NewAttention(config.EmbedDim, config.NumHeads),
		ln2:  NewLayerNorm(config.EmbedDim),
		ff:   NewFeedForward(config.EmbedDim, config.ffHidden()),
	}
}

// ForwardWithCache applies the block keeping activations for backward.
func (tb *TransformerBlock) ForwardWithCache(x *Tensor) (*Tensor, *BlockCache) {
	cache := &BlockCache{input: x.Clone()}

	cache.ln1Out = tb.ln1.Forward(x)
	attnOut, attnCache := tb.attn.ForwardWithCache(cache.ln1Out)
	cache.attnCache = attnCache
	x = Add(x, attnOut)
	cache.residual1 = x.Clone()

	cache.ln2Out = tb.ln2.Forward(x)
	ffOut, ffCache := tb.ff.ForwardWithCache(cache.ln2Out)
	cache.ffCache = ffCache
	x = Add(x, ffOut)

	return x, cache
}

// Backward propagates gradients through the block.
func (tb *TransformerBlock) Backward(gradOut *Tensor, cache *BlockCache) *Tensor {
	// Feed-forward branch
	gradLn2Out := tb.ff.Backward(gradOut, cache.ffCache)
	gradResidual1, gradGamma2, gradBeta2 := LayerNormBackward(cache.residual1, tb.ln2.gamma, gradLn2Out, layerNormEpsilon)
	tb.ln2.gamma.AccumulateGrad(gradGamma2)
	tb.ln2.beta.AccumulateGrad(gradBeta2)
	gradResidual1 = Add(gradResidual1, gradOut)

	// Attention branch
	gradLn1Out := tb.attn.Backward(gradResidual1, cache.attnCache)
	gradInput, gradGamma1, gradBeta1 := LayerNormBackward(cache.input, tb.ln1.gamma, gradLn1Out, layerNormEpsilon)
	tb.ln1.gamma.AccumulateGrad(gradGamma1)
	tb.ln1.beta.AccumulateGrad(gradBeta1)

	return Add(gradInput, gradResidual1)
}

// GPT is a decoder-only transformer language model.
type GPT struct {
	config Config

	tokenEmbed *Tensor // (vocabSize, embedDim)
	posEmbed   *Tensor // (seqLen, embedDim)
	blocks     []*TransformerBlock
	lnFinal    *LayerNorm
	lmHead     *Tensor // (embedDim, vocabSize)
}

// ForwardCache stores the activations of one full forward pass.
type ForwardCache struct {
	tokenIDs     []int
	blockCaches  []*BlockCache
	lnFinalInput *Tensor
	lnFinalOut   *Tensor
}

// NewGPT creates a model with randomly initialized weights.
func NewGPT(config Config) *GPT {
	tokenEmbed := NewTensorRand(config.VocabSize, config.EmbedDim)
	posEmbed := NewTensorRand(config.SeqLen, config.EmbedDim)

	blocks := make([]*TransformerBlock, config.NumLayers)
	for i := range blocks {
		blocks[i] = NewTransformerBlock(config)
	}

	return &GPT{
		config:     config,
		tokenEmbed: tokenEmbed,
		posEmbed:   posEmbed,
		blocks:     blocks,
		lnFinal:    NewLayerNorm(config.EmbedDim),
		lmHead:     NewTensorRand(config.EmbedDim, config.VocabSize),
	}
}

// Config returns the model configuration.
func (g *GPT) Config() Config {
	return g.config
}

// Forward computes (seqLen, vocabSize) logits for the input token ids.
func (g *GPT) Forward(inputIDs []int) *Tensor {
	logits, _ := g.ForwardWithCache(inputIDs)
	return logits
}

// ForwardWithCache computes logits keeping activations for backward.
func (g *GPT) ForwardWithCache(inputIDs []int) (*Tensor, *ForwardCache) {
	seqLen := len(inputIDs)
	if seqLen == 0 {
		panic("model: empty input sequence")
	}
	if seqLen > g.config.SeqLen {
		panic(fmt.Sprintf("model: sequence length %d exceeds maximum %d", seqLen, g.config.SeqLen))
	}

	cache := &ForwardCache{
		tokenIDs:    inputIDs,
		blockCaches: make([]*BlockCache, len(g.blocks)),
	}

	x := NewTensor(seqLen, g.config.EmbedDim)
	for i, tokenID := range inputIDs {
		if tokenID < 0 || tokenID >= g.config.VocabSize {
			panic(fmt.Sprintf("model: token id %d out of vocabulary range [0,%d)", tokenID, g.config.VocabSize))
		}
		for d := 0; d < g.config.EmbedDim; d++ {
			x.data[i*g.config.EmbedDim+d] = g.tokenEmbed.At(tokenID, d) + g.posEmbed.At(i, d)
		}
	}

	for i, block := range g.blocks {
		x, cache.blockCaches[i] = block.ForwardWithCache(x)
	}

	cache.lnFinalInput = x.Clone()
	x = g.lnFinal.Forward(x)
	cache.lnFinalOut = x.Clone()

	return MatMul(x, g.lmHead), cache
}

// Backward propagates the logit gradient through the whole model,
// accumulating parameter gradients.
func (g *GPT) Backward(gradLogits *Tensor, cache *ForwardCache) {
	gradLmHead := MatMul(Transpose(cache.lnFinalOut), gradLogits)
	g.lmHead.AccumulateGrad(gradLmHead)

	gradX := MatMul(gradLogits, Transpose(g.lmHead))

	gradX, gradGamma, gradBeta := LayerNormBackward(cache.lnFinalInput, g.lnFinal.gamma, gradX, layerNormEpsilon)
	g.lnFinal.gamma.AccumulateGrad(gradGamma)
	g.lnFinal.beta.AccumulateGrad(gradBeta)

	for i := len(g.blocks) - 1; i >= 0; i-- {
		gradX = g.blocks[i].Backward(gradX, cache.blockCaches[i])
	}

	embedDim := g.config.EmbedDim
	for i, tokenID := range cache.tokenIDs {
		for d := 0; d < embedDim; d++ {
			grad := gradX.data[i*embedDim+d]
			g.tokenEmbed.grad[tokenID*embedDim+d] += grad
			g.posEmbed.grad[i*embedDim+d] += grad
		}
	}
}

// Parameters returns all trainable tensors.
func (g *GPT) Parameters() []*Tensor {
	params := []*Tensor{g.tokenEmbed, g.posEmbed}
	for _, block := range g.blocks {
		params = append(params,
			block.ln1.gamma, block.ln1.beta,
			block.attn.wq, block.attn.wk, block.attn.wv, block.attn.wo,
			block.ln2.gamma, block.ln2.beta,
			block.ff.w1, block.ff.b1, block.ff.w2, block.ff.b2,
		)
	}
	params = append(params, g.lnFinal.gamma, g.lnFinal.beta, g.lmHead)
	return params
}

// NumParameters returns the total trainable parameter count.
func (g *GPT) NumParameters() int64 {
	var total int64
	for _, p := range g.Parameters() {
		total += int64(p.Size())
	}
	return total
}
