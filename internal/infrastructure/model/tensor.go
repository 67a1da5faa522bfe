package model

import (
	"fmt"
	"math"
	"math/rand"
)

// Tensor is a dense float64 array in row-major order with a gradient buffer
// of the same size. It is not safe for concurrent use.
type Tensor struct {
	data  []float64
	shape []int
	grad  []float64
}

// NewTensor creates a zero tensor with the given shape. Shape errors are
// programmer bugs, so they panic.
func NewTensor(shape ...int) *Tensor {
	if len(shape) == 0 {
		panic("model: tensor shape cannot be empty")
	}

	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("model: shape[%d] must be positive, got %d", i, dim))
		}
		size *= dim
	}

	shapeCopy := make([]int, len(shape))
	copy(shapeCopy, shape)

	return &Tensor{
		data:  make([]float64, size),
		shape: shapeCopy,
		grad:  make([]float64, size),
	}
}

// NewTensorRand creates a tensor initialized from N(0, 0.02) via Box-Muller.
func NewTensorRand(shape ...int) *Tensor {
	t := NewTensor(shape...)
	for i := 0; i < len(t.data); i += 2 {
		// 1-Float64() lies in (0, 1], keeping Log away from zero.
		u1, u2 := 1-rand.Float64(), rand.Float64()
		mag := 0.02 * math.Sqrt(-2*math.Log(u1))
		t.data[i] = mag * math.Cos(2*math.Pi*u2)
		if i+1 < len(t.data) {
			t.data[i+1] = mag * math.Sin(2*math.Pi*u2)
		}
	}
	return t
}

// Shape returns a copy of the tensor shape.
func (t *Tensor) Shape() []int {
	shape := make([]int, len(t.shape))
	copy(shape, t.shape)
	return shape
}

// Size returns the number of elements.
func (t *Tensor) Size() int {
	return len(t.data)
}

// At returns the element at the given indices.
func (t *Tensor) At(indices ...int) float64 {
	return t.data[t.flatIndex(indices)]
}

// Set stores value at the given indices.
func (t *Tensor) Set(value float64, indices ...int) {
	t.data[t.flatIndex(indices)] = value
}

func (t *Tensor) flatIndex(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("model: expected %d indices, got %d", len(t.shape), len(indices)))
	}
	idx := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= t.shape[i] {
			panic(fmt.Sprintf("model: index[%d]=%d out of bounds [0,%d)", i, indices[i], t.shape[i]))
		}
		idx += indices[i] * stride
		stride *= t.shape[i]
	}
	return idx
}

// ZeroGrad clears the gradient buffer.
func (t *Tensor) ZeroGrad() {
	for i := range t.grad {
		t.grad[i] = 0
	}
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	clone := NewTensor(t.shape...)
	copy(clone.data, t.data)
	copy(clone.grad, t.grad)
	return clone
}

// Reshape returns a view with a different shape sharing the same data.
func (t *Tensor) Reshape(newShape ...int) *Tensor {
	newSize := 1
	for _, dim := range newShape {
		newSize *= dim
	}
	if newSize != len(t.data) {
		panic(fmt.Sprintf("model: cannot reshape size %d to %v", len(t.data), newShape))
	}

	shapeCopy := make([]int, len(newShape))
	copy(shapeCopy, newShape)

	return &Tensor{
		data:  t.data,
		shape: shapeCopy,
		grad:  t.grad,
	}
}

// AccumulateGrad adds grad's data into this tensor's gradient buffer.
func (t *Tensor) AccumulateGrad(grad *Tensor) {
	if !shapeEqual(t.shape, grad.shape) {
		panic("model: AccumulateGrad shape mismatch")
	}
	for i := range t.grad {
		t.grad[i] += grad.data[i]
	}
}

// Add performs element-wise addition.
func Add(a, b *Tensor) *Tensor {
	if !shapeEqual(a.shape, b.shape) {
		panic(fmt.Sprintf("model: cannot add shapes %v and %v", a.shape, b.shape))
	}
	out := NewTensor(a.shape...)
	for i := range out.data {
		out.data[i] = a.data[i] + b.data[i]
	}
	return out
}

// Scale multiplies all elements by a scalar.
func Scale(a *Tensor, scalar float64) *Tensor {
	out := NewTensor(a.shape...)
	for i := range out.data {
		out.data[i] = a.data[i] * scalar
	}
	return out
}

// MatMul multiplies A (M, K) by B (K, N) into (M, N).
func MatMul(a, b *Tensor) *Tensor {
	if len(a.shape) != 2 || len(b.shape) != 2 {
		panic("model: MatMul requires 2D tensors")
	}
	m, k := a.shape[0], a.shape[1]
	k2, n := b.shape[0], b.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("model: MatMul inner dimensions mismatch %d vs %d", k, k2))
	}

	out := NewTensor(m, n)
	for i := 0; i < m; i++ {
		for l := 0; l < k; l++ {
			av := a.data[i*k+l]
			if av == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				out.data[i*n+j] += av * b.data[l*n+j]
			}
		}
	}
	return out
}

// Transpose returns the transpose of a 2D matrix.
func Transpose(a *Tensor) *Tensor {
	if len(a.shape) != 2 {
		panic("model: Transpose requires 2D tensor")
	}
	m, n := a.shape[0], a.shape[1]
	out := NewTensor(n, m)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out.data[j*m+i] = a.data[i*n+j]
		}
	}
	return out
}

const (
	geluSqrt2OverPi = 0.7978845608028654
	geluCoeff       = 0.044715
)

// GELU applies the tanh approximation of the Gaussian error linear unit.
func GELU(x *Tensor) *Tensor {
	out := NewTensor(x.shape...)
	for i := range x.data {
		v := x.data[i]
		inner := geluSqrt2OverPi * (v + geluCoeff*v*v*v)
		out.data[i] = 0.5 * v * (1.0 + math.Tanh(inner))
	}
	return out
}

// Softmax converts each row of a 2D tensor to probabilities. Subtracts the
// row max before exponentiating for numerical stability.
func Softmax(x *Tensor) *Tensor {
	if len(x.shape) != 2 {
		panic("model: Softmax requires 2D tensor")
	}

	rows, cols := x.shape[0], x.shape[1]
	out := NewTensor(rows, cols)
	for r := 0; r < rows; r++ {
		maxVal := x.data[r*cols]
		for c := 1; c < cols; c++ {
			if v := x.data[r*cols+c]; v > maxVal {
				maxVal = v
			}
		}

		sum := 0.0
		for c := 0; c < cols; c++ {
			e := math.Exp(x.data[r*cols+c] - maxVal)
			out.data[r*cols+c] = e
			sum += e
		}
		for c := 0; c < cols; c++ {
			out.data[r*cols+c] /= sum
		}
	}
	return out
}

func shapeEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
