package model

import "math"

// MatMulBackward computes gradients for C = A @ B.
// gradA = gradC @ B^T, gradB = A^T @ gradC.
func MatMulBackward(a, b, gradC *Tensor) (gradA, gradB *Tensor) {
	gradA = MatMul(gradC, Transpose(b))
	gradB = MatMul(Transpose(a), gradC)
	return gradA, gradB
}

// GELUBackward computes the gradient of the tanh-approximated GELU.
func GELUBackward(x, gradY *Tensor) *Tensor {
	gradX := NewTensor(x.shape...)
	for i := range x.data {
		v := x.data[i]
		inner := geluSqrt2OverPi * (v + geluCoeff*v*v*v)
		tanhInner := math.Tanh(inner)
		tanhDeriv := 1.0 - tanhInner*tanhInner
		innerDeriv := geluSqrt2OverPi * (1.0 + 3.0*geluCoeff*v*v)
		geluDeriv := 0.5*(1.0+tanhInner) + 0.5*v*tanhDeriv*innerDeriv
		gradX.data[i] = gradY.data[i] * geluDeriv
	}
	return gradX
}

// SoftmaxBackward computes the gradient through a row-wise softmax:
// gradX[i] = Y[i] * (gradY[i] - sum_j gradY[j]*Y[j]).
func SoftmaxBackward(y, gradY *Tensor) *Tensor {
	if len(y.shape) != 2 {
		panic("model: SoftmaxBackward requires 2D tensor")
	}

	rows, cols := y.shape[0], y.shape[1]
	gradX := NewTensor(y.shape...)
	for r := 0; r < rows; r++ {
		dot := 0.0
		for c := 0; c < cols; c++ {
			dot += gradY.data[r*cols+c] * y.data[r*cols+c]
		}
		for c := 0; c < cols; c++ {
			gradX.data[r*cols+c] = y.data[r*cols+c] * (gradY.data[r*cols+c] - dot)
		}
	}
	return gradX
}

// LayerNormBackward computes gradients through y = gamma*(x-mean)/std + beta,
// recomputing the per-row statistics from x.
func LayerNormBackward(x, gamma *Tensor, gradY *Tensor, epsilon float64) (gradX, gradGamma, gradBeta *Tensor) {
	if len(x.shape) != 2 {
		panic("model: LayerNormBackward requires 2D tensor")
	}

	rows, cols := x.shape[0], x.shape[1]
	gradX = NewTensor(x.shape...)
	gradGamma = NewTensor(cols)
	gradBeta = NewTensor(cols)

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
		std := math.Sqrt(variance + epsilon)

		sumGradNorm := 0.0
		sumGradNormXNorm := 0.0
		for c := 0; c < cols; c++ {
			xNorm := (x.data[r*cols+c] - mean) / std
			gy := gradY.data[r*cols+c]

			gradGamma.data[c] += gy * xNorm
			gradBeta.data[c] += gy

			gradNorm := gy * gamma.data[c]
			sumGradNorm += gradNorm
			sumGradNormXNorm += gradNorm * xNorm
		}

		for c := 0; c < cols; c++ {
			xNorm := (x.data[r*cols+c] - mean) / std
			gradNorm := gradY.data[r*cols+c] * gamma.data[c]
			gradX.data[r*cols+c] = (n*gradNorm - sumGradNorm - xNorm*sumGradNormXNorm) / (n * std)
		}
	}

	return gradX, gradGamma, gradBeta
}

// CrossEntropyBackward returns the gradient of the mean cross-entropy loss
// with respect to the logits: (softmax(logits) - onehot(targets)) / batch.
func CrossEntropyBackward(logits *Tensor, targets []int) *Tensor {
	if len(logits.shape) != 2 {
		panic("model: CrossEntropyBackward requires 2D logits")
	}

	rows, cols := logits.shape[0], logits.shape[1]
	probs := Softmax(logits)

	gradLogits := NewTensor(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			grad := probs.data[r*cols+c]
			if c == targets[r] {
				grad -= 1.0
			}
			gradLogits.data[r*cols+c] = grad / float64(rows)
		}
	}
	return gradLogits
}
