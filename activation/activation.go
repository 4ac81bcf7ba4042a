// Package activation provides the pure activation functions consumed by the
// classification applications: the logistic sigmoid and the row-wise softmax.
// Both are stateless and numerically guarded so downstream log terms never
// see an exact 0 or 1.
package activation

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// eps bounds probabilities away from 0 and 1.
const eps = 1e-15

// SigmoidScalar computes 1/(1+e^-x), branching on sign so the exponential
// never overflows.
func SigmoidScalar(x float64) float64 {
	var s float64
	if x >= 0 {
		s = 1.0 / (1.0 + math.Exp(-x))
	} else {
		e := math.Exp(x)
		s = e / (1.0 + e)
	}
	return clampUnit(s)
}

// Sigmoid applies the logistic function elementwise. Outputs are strictly
// inside (0, 1).
func Sigmoid(z mat.Vector) *mat.VecDense {
	n := z.Len()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		out.SetVec(i, SigmoidScalar(z.AtVec(i)))
	}
	return out
}

// Softmax converts each row of Z into a probability distribution. The row
// maximum is subtracted before exponentiation, so arbitrarily large scores
// stay finite. Each output row sums to 1 within floating tolerance.
func Softmax(Z mat.Matrix) *mat.Dense {
	r, c := Z.Dims()
	out := mat.NewDense(r, c, nil)

	for i := 0; i < r; i++ {
		rowMax := math.Inf(-1)
		for j := 0; j < c; j++ {
			if v := Z.At(i, j); v > rowMax {
				rowMax = v
			}
		}

		var sum float64
		for j := 0; j < c; j++ {
			e := math.Exp(Z.At(i, j) - rowMax)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < c; j++ {
			out.Set(i, j, clampUnit(out.At(i, j)/sum))
		}
	}
	return out
}

func clampUnit(p float64) float64 {
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
