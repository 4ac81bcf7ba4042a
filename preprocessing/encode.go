package preprocessing

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/core/parallel"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// biasThreshold is the row count above which AddBiasTerm copies rows in
// parallel.
const biasThreshold = 1000

// AddBiasTerm prepends a column of ones to X, so the first theta coordinate
// acts as the intercept.
func AddBiasTerm(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)

	parallel.ParallelizeWithThreshold(r, biasThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			out.Set(i, 0, 1.0)
			for j := 0; j < c; j++ {
				out.Set(i, j+1, X.At(i, j))
			}
		}
	})
	return out
}

// Classes returns the distinct values of y in ascending order.
func Classes(y mat.Vector) []float64 {
	seen := make(map[float64]struct{})
	for i := 0; i < y.Len(); i++ {
		seen[y.AtVec(i)] = struct{}{}
	}
	classes := make([]float64, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Float64s(classes)
	return classes
}

// EncodeLabels maps arbitrary numeric labels to 0..k-1 in ascending label
// order. It returns the encoded vector and the original classes, indexed by
// their encoded value. Labels already equal to 0..k-1 pass through
// unchanged.
func EncodeLabels(y mat.Vector) (*mat.VecDense, []float64) {
	classes := Classes(y)

	index := make(map[float64]int, len(classes))
	identity := true
	for i, v := range classes {
		index[v] = i
		if v != float64(i) {
			identity = false
		}
	}

	encoded := mat.NewVecDense(y.Len(), nil)
	if identity {
		for i := 0; i < y.Len(); i++ {
			encoded.SetVec(i, y.AtVec(i))
		}
		return encoded, classes
	}

	for i := 0; i < y.Len(); i++ {
		encoded.SetVec(i, float64(index[y.AtVec(i)]))
	}
	return encoded, classes
}

// OneHotEncode converts a vector of class indices into a one-hot matrix.
// When nClasses is 0 it is inferred as max(y)+1.
func OneHotEncode(y mat.Vector, nClasses int) (*mat.Dense, error) {
	n := y.Len()
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "OneHotEncode")
	}

	if nClasses == 0 {
		var maxLabel float64
		for i := 0; i < n; i++ {
			if v := y.AtVec(i); v > maxLabel {
				maxLabel = v
			}
		}
		nClasses = int(maxLabel) + 1
	}

	out := mat.NewDense(n, nClasses, nil)
	for i := 0; i < n; i++ {
		v := y.AtVec(i)
		k := int(v)
		if float64(k) != v || k < 0 || k >= nClasses {
			return nil, errors.NewValueError("OneHotEncode",
				"labels must be integers in [0, n_classes)")
		}
		out.Set(i, k, 1)
	}
	return out, nil
}

// ColumnVector views the first column of a single-column matrix as a
// vector. It is a convenience for target matrices of shape (n, 1).
func ColumnVector(m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, errors.NewDimensionError("ColumnVector", 1, c, 1)
	}
	v := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		v.SetVec(i, m.At(i, 0))
	}
	return v, nil
}
