package metrics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/pkg/errors"
)

// Accuracy computes the fraction of predictions that exactly match the
// true labels.
func Accuracy(yTrue, yPred mat.Vector) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
