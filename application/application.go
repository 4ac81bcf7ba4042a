// Package application defines the forward models of the training engine: the
// mapping from a parameter matrix and a feature matrix to a task-specific
// output and a prediction. Three applications are provided, one per task:
// LinearRegression, LogisticRegression and MultinomialLogisticRegression.
//
// Applications are stateless; all learned state lives in the theta passed to
// each call, which is owned by the training loop.
package application

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/core/parallel"
	"github.com/j2slab/MLStudio/objective"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// Application is the common contract of all forward models. theta has shape
// (n_features, 1) for single-output tasks and (n_features, n_classes) for the
// multinomial case; X has shape (n_samples, n_features) with the bias column
// already prepended.
type Application interface {
	// Name returns the application's display name.
	Name() string

	// ComputeOutput performs the forward pass: the task-specific output
	// for every row of X.
	ComputeOutput(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error)

	// Predict converts the output into predictions: raw values for
	// regression, class labels for classification.
	Predict(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error)

	// PredictProba returns per-class probabilities. Applications without a
	// probabilistic output return an UnsupportedOperationError.
	PredictProba(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error)

	// DefaultObjective returns the loss canonically paired with the
	// application.
	DefaultObjective() objective.Objective
}

// castThreshold is the row count above which the float32 rounding pass runs
// in parallel.
const castThreshold = 1000

// linearCombination computes X * theta with eager dimension checking and the
// result rounded through float32, matching the single-precision output
// contract of the applications.
func linearCombination(op string, theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	xr, xc := X.Dims()
	tr, tc := theta.Dims()
	if xc != tr {
		return nil, errors.NewDimensionError(op, tr, xc, 1)
	}

	Z := mat.NewDense(xr, tc, nil)
	Z.Mul(X, theta)

	parallel.ParallelizeWithThreshold(xr, castThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < tc; j++ {
				Z.Set(i, j, float64(float32(Z.At(i, j))))
			}
		}
	})
	return Z, nil
}
