package application

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/activation"
	"github.com/j2slab/MLStudio/objective"
)

// LogisticRegression is the forward model for binary classification. The
// output is sigmoid(X * theta), a probability per row, and predictions are
// thresholded at 0.5.
type LogisticRegression struct{}

// NewLogisticRegression creates a logistic regression application.
func NewLogisticRegression() *LogisticRegression { return &LogisticRegression{} }

// Name returns the application's display name.
func (a *LogisticRegression) Name() string { return "Logistic Regression" }

// ComputeOutput computes sigmoid(X * theta). Values are strictly inside
// (0, 1).
func (a *LogisticRegression) ComputeOutput(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	Z, err := linearCombination("LogisticRegression.ComputeOutput", theta, X)
	if err != nil {
		return nil, err
	}

	r, c := Z.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			Z.Set(i, j, activation.SigmoidScalar(Z.At(i, j)))
		}
	}
	return Z, nil
}

// Predict thresholds the output at 0.5: a probability of exactly 0.5 rounds
// up to class 1.
func (a *LogisticRegression) Predict(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	O, err := a.ComputeOutput(theta, X)
	if err != nil {
		return nil, err
	}

	r, c := O.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if O.At(i, j) >= 0.5 {
				O.Set(i, j, 1)
			} else {
				O.Set(i, j, 0)
			}
		}
	}
	return O, nil
}

// PredictProba returns the output probabilities directly.
func (a *LogisticRegression) PredictProba(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	return a.ComputeOutput(theta, X)
}

// DefaultObjective returns the binary cross entropy objective.
func (a *LogisticRegression) DefaultObjective() objective.Objective {
	return objective.NewCrossEntropy()
}
