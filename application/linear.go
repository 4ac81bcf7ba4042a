package application

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/objective"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// LinearRegression is the forward model for least-squares regression.
// Output and prediction are both X * theta.
type LinearRegression struct{}

// NewLinearRegression creates a linear regression application.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Name returns the application's display name.
func (a *LinearRegression) Name() string { return "Linear Regression" }

// ComputeOutput computes X * theta.
func (a *LinearRegression) ComputeOutput(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	return linearCombination("LinearRegression.ComputeOutput", theta, X)
}

// Predict returns the output unchanged.
func (a *LinearRegression) Predict(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	return a.ComputeOutput(theta, X)
}

// PredictProba is not defined for regression.
func (a *LinearRegression) PredictProba(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	return nil, errors.NewUnsupportedOperationError("LinearRegression", "PredictProba",
		"regression has no probabilistic output")
}

// DefaultObjective returns the mean squared error objective.
func (a *LinearRegression) DefaultObjective() objective.Objective {
	return objective.NewMSE()
}
