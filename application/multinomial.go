package application

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/activation"
	"github.com/j2slab/MLStudio/objective"
)

// MultinomialLogisticRegression is the forward model for multiclass
// classification. theta has one column per class; the output is the
// row-stochastic matrix softmax(X * theta) and predictions are per-row
// argmax class indices.
type MultinomialLogisticRegression struct{}

// NewMultinomialLogisticRegression creates a multinomial logistic regression
// application.
func NewMultinomialLogisticRegression() *MultinomialLogisticRegression {
	return &MultinomialLogisticRegression{}
}

// Name returns the application's display name.
func (a *MultinomialLogisticRegression) Name() string {
	return "Multinomial Logistic Regression"
}

// ComputeOutput computes softmax(X * theta). Each row sums to 1 within
// floating tolerance.
func (a *MultinomialLogisticRegression) ComputeOutput(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	Z, err := linearCombination("MultinomialLogisticRegression.ComputeOutput", theta, X)
	if err != nil {
		return nil, err
	}
	return activation.Softmax(Z), nil
}

// Predict returns the argmax class index per row. Ties resolve to the lowest
// class index: the scan keeps the first maximum it sees.
func (a *MultinomialLogisticRegression) Predict(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	P, err := a.ComputeOutput(theta, X)
	if err != nil {
		return nil, err
	}

	r, c := P.Dims()
	labels := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		best := 0
		for j := 1; j < c; j++ {
			if P.At(i, j) > P.At(i, best) {
				best = j
			}
		}
		labels.Set(i, 0, float64(best))
	}
	return labels, nil
}

// PredictProba returns the per-class probability matrix directly.
func (a *MultinomialLogisticRegression) PredictProba(theta *mat.Dense, X mat.Matrix) (*mat.Dense, error) {
	return a.ComputeOutput(theta, X)
}

// DefaultObjective returns the categorical cross entropy objective.
func (a *MultinomialLogisticRegression) DefaultObjective() objective.Objective {
	return objective.NewCategoricalCrossEntropy()
}
