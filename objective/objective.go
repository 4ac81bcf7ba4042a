// Package objective provides the differentiable loss functions paired with
// each application: mean squared error for linear regression, binary cross
// entropy for logistic regression and categorical cross entropy for the
// multinomial case. Each objective reports both the scalar loss and the
// gradient of the loss with respect to the model parameters.
package objective

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/pkg/errors"
)

// Objective is the contract consumed by the training loop. Loss evaluates
// the scalar objective for a batch; Gradient differentiates it with respect
// to theta given the batch features, targets and current predictions.
// Implementations are pure and safe for concurrent use.
type Objective interface {
	// Name returns the objective's display name.
	Name() string

	// Loss computes the scalar loss between targets y and predictions
	// yPred. Both must share the same shape.
	Loss(y, yPred mat.Matrix) (float64, error)

	// Gradient computes d(loss)/d(theta) for the batch. The result has
	// shape (n_features, n_outputs), matching theta.
	Gradient(X, y, yPred mat.Matrix) (*mat.Dense, error)
}

// checkShapes verifies y and yPred agree in both dimensions.
func checkShapes(op string, y, yPred mat.Matrix) error {
	yr, yc := y.Dims()
	pr, pc := yPred.Dims()
	if yr != pr {
		return errors.NewDimensionError(op, yr, pr, 0)
	}
	if yc != pc {
		return errors.NewDimensionError(op, yc, pc, 1)
	}
	return nil
}

// residualGradient computes X^T (yPred - y) / n, the gradient shared by all
// three objectives when each is paired with its canonical output function.
func residualGradient(op string, X, y, yPred mat.Matrix) (*mat.Dense, error) {
	if err := checkShapes(op, y, yPred); err != nil {
		return nil, err
	}
	xr, xc := X.Dims()
	yr, yc := y.Dims()
	if xr != yr {
		return nil, errors.NewDimensionError(op, xr, yr, 0)
	}

	var resid mat.Dense
	resid.Sub(yPred, y)

	grad := mat.NewDense(xc, yc, nil)
	grad.Mul(X.T(), &resid)
	grad.Scale(1/float64(xr), grad)
	return grad, nil
}

// MSE is the mean squared error objective, 1/(2n) * sum((yPred - y)^2).
// The half makes the gradient exactly X^T(yPred-y)/n.
type MSE struct{}

// NewMSE creates the mean squared error objective.
func NewMSE() *MSE { return &MSE{} }

// Name returns the objective's display name.
func (o *MSE) Name() string { return "Mean Squared Error" }

// Loss computes 1/(2n) * sum((yPred - y)^2).
func (o *MSE) Loss(y, yPred mat.Matrix) (float64, error) {
	if err := checkShapes("MSE.Loss", y, yPred); err != nil {
		return 0, err
	}
	r, c := y.Dims()
	if r == 0 {
		return 0, errors.NewValueError("MSE.Loss", "empty target")
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			d := yPred.At(i, j) - y.At(i, j)
			sum += d * d
		}
	}
	return sum / (2 * float64(r)), nil
}

// Gradient computes X^T(yPred - y)/n.
func (o *MSE) Gradient(X, y, yPred mat.Matrix) (*mat.Dense, error) {
	return residualGradient("MSE.Gradient", X, y, yPred)
}

// CrossEntropy is the binary cross entropy objective for sigmoid outputs.
// Predictions are log-stabilized, so probabilities at the numeric boundary
// do not produce infinities.
type CrossEntropy struct{}

// NewCrossEntropy creates the binary cross entropy objective.
func NewCrossEntropy() *CrossEntropy { return &CrossEntropy{} }

// Name returns the objective's display name.
func (o *CrossEntropy) Name() string { return "Cross Entropy" }

// Loss computes -mean(y*log(p) + (1-y)*log(1-p)).
func (o *CrossEntropy) Loss(y, yPred mat.Matrix) (float64, error) {
	if err := checkShapes("CrossEntropy.Loss", y, yPred); err != nil {
		return 0, err
	}
	r, c := y.Dims()
	if r == 0 {
		return 0, errors.NewValueError("CrossEntropy.Loss", "empty target")
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			p := yPred.At(i, j)
			t := y.At(i, j)
			sum += t*errors.StabilizeLog(p) + (1-t)*errors.StabilizeLog(1-p)
		}
	}
	return -sum / float64(r), nil
}

// Gradient computes X^T(p - y)/n, the sigmoid/cross-entropy gradient.
func (o *CrossEntropy) Gradient(X, y, yPred mat.Matrix) (*mat.Dense, error) {
	return residualGradient("CrossEntropy.Gradient", X, y, yPred)
}

// CategoricalCrossEntropy is the multinomial objective for softmax outputs
// paired with one-hot targets.
type CategoricalCrossEntropy struct{}

// NewCategoricalCrossEntropy creates the categorical cross entropy objective.
func NewCategoricalCrossEntropy() *CategoricalCrossEntropy {
	return &CategoricalCrossEntropy{}
}

// Name returns the objective's display name.
func (o *CategoricalCrossEntropy) Name() string { return "Categorical Cross Entropy" }

// Loss computes -mean over samples of sum_k y_k*log(p_k).
func (o *CategoricalCrossEntropy) Loss(y, yPred mat.Matrix) (float64, error) {
	if err := checkShapes("CategoricalCrossEntropy.Loss", y, yPred); err != nil {
		return 0, err
	}
	r, c := y.Dims()
	if r == 0 {
		return 0, errors.NewValueError("CategoricalCrossEntropy.Loss", "empty target")
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if t := y.At(i, j); t != 0 {
				sum += t * errors.StabilizeLog(yPred.At(i, j))
			}
		}
	}
	return -sum / float64(r), nil
}

// Gradient computes X^T(P - Y)/n, the softmax/cross-entropy gradient.
func (o *CategoricalCrossEntropy) Gradient(X, y, yPred mat.Matrix) (*mat.Dense, error) {
	return residualGradient("CategoricalCrossEntropy.Gradient", X, y, yPred)
}
