// Package optimizer implements the gradient-descent update rules of the
// training engine. Every optimizer holds its own moment, velocity and
// counter state across calls; instances are single-run and must not be
// shared between concurrent fits. A fresh run needs a fresh instance.
//
// All ten update rules share one contract: Update receives the gradient
// function built by the caller (application composed with objective), the
// learning rate for this step and the current parameters, and returns the
// updated parameters together with the gradient it consumed.
package optimizer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/pkg/errors"
)

// GradientFunc computes the gradient of the objective at theta. The result
// must have theta's shape.
type GradientFunc func(theta *mat.Dense) (*mat.Dense, error)

// Optimizer is a stateful parameter-update rule. Implementations are not
// safe for concurrent use; each training run must construct its own
// instance, and reusing an instance across unrelated runs carries stale
// state into the new run.
type Optimizer interface {
	// Name returns the optimizer's display name.
	Name() string

	// Update computes one parameter step. It returns the updated theta
	// (written in place into the argument) and the gradient used for the
	// step. The learning rate must be positive and theta's shape must not
	// change between calls to the same instance.
	Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error)
}

// Default hyperparameter values shared across the family.
const (
	// DefaultGamma is the default decay for momentum and running averages.
	DefaultGamma = 0.9
	// DefaultBeta1 is the default first-moment decay.
	DefaultBeta1 = 0.9
	// DefaultBeta2 is the default second-moment decay.
	DefaultBeta2 = 0.999
	// DefaultEpsilon is the default denominator guard.
	DefaultEpsilon = 1e-8
)

// checkLearningRate rejects non-positive (or NaN) learning rates.
func checkLearningRate(lr float64) error {
	if !(lr > 0) {
		return errors.NewHyperparameterError("learning_rate", "must be positive", lr)
	}
	return nil
}

// checkDecay rejects decay factors outside the open interval (0, 1).
func checkDecay(name string, v float64) error {
	if !(v > 0 && v < 1) {
		return errors.NewHyperparameterError(name, "must be in (0, 1)", v)
	}
	return nil
}

// checkEpsilon rejects non-positive epsilon guards.
func checkEpsilon(v float64) error {
	if !(v > 0) {
		return errors.NewHyperparameterError("epsilon", "must be positive", v)
	}
	return nil
}

// shapeState tracks the theta shape an optimizer instance is bound to. The
// first Update fixes the shape; later calls with a different shape are a
// caller bug, reported as a DimensionError rather than silently resizing
// accumulators.
type shapeState struct {
	rows, cols int
}

// bind fixes or verifies the instance shape and reports whether state
// buffers still need allocation.
func (s *shapeState) bind(op string, theta *mat.Dense) (fresh bool, err error) {
	r, c := theta.Dims()
	if s.rows == 0 && s.cols == 0 {
		s.rows, s.cols = r, c
		return true, nil
	}
	if s.rows != r {
		return false, errors.NewDimensionError(op, s.rows, r, 0)
	}
	if s.cols != c {
		return false, errors.NewDimensionError(op, s.cols, c, 1)
	}
	return false, nil
}

// zeros allocates a zero matrix with the bound shape.
func (s *shapeState) zeros() *mat.Dense {
	return mat.NewDense(s.rows, s.cols, nil)
}

// evalGradient invokes gradFn and verifies the result matches theta's shape.
func evalGradient(op string, gradFn GradientFunc, theta *mat.Dense) (*mat.Dense, error) {
	grad, err := gradFn(theta)
	if err != nil {
		return nil, errors.Wrap(err, op+": gradient evaluation failed")
	}
	tr, tc := theta.Dims()
	gr, gc := grad.Dims()
	if gr != tr {
		return nil, errors.NewDimensionError(op, tr, gr, 0)
	}
	if gc != tc {
		return nil, errors.NewDimensionError(op, tc, gc, 1)
	}
	return grad, nil
}
