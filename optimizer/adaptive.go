package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adagrad scales each coordinate's step by the accumulated squared gradient:
//
//	G <- G + g^2
//	theta <- theta - lr * g / sqrt(G + eps)
//
// The accumulator is per parameter, elementwise.
type Adagrad struct {
	epsilon float64
	sumSq   *mat.Dense
	shape   shapeState
}

// NewAdagrad creates an Adagrad optimizer with the given epsilon guard.
func NewAdagrad(epsilon float64) *Adagrad {
	return &Adagrad{epsilon: epsilon}
}

// NewAdagradDefault creates an Adagrad optimizer with epsilon = 1e-8.
func NewAdagradDefault() *Adagrad { return NewAdagrad(DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *Adagrad) Name() string { return "Adagrad" }

// Update performs the Adagrad step.
func (o *Adagrad) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Adagrad.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.sumSq = o.shape.zeros()
	}

	grad, err := evalGradient("Adagrad.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)
			G := o.sumSq.At(i, j) + g*g
			o.sumSq.Set(i, j, G)
			theta.Set(i, j, theta.At(i, j)-learningRate*g/math.Sqrt(G+o.epsilon))
		}
	}
	return theta, grad, nil
}

// Adadelta replaces the global learning rate with the ratio of two running
// RMS terms:
//
//	E[g^2]  <- gamma*E[g^2] + (1-gamma)*g^2
//	delta   = -(RMS[dtheta]/RMS[g]) * g
//	E[d^2]  <- gamma*E[d^2] + (1-gamma)*delta^2
//	theta   <- theta + delta
//
// where RMS[x] = sqrt(E[x^2] + eps). The learning rate argument is still
// validated for contract uniformity but does not enter the step.
type Adadelta struct {
	gamma    float64
	epsilon  float64
	avgSqG   *mat.Dense
	avgSqDel *mat.Dense
	shape    shapeState
}

// NewAdadelta creates an Adadelta optimizer.
func NewAdadelta(gamma, epsilon float64) *Adadelta {
	return &Adadelta{gamma: gamma, epsilon: epsilon}
}

// NewAdadeltaDefault creates an Adadelta optimizer with gamma = 0.9 and
// epsilon = 1e-8.
func NewAdadeltaDefault() *Adadelta { return NewAdadelta(DefaultGamma, DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *Adadelta) Name() string { return "Adadelta" }

// Update performs the Adadelta step.
func (o *Adadelta) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("gamma", o.gamma); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Adadelta.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.avgSqG = o.shape.zeros()
		o.avgSqDel = o.shape.zeros()
	}

	grad, err := evalGradient("Adadelta.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)

			eg := o.gamma*o.avgSqG.At(i, j) + (1-o.gamma)*g*g
			o.avgSqG.Set(i, j, eg)

			delta := -math.Sqrt(o.avgSqDel.At(i, j)+o.epsilon) / math.Sqrt(eg+o.epsilon) * g

			ed := o.gamma*o.avgSqDel.At(i, j) + (1-o.gamma)*delta*delta
			o.avgSqDel.Set(i, j, ed)

			theta.Set(i, j, theta.At(i, j)+delta)
		}
	}
	return theta, grad, nil
}

// RMSprop keeps an exponentially decaying average of squared gradients:
//
//	E[g^2] <- gamma*E[g^2] + (1-gamma)*g^2
//	theta  <- theta - lr * g / sqrt(E[g^2] + eps)
type RMSprop struct {
	gamma   float64
	epsilon float64
	avgSqG  *mat.Dense
	shape   shapeState
}

// NewRMSprop creates an RMSprop optimizer.
func NewRMSprop(gamma, epsilon float64) *RMSprop {
	return &RMSprop{gamma: gamma, epsilon: epsilon}
}

// NewRMSpropDefault creates an RMSprop optimizer with gamma = 0.9 and
// epsilon = 1e-8.
func NewRMSpropDefault() *RMSprop { return NewRMSprop(DefaultGamma, DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *RMSprop) Name() string { return "RMSprop" }

// Update performs the RMSprop step.
func (o *RMSprop) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("gamma", o.gamma); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("RMSprop.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.avgSqG = o.shape.zeros()
	}

	grad, err := evalGradient("RMSprop.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)
			eg := o.gamma*o.avgSqG.At(i, j) + (1-o.gamma)*g*g
			o.avgSqG.Set(i, j, eg)
			theta.Set(i, j, theta.At(i, j)-learningRate*g/math.Sqrt(eg+o.epsilon))
		}
	}
	return theta, grad, nil
}
