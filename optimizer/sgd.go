package optimizer

import (
	"gonum.org/v1/gonum/mat"
)

// Classic is plain gradient descent: theta <- theta - lr * g. It carries no
// state.
type Classic struct{}

// NewClassic creates a classic gradient descent optimizer.
func NewClassic() *Classic { return &Classic{} }

// Name returns the optimizer's display name.
func (o *Classic) Name() string { return "Classic" }

// Update performs theta <- theta - lr * g.
func (o *Classic) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}

	grad, err := evalGradient("Classic.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	var step mat.Dense
	step.Scale(learningRate, grad)
	theta.Sub(theta, &step)
	return theta, grad, nil
}

// Momentum is gradient descent with a velocity term:
//
//	v <- gamma*v + lr*g
//	theta <- theta - v
type Momentum struct {
	gamma    float64
	velocity *mat.Dense
	shape    shapeState
}

// NewMomentum creates a momentum optimizer with the given velocity decay.
func NewMomentum(gamma float64) *Momentum {
	return &Momentum{gamma: gamma}
}

// NewMomentumDefault creates a momentum optimizer with gamma = 0.9.
func NewMomentumDefault() *Momentum { return NewMomentum(DefaultGamma) }

// Name returns the optimizer's display name.
func (o *Momentum) Name() string { return "Momentum" }

// Update performs the momentum step.
func (o *Momentum) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("gamma", o.gamma); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Momentum.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.velocity = o.shape.zeros()
	}

	grad, err := evalGradient("Momentum.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	var scaled mat.Dense
	scaled.Scale(learningRate, grad)
	o.velocity.Scale(o.gamma, o.velocity)
	o.velocity.Add(o.velocity, &scaled)

	theta.Sub(theta, o.velocity)
	return theta, grad, nil
}

// Nesterov is momentum with a look-ahead gradient: the gradient is evaluated
// at theta - gamma*v instead of theta, then the momentum step is applied.
type Nesterov struct {
	gamma    float64
	velocity *mat.Dense
	shape    shapeState
}

// NewNesterov creates a Nesterov accelerated gradient optimizer.
func NewNesterov(gamma float64) *Nesterov {
	return &Nesterov{gamma: gamma}
}

// NewNesterovDefault creates a Nesterov optimizer with gamma = 0.9.
func NewNesterovDefault() *Nesterov { return NewNesterov(DefaultGamma) }

// Name returns the optimizer's display name.
func (o *Nesterov) Name() string { return "Nesterov" }

// Update evaluates the gradient at the look-ahead position and applies the
// momentum step. The look-ahead gradient evaluation completes before the
// parameters move, so one Update is a single synchronous unit.
func (o *Nesterov) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("gamma", o.gamma); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Nesterov.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.velocity = o.shape.zeros()
	}

	// Look-ahead position theta - gamma*v.
	lookAhead := o.shape.zeros()
	lookAhead.Scale(o.gamma, o.velocity)
	lookAhead.Sub(theta, lookAhead)

	grad, err := evalGradient("Nesterov.Update", gradFn, lookAhead)
	if err != nil {
		return nil, nil, err
	}

	var scaled mat.Dense
	scaled.Scale(learningRate, grad)
	o.velocity.Scale(o.gamma, o.velocity)
	o.velocity.Add(o.velocity, &scaled)

	theta.Sub(theta, o.velocity)
	return theta, grad, nil
}
