package optimizer

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Adam combines bias-corrected first and second moment estimates:
//
//	t <- t + 1
//	m <- beta1*m + (1-beta1)*g
//	v <- beta2*v + (1-beta2)*g^2
//	mhat = m/(1-beta1^t);  vhat = v/(1-beta2^t)
//	theta <- theta - lr * mhat / (sqrt(vhat) + eps)
type Adam struct {
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	m, v    *mat.Dense
	shape   shapeState
}

// NewAdam creates an Adam optimizer.
func NewAdam(beta1, beta2, epsilon float64) *Adam {
	return &Adam{beta1: beta1, beta2: beta2, epsilon: epsilon}
}

// NewAdamDefault creates an Adam optimizer with beta1 = 0.9, beta2 = 0.999
// and epsilon = 1e-8.
func NewAdamDefault() *Adam { return NewAdam(DefaultBeta1, DefaultBeta2, DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *Adam) Name() string { return "Adam" }

// Step returns the number of updates performed so far.
func (o *Adam) Step() int { return o.t }

// Update performs the Adam step.
func (o *Adam) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_one", o.beta1); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_two", o.beta2); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Adam.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.m = o.shape.zeros()
		o.v = o.shape.zeros()
	}

	grad, err := evalGradient("Adam.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	o.t++
	corr1 := 1 - math.Pow(o.beta1, float64(o.t))
	corr2 := 1 - math.Pow(o.beta2, float64(o.t))

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)

			m := o.beta1*o.m.At(i, j) + (1-o.beta1)*g
			v := o.beta2*o.v.At(i, j) + (1-o.beta2)*g*g
			o.m.Set(i, j, m)
			o.v.Set(i, j, v)

			mHat := m / corr1
			vHat := v / corr2
			theta.Set(i, j, theta.At(i, j)-learningRate*mHat/(math.Sqrt(vHat)+o.epsilon))
		}
	}
	return theta, grad, nil
}

// AdaMax replaces Adam's second moment with an infinity-norm accumulator:
//
//	t <- t + 1
//	m <- beta1*m + (1-beta1)*g
//	mhat = m/(1-beta1^t)
//	u <- max(beta2*u, |g|)   (elementwise)
//	theta <- theta - lr * mhat / u
//
// The division is guarded with a small epsilon so an all-zero gradient
// history cannot divide by exactly zero.
type AdaMax struct {
	beta1 float64
	beta2 float64
	t     int
	m, u  *mat.Dense
	shape shapeState
}

// NewAdaMax creates an AdaMax optimizer.
func NewAdaMax(beta1, beta2 float64) *AdaMax {
	return &AdaMax{beta1: beta1, beta2: beta2}
}

// NewAdaMaxDefault creates an AdaMax optimizer with beta1 = 0.9 and
// beta2 = 0.999.
func NewAdaMaxDefault() *AdaMax { return NewAdaMax(DefaultBeta1, DefaultBeta2) }

// Name returns the optimizer's display name.
func (o *AdaMax) Name() string { return "AdaMax" }

// Update performs the AdaMax step.
func (o *AdaMax) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_one", o.beta1); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_two", o.beta2); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("AdaMax.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.m = o.shape.zeros()
		o.u = o.shape.zeros()
	}

	grad, err := evalGradient("AdaMax.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	o.t++
	corr1 := 1 - math.Pow(o.beta1, float64(o.t))

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)

			m := o.beta1*o.m.At(i, j) + (1-o.beta1)*g
			o.m.Set(i, j, m)

			u := math.Max(o.beta2*o.u.At(i, j), math.Abs(g))
			o.u.Set(i, j, u)

			mHat := m / corr1
			theta.Set(i, j, theta.At(i, j)-learningRate*mHat/(u+DefaultEpsilon))
		}
	}
	return theta, grad, nil
}

// Nadam is Adam with a Nesterov-style correction on the first moment:
//
//	t <- t + 1
//	m <- beta1*m + (1-beta1)*g
//	v <- beta2*v + (1-beta2)*g^2
//	mhat = m/(1-beta1^t);  vhat = v/(1-beta2^t)
//	theta <- theta - lr * (beta1*mhat + (1-beta1)*g/(1-beta1^t)) / (sqrt(vhat)+eps)
//
// The second moment mirrors Adam's, tracked with beta2 and bias-corrected.
type Nadam struct {
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	m, v    *mat.Dense
	shape   shapeState
}

// NewNadam creates a Nadam optimizer.
func NewNadam(beta1, beta2, epsilon float64) *Nadam {
	return &Nadam{beta1: beta1, beta2: beta2, epsilon: epsilon}
}

// NewNadamDefault creates a Nadam optimizer with beta1 = 0.9, beta2 = 0.999
// and epsilon = 1e-8.
func NewNadamDefault() *Nadam { return NewNadam(DefaultBeta1, DefaultBeta2, DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *Nadam) Name() string { return "Nadam" }

// Update performs the Nadam step.
func (o *Nadam) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_one", o.beta1); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_two", o.beta2); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("Nadam.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.m = o.shape.zeros()
		o.v = o.shape.zeros()
	}

	grad, err := evalGradient("Nadam.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	o.t++
	corr1 := 1 - math.Pow(o.beta1, float64(o.t))
	corr2 := 1 - math.Pow(o.beta2, float64(o.t))

	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)

			m := o.beta1*o.m.At(i, j) + (1-o.beta1)*g
			v := o.beta2*o.v.At(i, j) + (1-o.beta2)*g*g
			o.m.Set(i, j, m)
			o.v.Set(i, j, v)

			mHat := m / corr1
			vHat := v / corr2

			nesterov := o.beta1*mHat + (1-o.beta1)*g/corr1
			theta.Set(i, j, theta.At(i, j)-learningRate*nesterov/(math.Sqrt(vHat)+o.epsilon))
		}
	}
	return theta, grad, nil
}

// AMSGrad is Adam with a non-decreasing second moment: the denominator uses
// the elementwise running maximum of v, which keeps the effective step size
// from growing again once it has shrunk.
//
//	m <- beta1*m + (1-beta1)*g
//	v <- beta2*v + (1-beta2)*g^2
//	vhat <- max(vhat, v)     (elementwise)
//	theta <- theta - lr * m / (sqrt(vhat) + eps)
type AMSGrad struct {
	beta1   float64
	beta2   float64
	epsilon float64
	t       int
	m, v    *mat.Dense
	vHat    *mat.Dense
	shape   shapeState
}

// NewAMSGrad creates an AMSGrad optimizer.
func NewAMSGrad(beta1, beta2, epsilon float64) *AMSGrad {
	return &AMSGrad{beta1: beta1, beta2: beta2, epsilon: epsilon}
}

// NewAMSGradDefault creates an AMSGrad optimizer with beta1 = 0.9,
// beta2 = 0.999 and epsilon = 1e-8.
func NewAMSGradDefault() *AMSGrad { return NewAMSGrad(DefaultBeta1, DefaultBeta2, DefaultEpsilon) }

// Name returns the optimizer's display name.
func (o *AMSGrad) Name() string { return "AMSGrad" }

// Update performs the AMSGrad step.
func (o *AMSGrad) Update(gradFn GradientFunc, learningRate float64, theta *mat.Dense) (*mat.Dense, *mat.Dense, error) {
	if err := checkLearningRate(learningRate); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_one", o.beta1); err != nil {
		return nil, nil, err
	}
	if err := checkDecay("beta_two", o.beta2); err != nil {
		return nil, nil, err
	}
	if err := checkEpsilon(o.epsilon); err != nil {
		return nil, nil, err
	}

	fresh, err := o.shape.bind("AMSGrad.Update", theta)
	if err != nil {
		return nil, nil, err
	}
	if fresh {
		o.m = o.shape.zeros()
		o.v = o.shape.zeros()
		o.vHat = o.shape.zeros()
	}

	grad, err := evalGradient("AMSGrad.Update", gradFn, theta)
	if err != nil {
		return nil, nil, err
	}

	o.t++
	r, c := theta.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			g := grad.At(i, j)

			m := o.beta1*o.m.At(i, j) + (1-o.beta1)*g
			v := o.beta2*o.v.At(i, j) + (1-o.beta2)*g*g
			o.m.Set(i, j, m)
			o.v.Set(i, j, v)

			vh := math.Max(o.vHat.At(i, j), v)
			o.vHat.Set(i, j, vh)

			theta.Set(i, j, theta.At(i, j)-learningRate*m/(math.Sqrt(vh)+o.epsilon))
		}
	}
	return theta, grad, nil
}
