package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/pkg/errors"
)

// constGrad returns a gradient function that always yields the given values.
func constGrad(rows, cols int, values []float64) GradientFunc {
	return func(theta *mat.Dense) (*mat.Dense, error) {
		return mat.NewDense(rows, cols, append([]float64(nil), values...)), nil
	}
}

func newTheta(values ...float64) *mat.Dense {
	return mat.NewDense(len(values), 1, append([]float64(nil), values...))
}

func allOptimizers() map[string]Optimizer {
	return map[string]Optimizer{
		"Classic":  NewClassic(),
		"Momentum": NewMomentumDefault(),
		"Nesterov": NewNesterovDefault(),
		"Adagrad":  NewAdagradDefault(),
		"Adadelta": NewAdadeltaDefault(),
		"RMSprop":  NewRMSpropDefault(),
		"Adam":     NewAdamDefault(),
		"AdaMax":   NewAdaMaxDefault(),
		"Nadam":    NewNadamDefault(),
		"AMSGrad":  NewAMSGradDefault(),
	}
}

func TestClassicExactStep(t *testing.T) {
	opt := NewClassic()
	theta := newTheta(1, 2, -3)
	gradFn := constGrad(3, 1, []float64{0.5, -1, 2})

	updated, grad, err := opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)

	// theta - lr*g, exactly.
	assert.Equal(t, 1-0.1*0.5, updated.At(0, 0))
	assert.Equal(t, 2-0.1*(-1.0), updated.At(1, 0))
	assert.Equal(t, -3-0.1*2.0, updated.At(2, 0))
	assert.Equal(t, 0.5, grad.At(0, 0))
}

func TestLearningRateValidation(t *testing.T) {
	gradFn := constGrad(2, 1, []float64{1, 1})

	for name, opt := range allOptimizers() {
		t.Run(name, func(t *testing.T) {
			for _, lr := range []float64{0, -0.5, math.NaN()} {
				_, _, err := opt.Update(gradFn, lr, newTheta(0, 0))
				require.Error(t, err, "lr=%v", lr)

				var hpErr *errors.HyperparameterError
				assert.True(t, errors.As(err, &hpErr), "lr=%v", lr)
			}
		})
	}
}

func TestDecayValidation(t *testing.T) {
	gradFn := constGrad(1, 1, []float64{1})

	cases := map[string]Optimizer{
		"Momentum gamma=0":  NewMomentum(0),
		"Momentum gamma=1":  NewMomentum(1),
		"Nesterov gamma=-1": NewNesterov(-1),
		"Adadelta gamma=2":  NewAdadelta(2, 1e-8),
		"RMSprop gamma=1":   NewRMSprop(1, 1e-8),
		"Adam beta1=1":      NewAdam(1, 0.999, 1e-8),
		"Adam beta2=0":      NewAdam(0.9, 0, 1e-8),
		"AdaMax beta2=1":    NewAdaMax(0.9, 1),
		"Nadam beta1=0":     NewNadam(0, 0.999, 1e-8),
		"AMSGrad beta2=1.5": NewAMSGrad(0.9, 1.5, 1e-8),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := opt.Update(gradFn, 0.1, newTheta(0))
			require.Error(t, err)

			var hpErr *errors.HyperparameterError
			assert.True(t, errors.As(err, &hpErr))
		})
	}
}

func TestEpsilonValidation(t *testing.T) {
	gradFn := constGrad(1, 1, []float64{1})
	for name, opt := range map[string]Optimizer{
		"Adagrad":  NewAdagrad(0),
		"Adadelta": NewAdadelta(0.9, -1),
		"RMSprop":  NewRMSprop(0.9, 0),
		"Adam":     NewAdam(0.9, 0.999, 0),
		"Nadam":    NewNadam(0.9, 0.999, -1e-8),
		"AMSGrad":  NewAMSGrad(0.9, 0.999, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := opt.Update(gradFn, 0.1, newTheta(0))
			require.Error(t, err)

			var hpErr *errors.HyperparameterError
			assert.True(t, errors.As(err, &hpErr))
		})
	}
}

func TestZeroGradientNeverDividesByZero(t *testing.T) {
	// Accumulators start at zero and the gradient is identically zero; the
	// epsilon guard must keep every denominator finite and nonzero.
	zero := constGrad(2, 1, []float64{0, 0})

	for name, opt := range allOptimizers() {
		t.Run(name, func(t *testing.T) {
			theta := newTheta(1, -1)
			for step := 0; step < 3; step++ {
				updated, _, err := opt.Update(zero, 0.1, theta)
				require.NoError(t, err)
				for i := 0; i < 2; i++ {
					v := updated.At(i, 0)
					assert.False(t, math.IsNaN(v), "step %d", step)
					assert.False(t, math.IsInf(v, 0), "step %d", step)
				}
			}
			// A zero gradient must leave theta unchanged.
			assert.Equal(t, 1.0, theta.At(0, 0))
			assert.Equal(t, -1.0, theta.At(1, 0))
		})
	}
}

func TestDeterminism(t *testing.T) {
	// The same call sequence from the same initial state is bit-identical.
	grads := [][]float64{{0.5, -0.3}, {0.1, 0.2}, {-0.4, 0.9}}

	run := func(opt Optimizer) []float64 {
		theta := newTheta(0.7, -0.2)
		for _, g := range grads {
			_, _, err := opt.Update(constGrad(2, 1, g), 0.05, theta)
			require.NoError(t, err)
		}
		return []float64{theta.At(0, 0), theta.At(1, 0)}
	}

	factories := map[string]func() Optimizer{
		"Classic":  func() Optimizer { return NewClassic() },
		"Momentum": func() Optimizer { return NewMomentumDefault() },
		"Nesterov": func() Optimizer { return NewNesterovDefault() },
		"Adagrad":  func() Optimizer { return NewAdagradDefault() },
		"Adadelta": func() Optimizer { return NewAdadeltaDefault() },
		"RMSprop":  func() Optimizer { return NewRMSpropDefault() },
		"Adam":     func() Optimizer { return NewAdamDefault() },
		"AdaMax":   func() Optimizer { return NewAdaMaxDefault() },
		"Nadam":    func() Optimizer { return NewNadamDefault() },
		"AMSGrad":  func() Optimizer { return NewAMSGradDefault() },
	}

	for name, factory := range factories {
		t.Run(name, func(t *testing.T) {
			first := run(factory())
			second := run(factory())
			assert.Equal(t, first, second)
		})
	}
}

func TestMomentumAccumulatesVelocity(t *testing.T) {
	opt := NewMomentum(0.9)
	theta := newTheta(1)
	gradFn := constGrad(1, 1, []float64{1})

	// Step 1: v = lr*g = 0.1, theta = 0.9.
	_, _, err := opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, theta.At(0, 0), 1e-12)

	// Step 2: v = 0.9*0.1 + 0.1 = 0.19, theta = 0.71.
	_, _, err = opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	assert.InDelta(t, 0.71, theta.At(0, 0), 1e-12)
}

func TestNesterovLookAhead(t *testing.T) {
	opt := NewNesterov(0.9)
	theta := newTheta(1)

	var seen []float64
	gradFn := func(th *mat.Dense) (*mat.Dense, error) {
		seen = append(seen, th.At(0, 0))
		return mat.NewDense(1, 1, []float64{1}), nil
	}

	// First step: velocity is zero, so the look-ahead equals theta.
	_, _, err := opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.InDelta(t, 1.0, seen[0], 1e-12)

	// Second step: look-ahead is theta - gamma*v = 0.9 - 0.9*0.1.
	_, _, err = opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.InDelta(t, 0.9-0.9*0.1, seen[1], 1e-12)
}

func TestAdagradAccumulates(t *testing.T) {
	eps := 1e-8
	opt := NewAdagrad(eps)
	theta := newTheta(0)
	g := 2.0
	gradFn := constGrad(1, 1, []float64{g})

	_, _, err := opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	want := -0.1 * g / math.Sqrt(g*g+eps)
	assert.InDelta(t, want, theta.At(0, 0), 1e-12)

	// Second step divides by sqrt(2g^2+eps): the step shrinks.
	before := theta.At(0, 0)
	_, _, err = opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)
	step2 := theta.At(0, 0) - before
	assert.InDelta(t, -0.1*g/math.Sqrt(2*g*g+eps), step2, 1e-12)
	assert.Less(t, math.Abs(step2), math.Abs(want))
}

func TestAdadeltaFirstStep(t *testing.T) {
	gamma, eps := 0.9, 1e-8
	opt := NewAdadelta(gamma, eps)
	theta := newTheta(1)
	g := 0.5
	gradFn := constGrad(1, 1, []float64{g})

	_, _, err := opt.Update(gradFn, 0.1, theta)
	require.NoError(t, err)

	eg := (1 - gamma) * g * g
	delta := -math.Sqrt(eps) / math.Sqrt(eg+eps) * g
	assert.InDelta(t, 1+delta, theta.At(0, 0), 1e-12)
}

func TestRMSpropFirstStep(t *testing.T) {
	gamma, eps := 0.9, 1e-8
	opt := NewRMSprop(gamma, eps)
	theta := newTheta(0)
	g := 3.0
	gradFn := constGrad(1, 1, []float64{g})

	_, _, err := opt.Update(gradFn, 0.01, theta)
	require.NoError(t, err)

	eg := (1 - gamma) * g * g
	assert.InDelta(t, -0.01*g/math.Sqrt(eg+eps), theta.At(0, 0), 1e-12)
}

func TestAdamFirstStepBiasCorrection(t *testing.T) {
	opt := NewAdamDefault()
	theta := newTheta(0)
	g := 4.0
	gradFn := constGrad(1, 1, []float64{g})

	_, _, err := opt.Update(gradFn, 0.001, theta)
	require.NoError(t, err)

	// After bias correction the first step is lr*g/(|g|+eps), independent
	// of the moment decays.
	want := -0.001 * g / (math.Abs(g) + 1e-8)
	assert.InDelta(t, want, theta.At(0, 0), 1e-12)
	assert.Equal(t, 1, opt.Step())
}

func TestAdamStepCounterMonotonic(t *testing.T) {
	opt := NewAdamDefault()
	theta := newTheta(0)
	gradFn := constGrad(1, 1, []float64{1})

	for i := 1; i <= 5; i++ {
		_, _, err := opt.Update(gradFn, 0.01, theta)
		require.NoError(t, err)
		assert.Equal(t, i, opt.Step())
	}
}

func TestAdaMaxInfinityNorm(t *testing.T) {
	beta1, beta2 := 0.9, 0.999
	opt := NewAdaMax(beta1, beta2)
	theta := newTheta(0)

	// First gradient is large, second is small: u keeps the decayed max.
	_, _, err := opt.Update(constGrad(1, 1, []float64{10}), 0.1, theta)
	require.NoError(t, err)

	m1 := (1 - beta1) * 10.0
	u1 := 10.0
	want1 := -0.1 * (m1 / (1 - beta1)) / (u1 + DefaultEpsilon)
	assert.InDelta(t, want1, theta.At(0, 0), 1e-12)

	before := theta.At(0, 0)
	_, _, err = opt.Update(constGrad(1, 1, []float64{0.001}), 0.1, theta)
	require.NoError(t, err)

	// u2 = max(beta2*10, 0.001) = 9.99.
	m2 := beta1*m1 + (1-beta1)*0.001
	mHat2 := m2 / (1 - beta1*beta1)
	want2 := -0.1 * mHat2 / (beta2*10 + DefaultEpsilon)
	assert.InDelta(t, want2, theta.At(0, 0)-before, 1e-12)
}

func TestNadamFirstStep(t *testing.T) {
	beta1, beta2, eps := 0.9, 0.999, 1e-8
	opt := NewNadam(beta1, beta2, eps)
	theta := newTheta(0)
	g := 2.0

	_, _, err := opt.Update(constGrad(1, 1, []float64{g}), 0.01, theta)
	require.NoError(t, err)

	corr1 := 1 - beta1
	corr2 := 1 - beta2
	mHat := (1 - beta1) * g / corr1
	vHat := (1 - beta2) * g * g / corr2
	nesterov := beta1*mHat + (1-beta1)*g/corr1
	want := -0.01 * nesterov / (math.Sqrt(vHat) + eps)
	assert.InDelta(t, want, theta.At(0, 0), 1e-12)
}

func TestAMSGradRunningMax(t *testing.T) {
	beta1, beta2, eps := 0.9, 0.999, 1e-8
	opt := NewAMSGrad(beta1, beta2, eps)
	theta := newTheta(0)

	// Large gradient first, then zero gradient: vhat must not decay, so the
	// second step's denominator still reflects the large v.
	_, _, err := opt.Update(constGrad(1, 1, []float64{10}), 0.1, theta)
	require.NoError(t, err)

	v1 := (1 - beta2) * 100.0
	before := theta.At(0, 0)

	_, _, err = opt.Update(constGrad(1, 1, []float64{0}), 0.1, theta)
	require.NoError(t, err)

	// v decays toward zero but vhat keeps v1.
	m2 := beta1 * (1 - beta1) * 10.0
	want := -0.1 * m2 / (math.Sqrt(v1) + eps)
	assert.InDelta(t, want, theta.At(0, 0)-before, 1e-12)
}

func TestShapeChangeRejected(t *testing.T) {
	for name, opt := range allOptimizers() {
		if name == "Classic" {
			continue // stateless, no bound shape
		}
		t.Run(name, func(t *testing.T) {
			_, _, err := opt.Update(constGrad(2, 1, []float64{1, 1}), 0.1, newTheta(0, 0))
			require.NoError(t, err)

			_, _, err = opt.Update(constGrad(3, 1, []float64{1, 1, 1}), 0.1, newTheta(0, 0, 0))
			require.Error(t, err)

			var dimErr *errors.DimensionError
			assert.True(t, errors.As(err, &dimErr))
		})
	}
}

func TestGradientErrorPropagates(t *testing.T) {
	failing := func(theta *mat.Dense) (*mat.Dense, error) {
		return nil, errors.New("gradient blew up")
	}
	opt := NewAdamDefault()
	_, _, err := opt.Update(failing, 0.1, newTheta(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gradient blew up")
}

func TestMatrixTheta(t *testing.T) {
	// Multinomial runs use a (features x classes) theta; elementwise rules
	// apply unchanged.
	opt := NewAdamDefault()
	theta := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	gradFn := constGrad(2, 3, []float64{1, 1, 1, 1, 1, 1})

	updated, _, err := opt.Update(gradFn, 0.001, theta)
	require.NoError(t, err)

	r, c := updated.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	// Uniform gradient moves every entry by the same bias-corrected step.
	step := 1.0 - updated.At(0, 0)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			base := float64(i*3 + j + 1)
			assert.InDelta(t, step, base-updated.At(i, j), 1e-12)
		}
	}
}
