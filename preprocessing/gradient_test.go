package preprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/pkg/errors"
)

func TestNormScaler(t *testing.T) {
	t.Run("transform reaches target norm", func(t *testing.T) {
		X := mat.NewDense(1, 3, []float64{3, 4, 0}) // norm 5

		s := NewNormScaler(2)
		scaled, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, mat.Norm(scaled, 2), 1e-12)
	})

	t.Run("round trip recovers norm", func(t *testing.T) {
		X := mat.NewDense(2, 2, []float64{1e-12, 3e-12, -2e-12, 5e-12})

		s := NewNormScalerDefault()
		scaled, err := s.FitTransform(X)
		require.NoError(t, err)
		back, err := s.InverseTransform(scaled)
		require.NoError(t, err)
		assert.InDelta(t, mat.Norm(X, 2), mat.Norm(back, 2), 1e-20)
		assert.True(t, mat.EqualApprox(X, back, 1e-20))
	})

	t.Run("zero norm rejected", func(t *testing.T) {
		s := NewNormScalerDefault()
		err := s.Fit(mat.NewDense(2, 2, nil))
		require.Error(t, err)
	})
}

func TestGradientScalerNormalize(t *testing.T) {
	t.Run("in-range input passes through", func(t *testing.T) {
		s := NewGradientScaler(MethodNormalize, 1e-10, 1e10, 1)
		X := mat.NewDense(1, 2, []float64{3, 4}) // norm 5, in range

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.True(t, mat.Equal(X, out), "in-range input must be returned unchanged")
	})

	t.Run("exploding gradient renormalized", func(t *testing.T) {
		s := NewGradientScaler(MethodNormalize, 1e-10, 1e10, 1)
		X := mat.NewDense(1, 2, []float64{3e12, 4e12}) // norm 5e12

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, mat.Norm(out, 2), 1e-12)

		// Direction is preserved.
		assert.InDelta(t, 3.0/5.0, out.At(0, 0), 1e-12)
		assert.InDelta(t, 4.0/5.0, out.At(0, 1), 1e-12)
	})

	t.Run("vanishing gradient renormalized", func(t *testing.T) {
		s := NewGradientScaler(MethodNormalize, 1e-10, 1e10, 1)
		X := mat.NewDense(1, 2, []float64{3e-13, 4e-13})

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, mat.Norm(out, 2), 1e-12)
	})

	t.Run("inverse recovers original", func(t *testing.T) {
		s := NewGradientScaler(MethodNormalize, 1e-10, 1e10, 1)
		X := mat.NewDense(1, 2, []float64{3e12, 4e12})

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		back, err := s.InverseTransform(out)
		require.NoError(t, err)
		assert.True(t, mat.EqualApprox(X, back, 1e-3), "absolute tolerance is loose at this magnitude")
		assert.InDelta(t, mat.Norm(X, 2), mat.Norm(back, 2), 1)
	})
}

func TestGradientScalerClip(t *testing.T) {
	t.Run("elements clamped into bounds", func(t *testing.T) {
		s := NewGradientScaler(MethodClip, 0.5, 2, 1)
		X := mat.NewDense(1, 3, []float64{10, 1, 0.1})

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, out.At(0, 0), 1e-12)
		assert.InDelta(t, 1.0, out.At(0, 1), 1e-12)
		assert.InDelta(t, 0.5, out.At(0, 2), 1e-12)
	})

	t.Run("in-range input untouched", func(t *testing.T) {
		s := NewGradientScaler(MethodClip, 0.5, 2, 1)
		X := mat.NewDense(1, 2, []float64{0.6, 0.8}) // norm 1, in range

		out, err := s.FitTransform(X)
		require.NoError(t, err)
		assert.True(t, mat.Equal(X, out))
	})

	t.Run("inverse unsupported", func(t *testing.T) {
		s := NewGradientScaler(MethodClip, 0.5, 2, 1)
		require.NoError(t, s.Fit(nil))

		_, err := s.InverseTransform(mat.NewDense(1, 1, []float64{1}))
		require.Error(t, err)

		var opErr *errors.UnsupportedOperationError
		assert.True(t, errors.As(err, &opErr))
	})
}

func TestGradientScalerValidation(t *testing.T) {
	cases := []struct {
		name   string
		scaler *GradientScaler
	}{
		{"unknown method", NewGradientScaler("fold", 1e-10, 1e10, 1)},
		{"non-positive lower", NewGradientScaler(MethodClip, 0, 1e10, 1)},
		{"inverted thresholds", NewGradientScaler(MethodClip, 10, 1, 1)},
		{"clip_norm out of bounds", NewGradientScaler(MethodNormalize, 1, 10, 100)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scaler.Fit(nil)
			require.Error(t, err)

			var hpErr *errors.HyperparameterError
			assert.True(t, errors.As(err, &hpErr))
		})
	}
}

func TestValidArray(t *testing.T) {
	ok := mat.NewDense(1, 2, []float64{3, 4})
	assert.True(t, ValidArray(ok, 1e-10, 1e10))

	huge := mat.NewDense(1, 1, []float64{1e12})
	assert.False(t, ValidArray(huge, 1e-10, 1e10))

	tiny := mat.NewDense(1, 1, []float64{math.Nextafter(0, 1)})
	assert.False(t, ValidArray(tiny, 1e-10, 1e10))
}
