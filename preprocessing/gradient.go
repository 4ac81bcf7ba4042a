package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/core/model"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// ScalingMethod selects how GradientScaler corrects an out-of-range
// gradient.
type ScalingMethod string

const (
	// MethodClip clamps every element into the threshold bounds. Clipping
	// changes coordinates independently and is not invertible.
	MethodClip ScalingMethod = "clip"

	// MethodNormalize rescales the whole structure to norm ClipNorm,
	// preserving direction.
	MethodNormalize ScalingMethod = "normalize"
)

// GradientScaler guards against exploding and vanishing gradients. When the
// Frobenius norm of the input falls outside [LowerThreshold, UpperThreshold]
// the configured correction fires; in-range inputs pass through unchanged.
type GradientScaler struct {
	model.BaseEstimator

	// Method selects clipping or normalization.
	Method ScalingMethod

	// LowerThreshold is the smallest acceptable norm.
	LowerThreshold float64

	// UpperThreshold is the largest acceptable norm.
	UpperThreshold float64

	// ClipNorm is the target norm when Method is normalize.
	ClipNorm float64

	normalizer *NormScaler
}

// NewGradientScaler creates a GradientScaler.
func NewGradientScaler(method ScalingMethod, lower, upper, clipNorm float64) *GradientScaler {
	return &GradientScaler{
		Method:         method,
		LowerThreshold: lower,
		UpperThreshold: upper,
		ClipNorm:       clipNorm,
	}
}

// NewGradientScalerDefault creates a clipping GradientScaler with the
// widest practical thresholds.
func NewGradientScalerDefault() *GradientScaler {
	return NewGradientScaler(MethodClip, 1e-15, 1e15, 1)
}

// validate checks the scaler configuration eagerly.
func (s *GradientScaler) validate() error {
	switch s.Method {
	case MethodClip, MethodNormalize:
	default:
		return errors.NewHyperparameterError("method", "must be clip or normalize", string(s.Method))
	}
	if s.LowerThreshold <= 0 {
		return errors.NewHyperparameterError("lower_threshold", "must be positive", s.LowerThreshold)
	}
	if s.UpperThreshold <= s.LowerThreshold {
		return errors.NewHyperparameterError("upper_threshold", "must exceed lower_threshold", s.UpperThreshold)
	}
	if s.Method == MethodNormalize {
		if s.ClipNorm < s.LowerThreshold || s.ClipNorm > s.UpperThreshold {
			return errors.NewHyperparameterError("clip_norm", "must lie within the threshold bounds", s.ClipNorm)
		}
	}
	return nil
}

// Fit validates the configuration and, in normalize mode, prepares the
// internal norm scaler. Clipping needs no fitted state.
func (s *GradientScaler) Fit(X mat.Matrix) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.Method == MethodNormalize {
		s.normalizer = NewNormScaler(s.ClipNorm)
	}
	s.SetFitted()
	return nil
}

// Transform applies the correction when the norm of X is out of range. If
// the norm lies within the thresholds, X is returned unchanged.
func (s *GradientScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("GradientScaler", "Transform")
	}

	r := mat.Norm(X, 2)
	if r >= s.LowerThreshold && r <= s.UpperThreshold {
		return X, nil
	}

	if s.Method == MethodNormalize {
		return s.normalizer.FitTransform(X)
	}

	rows, cols := X.Dims()
	clipped := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := X.At(i, j)
			if v < s.LowerThreshold {
				v = s.LowerThreshold
			} else if v > s.UpperThreshold {
				v = s.UpperThreshold
			}
			clipped.Set(i, j, v)
		}
	}
	return clipped, nil
}

// FitTransform combines Fit and Transform.
func (s *GradientScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform undoes a normalization. Clipping discards information,
// so it cannot be inverted.
func (s *GradientScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if s.Method == MethodClip {
		return nil, errors.NewUnsupportedOperationError("GradientScaler", "InverseTransform",
			"clipping is not invertible")
	}
	if !s.IsFitted() || s.normalizer == nil || !s.normalizer.IsFitted() {
		return nil, errors.NewNotFittedError("GradientScaler", "InverseTransform")
	}
	return s.normalizer.InverseTransform(X)
}

// ValidArray reports whether the Frobenius norm of x lies strictly between
// lower and upper.
func ValidArray(x mat.Matrix, lower, upper float64) bool {
	r := mat.Norm(x, 2)
	return r > lower && r < upper
}
