package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/core/model"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// NormScaler rescales a vector or matrix to a fixed Frobenius norm:
//
//	X' = X / ||X|| * clipNorm
//
// Fit stores the norm, so InverseTransform can recover the original
// magnitude exactly.
type NormScaler struct {
	model.BaseEstimator

	// ClipNorm is the target norm after Transform.
	ClipNorm float64

	// R is the Frobenius norm captured by Fit.
	R float64
}

// NewNormScaler creates a NormScaler with the given target norm.
func NewNormScaler(clipNorm float64) *NormScaler {
	return &NormScaler{ClipNorm: clipNorm}
}

// NewNormScalerDefault creates a NormScaler with unit target norm.
func NewNormScalerDefault() *NormScaler { return NewNormScaler(1) }

// Fit captures the Frobenius norm of X. A zero-norm input cannot be
// rescaled and is rejected.
func (s *NormScaler) Fit(X mat.Matrix) error {
	if s.ClipNorm <= 0 {
		return errors.NewHyperparameterError("clip_norm", "must be positive", s.ClipNorm)
	}

	r := mat.Norm(X, 2)
	if r == 0 {
		return errors.NewValueError("NormScaler.Fit", "input has zero norm")
	}

	s.R = r
	s.SetFitted()
	return nil
}

// Transform rescales X to have norm ClipNorm.
func (s *NormScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("NormScaler", "Transform")
	}

	var result mat.Dense
	result.Scale(s.ClipNorm/s.R, X)
	return &result, nil
}

// FitTransform combines Fit and Transform.
func (s *NormScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform rescales X back to the norm captured by Fit.
func (s *NormScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("NormScaler", "InverseTransform")
	}

	var result mat.Dense
	result.Scale(s.R/s.ClipNorm, X)
	return &result, nil
}
