// Package preprocessing provides the data and gradient transformations of
// the training engine: feature scalers, the gradient norm scaler guarding
// against exploding and vanishing gradients, and the target-encoding helpers
// that prepare labels and the bias column before a fit.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/core/model"
	"github.com/j2slab/MLStudio/pkg/errors"
)

// StandardScaler standardizes features to zero mean and unit variance.
type StandardScaler struct {
	model.BaseEstimator

	// Mean is the per-feature mean seen during Fit (zero when center=false).
	Mean []float64

	// Scale is the per-feature standard deviation (one when scale=false).
	Scale []float64

	// NFeatures is the number of features the scaler was fitted on.
	NFeatures int

	// Center controls whether the mean is subtracted.
	Center bool

	// WithStd controls whether features are divided by their deviation.
	WithStd bool
}

// NewStandardScaler creates a StandardScaler.
func NewStandardScaler(center, withStd bool) *StandardScaler {
	return &StandardScaler{Center: center, WithStd: withStd}
}

// NewStandardScalerDefault creates a StandardScaler that both centers and
// scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes the per-feature mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		if s.Center {
			var sum float64
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		if s.WithStd {
			var sumSq float64
			for i := 0; i < r; i++ {
				d := X.At(i, j) - s.Mean[j]
				sumSq += d * d
			}
			s.Scale[j] = math.Sqrt(sumSq / float64(r))
			// A constant feature gets scale 1 so Transform is a no-op
			// for it instead of a division by zero.
			if s.Scale[j] < 1e-12 {
				s.Scale[j] = 1.0
			}
		} else {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform combines Fit and Transform.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// String returns a printable description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(center=%t, with_std=%t)", s.Center, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(center=%t, with_std=%t, n_features=%d)",
		s.Center, s.WithStd, s.NFeatures)
}

// MinMaxScaler scales each feature into [0, 1]:
//
//	x' = (x - min) / (max - min)
//
// Constant features map to 0.
type MinMaxScaler struct {
	model.BaseEstimator

	// DataMin is the per-feature minimum seen during Fit.
	DataMin []float64

	// DataMax is the per-feature maximum seen during Fit.
	DataMax []float64

	// DataRange is DataMax - DataMin per feature.
	DataRange []float64

	// NFeatures is the number of features the scaler was fitted on.
	NFeatures int
}

// NewMinMaxScaler creates a MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fit computes the per-feature minimum and maximum of X.
func (s *MinMaxScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "MinMaxScaler.Fit")
	}

	s.NFeatures = c
	s.DataMin = make([]float64, c)
	s.DataMax = make([]float64, c)
	s.DataRange = make([]float64, c)

	for j := 0; j < c; j++ {
		lo, hi := X.At(0, j), X.At(0, j)
		for i := 1; i < r; i++ {
			v := X.At(i, j)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		s.DataMin[j] = lo
		s.DataMax[j] = hi
		s.DataRange[j] = hi - lo
	}

	s.SetFitted()
	return nil
}

// Transform scales X into [0, 1] per feature. Features with zero range map
// to 0.
func (s *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if s.DataRange[j] == 0 {
				result.Set(i, j, 0)
				continue
			}
			result.Set(i, j, (X.At(i, j)-s.DataMin[j])/s.DataRange[j])
		}
	}
	return result, nil
}

// FitTransform combines Fit and Transform.
func (s *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps scaled data back to the original range.
func (s *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("MinMaxScaler", "InverseTransform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("MinMaxScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.DataRange[j]+s.DataMin[j])
		}
	}
	return result, nil
}
