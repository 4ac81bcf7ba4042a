package model

import "gonum.org/v1/gonum/mat"

// Fitter is the interface for trainable estimators.
type Fitter interface {
	// Fit trains the estimator on X and y.
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for estimators that produce predictions.
type Predictor interface {
	// Predict returns predictions for X.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for estimators that can evaluate themselves.
type Scorer interface {
	// Score returns a task-appropriate score: R^2 for regression,
	// accuracy for classification.
	Score(X, y mat.Matrix) (float64, error)
}

// Transformer is the interface for data transformations.
type Transformer interface {
	// Fit learns the parameters needed for the transformation.
	Fit(X mat.Matrix) error

	// Transform applies the transformation.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform combines Fit and Transform in one call.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer is implemented by transformations that can be undone.
type InverseTransformer interface {
	// InverseTransform maps transformed data back to the original space.
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// Regressor combines the interfaces of regression estimators.
type Regressor interface {
	Fitter
	Predictor
	Scorer
}

// Classifier combines the interfaces of classification estimators.
type Classifier interface {
	Fitter
	Predictor
	Scorer

	// PredictProba returns per-class probability estimates.
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}
