// Package trainer implements batch gradient descent training for the
// linear, logistic and multinomial regression applications.
package trainer

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/j2slab/MLStudio/application"
	"github.com/j2slab/MLStudio/callback"
	"github.com/j2slab/MLStudio/core/model"
	"github.com/j2slab/MLStudio/metrics"
	"github.com/j2slab/MLStudio/model_selection"
	"github.com/j2slab/MLStudio/objective"
	"github.com/j2slab/MLStudio/optimizer"
	"github.com/j2slab/MLStudio/pkg/errors"
	"github.com/j2slab/MLStudio/pkg/log"
	"github.com/j2slab/MLStudio/preprocessing"
)

// GradientDescent trains a parameter vector by iterative gradient updates.
// It composes an application (the forward pass), an objective (loss and
// gradient), an optimizer (the update rule) and an optional gradient scaler
// into one estimator.
type GradientDescent struct {
	model.BaseEstimator

	app          application.Application
	obj          objective.Objective
	opt          optimizer.Optimizer
	epochs       int
	batchSize    int
	learningRate float64
	schedule     callback.Schedule
	scaler       *preprocessing.GradientScaler
	valSize      float64
	stratify     *bool
	seed         int64
	callbacks    *callback.CallbackList
	tol          float64

	theta    *mat.Dense
	classes  []float64
	nClasses int
	oneHot   bool
	history  *callback.History
}

var (
	_ model.Regressor  = (*GradientDescent)(nil)
	_ model.Classifier = (*GradientDescent)(nil)
)

// NewGradientDescent creates a gradient descent estimator. Without options
// it fits a linear regression with the classic update rule.
func NewGradientDescent(opts ...Option) *GradientDescent {
	gd := &GradientDescent{
		app:          application.NewLinearRegression(),
		epochs:       1000,
		learningRate: 0.01,
		schedule:     callback.NewConstantRate(),
		seed:         42,
		callbacks:    callback.NewCallbackList(),
		tol:          1e-4,
	}
	for _, opt := range opts {
		opt(gd)
	}
	return gd
}

// Fit trains the model on X and y. y must be a column vector: raw values
// for regression, class labels for classification.
func (gd *GradientDescent) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "GradientDescent.Fit")
	start := time.Now()

	yVec, err := preprocessing.ColumnVector(y)
	if err != nil {
		return err
	}
	n, features := X.Dims()
	if n != yVec.Len() {
		return errors.NewDimensionError("GradientDescent.Fit", n, yVec.Len(), 0)
	}
	if err := errors.CheckVector("GradientDescent.Fit", yVec, 0); err != nil {
		return err
	}

	if gd.obj == nil {
		gd.obj = gd.app.DefaultObjective()
	}
	if gd.opt == nil {
		gd.opt = optimizer.NewClassic()
	}

	Xb := preprocessing.AddBiasTerm(X)
	yTrain, err := gd.encodeTargets(yVec)
	if err != nil {
		return err
	}

	XTrain := Xb
	var XVal *mat.Dense
	var yVal *mat.VecDense
	if gd.valSize > 0 {
		stratify := gd.isClassifier()
		if gd.stratify != nil {
			stratify = *gd.stratify
		}
		XTrain, XVal, yTrain, yVal, err = model_selection.TrainTestSplit(Xb, yTrain,
			model_selection.WithTestSize(gd.valSize),
			model_selection.WithShuffle(true),
			model_selection.WithStratify(stratify),
			model_selection.WithSeed(gd.seed),
		)
		if err != nil {
			return err
		}
	}

	gd.theta = mat.NewDense(features+1, gd.thetaCols(), nil)
	gd.history = &callback.History{}
	record := callback.RecordHistory(gd.history)

	logger := log.GetLogger()
	logger.Info().
		Str(log.ModelNameKey, "GradientDescent").
		Str(log.ApplicationKey, gd.app.Name()).
		Str(log.OptimizerKey, gd.opt.Name()).
		Int(log.SamplesKey, n).
		Int(log.FeaturesKey, features).
		Int(log.ClassesKey, gd.nClasses).
		Int(log.BatchSizeKey, gd.batchSize).
		Msg("training started")

	yTrainMat, err := gd.targets(yTrain)
	if err != nil {
		return err
	}
	var yValMat *mat.Dense
	if yVal != nil {
		if yValMat, err = gd.targets(yVal); err != nil {
			return err
		}
	}

	it, err := model_selection.NewBatchIterator(XTrain, yTrain, gd.batchSize)
	if err != nil {
		return err
	}

	rate := gd.learningRate
	prevLoss := math.Inf(1)
	improvement := math.Inf(1)
	stopped := false
	lastEpoch := 0

	if err := gd.callbacks.OnTrainBegin(&callback.TrainEnv{
		MaxEpochs:    gd.epochs,
		Loss:         math.NaN(),
		ValLoss:      math.NaN(),
		LearningRate: rate,
		BeginTime:    start,
	}); err != nil {
		return err
	}

	for epoch := 0; epoch < gd.epochs; epoch++ {
		rate = gd.schedule.NextRate(epoch, rate)

		it.Reset()
		for {
			xb, yb, ok := it.Next()
			if !ok {
				break
			}
			ybMat, err := gd.targets(yb)
			if err != nil {
				return err
			}
			gradFn := gd.gradientFunc(xb, ybMat)
			if _, _, err := gd.opt.Update(gradFn, rate, gd.theta); err != nil {
				return err
			}
		}

		if err := errors.CheckMatrix("GradientDescent.Fit", gd.theta, epoch); err != nil {
			return err
		}

		loss, err := gd.lossOn(XTrain, yTrainMat)
		if err != nil {
			return err
		}
		valLoss := math.NaN()
		if XVal != nil {
			if valLoss, err = gd.lossOn(XVal, yValMat); err != nil {
				return err
			}
		}

		env := &callback.TrainEnv{
			Epoch:        epoch,
			MaxEpochs:    gd.epochs,
			Loss:         loss,
			ValLoss:      valLoss,
			LearningRate: rate,
			BeginTime:    start,
		}
		if err := gd.callbacks.OnEpochEnd(env); err != nil {
			return err
		}
		if err := record(env); err != nil {
			return err
		}

		improvement = prevLoss - loss
		prevLoss = loss
		lastEpoch = epoch
		if env.StopTraining {
			stopped = true
			break
		}
	}

	if err := gd.callbacks.OnTrainEnd(&callback.TrainEnv{
		Epoch:        lastEpoch,
		MaxEpochs:    gd.epochs,
		Loss:         prevLoss,
		ValLoss:      math.NaN(),
		LearningRate: rate,
		BeginTime:    start,
	}); err != nil {
		return err
	}

	if !stopped && improvement > gd.tol {
		errors.Warn(errors.NewConvergenceWarning("GradientDescent", gd.epochs,
			"loss was still improving when the epoch budget ran out"))
	}

	gd.SetFitted()

	logger.Info().
		Str(log.ModelNameKey, "GradientDescent").
		Int(log.EpochKey, lastEpoch).
		Float64(log.LossKey, prevLoss).
		Float64(log.DurationMsKey, float64(time.Since(start).Milliseconds())).
		Msg("training finished")
	return nil
}

// Predict returns predictions for X: raw values for regression, original
// class labels for classification.
func (gd *GradientDescent) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gd.IsFitted() {
		return nil, errors.NewNotFittedError("GradientDescent", "Predict")
	}

	Xb := preprocessing.AddBiasTerm(X)
	pred, err := gd.app.Predict(gd.theta, Xb)
	if err != nil {
		return nil, err
	}
	if !gd.isClassifier() {
		return pred, nil
	}

	// Classifier predictions are indices into the sorted class labels.
	rows, _ := pred.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		idx := int(pred.At(i, 0))
		if idx < 0 || idx >= len(gd.classes) {
			return nil, errors.NewValueError("GradientDescent.Predict", "prediction outside the fitted class range")
		}
		out.Set(i, 0, gd.classes[idx])
	}
	return out, nil
}

// PredictProba returns per-class probability estimates for X.
func (gd *GradientDescent) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !gd.IsFitted() {
		return nil, errors.NewNotFittedError("GradientDescent", "PredictProba")
	}
	Xb := preprocessing.AddBiasTerm(X)
	return gd.app.PredictProba(gd.theta, Xb)
}

// Score evaluates the fitted model on X and y: R^2 for regression,
// accuracy for classification.
func (gd *GradientDescent) Score(X, y mat.Matrix) (float64, error) {
	if !gd.IsFitted() {
		return 0, errors.NewNotFittedError("GradientDescent", "Score")
	}

	pred, err := gd.Predict(X)
	if err != nil {
		return 0, err
	}
	yVec, err := preprocessing.ColumnVector(y)
	if err != nil {
		return 0, err
	}
	predVec, err := preprocessing.ColumnVector(pred)
	if err != nil {
		return 0, err
	}

	if gd.isClassifier() {
		return metrics.Accuracy(yVec, predVec)
	}
	return metrics.R2Score(yVec, predVec)
}

// Theta returns a copy of the fitted parameters.
func (gd *GradientDescent) Theta() (*mat.Dense, error) {
	if !gd.IsFitted() {
		return nil, errors.NewNotFittedError("GradientDescent", "Theta")
	}
	return mat.DenseCopyOf(gd.theta), nil
}

// Classes returns the class labels seen during Fit, in ascending order.
func (gd *GradientDescent) Classes() []float64 {
	return gd.classes
}

// History returns the per-epoch training record, or nil before Fit.
func (gd *GradientDescent) History() *callback.History {
	return gd.history
}

// gradientFunc builds the closure handed to the optimizer: forward pass,
// loss gradient, then the optional gradient rescaling.
func (gd *GradientDescent) gradientFunc(X mat.Matrix, yMat *mat.Dense) optimizer.GradientFunc {
	return func(theta *mat.Dense) (*mat.Dense, error) {
		out, err := gd.app.ComputeOutput(theta, X)
		if err != nil {
			return nil, err
		}
		grad, err := gd.obj.Gradient(X, yMat, out)
		if err != nil {
			return nil, err
		}
		if gd.scaler == nil {
			return grad, nil
		}
		scaled, err := gd.scaler.FitTransform(grad)
		if err != nil {
			return nil, err
		}
		return mat.DenseCopyOf(scaled), nil
	}
}

func (gd *GradientDescent) lossOn(X mat.Matrix, yMat *mat.Dense) (float64, error) {
	out, err := gd.app.ComputeOutput(gd.theta, X)
	if err != nil {
		return 0, err
	}
	return gd.obj.Loss(yMat, out)
}

// encodeTargets prepares y for training: raw values for regression, labels
// encoded to 0..k-1 for classification.
func (gd *GradientDescent) encodeTargets(y *mat.VecDense) (*mat.VecDense, error) {
	switch gd.app.(type) {
	case *application.LinearRegression:
		gd.classes = nil
		gd.nClasses = 0
		gd.oneHot = false
		return y, nil
	case *application.LogisticRegression:
		encoded, classes := preprocessing.EncodeLabels(y)
		if len(classes) != 2 {
			return nil, errors.NewValueError("GradientDescent.Fit", "logistic regression requires exactly two classes")
		}
		gd.classes = classes
		gd.nClasses = 2
		gd.oneHot = false
		return encoded, nil
	default:
		encoded, classes := preprocessing.EncodeLabels(y)
		if len(classes) < 2 {
			return nil, errors.NewValueError("GradientDescent.Fit", "classification requires at least two classes")
		}
		gd.classes = classes
		gd.nClasses = len(classes)
		gd.oneHot = true
		return encoded, nil
	}
}

// targets converts an encoded label vector into the matrix shape the
// objective expects.
func (gd *GradientDescent) targets(y mat.Vector) (*mat.Dense, error) {
	if gd.oneHot {
		return preprocessing.OneHotEncode(y, gd.nClasses)
	}
	n := y.Len()
	t := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		t.Set(i, 0, y.AtVec(i))
	}
	return t, nil
}

func (gd *GradientDescent) isClassifier() bool {
	_, ok := gd.app.(*application.LinearRegression)
	return !ok
}

func (gd *GradientDescent) thetaCols() int {
	if gd.oneHot {
		return gd.nClasses
	}
	return 1
}
