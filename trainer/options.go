package trainer

import (
	"github.com/j2slab/MLStudio/application"
	"github.com/j2slab/MLStudio/callback"
	"github.com/j2slab/MLStudio/objective"
	"github.com/j2slab/MLStudio/optimizer"
	"github.com/j2slab/MLStudio/preprocessing"
)

// Option is a function that configures GradientDescent.
type Option func(*GradientDescent)

// WithApplication sets the task the model is trained for.
func WithApplication(app application.Application) Option {
	return func(gd *GradientDescent) {
		gd.app = app
	}
}

// WithObjective overrides the application's default loss.
func WithObjective(obj objective.Objective) Option {
	return func(gd *GradientDescent) {
		gd.obj = obj
	}
}

// WithOptimizer sets the parameter update rule. The optimizer instance must
// not be shared with another run.
func WithOptimizer(opt optimizer.Optimizer) Option {
	return func(gd *GradientDescent) {
		gd.opt = opt
	}
}

// WithEpochs sets the number of passes over the training data.
func WithEpochs(epochs int) Option {
	return func(gd *GradientDescent) {
		gd.epochs = epochs
	}
}

// WithBatchSize sets the mini-batch size. Zero or negative trains on the
// whole dataset per step.
func WithBatchSize(size int) Option {
	return func(gd *GradientDescent) {
		gd.batchSize = size
	}
}

// WithLearningRate sets the initial learning rate.
func WithLearningRate(rate float64) Option {
	return func(gd *GradientDescent) {
		gd.learningRate = rate
	}
}

// WithSchedule sets the learning rate schedule.
func WithSchedule(schedule callback.Schedule) Option {
	return func(gd *GradientDescent) {
		gd.schedule = schedule
	}
}

// WithGradientScaler rescales each batch gradient before the optimizer
// consumes it.
func WithGradientScaler(scaler *preprocessing.GradientScaler) Option {
	return func(gd *GradientDescent) {
		gd.scaler = scaler
	}
}

// WithValidationSize holds out the given fraction of rows for validation.
func WithValidationSize(size float64) Option {
	return func(gd *GradientDescent) {
		gd.valSize = size
	}
}

// WithStratify overrides the default split behavior; classifiers stratify
// by class unless disabled here.
func WithStratify(stratify bool) Option {
	return func(gd *GradientDescent) {
		gd.stratify = &stratify
	}
}

// WithSeed fixes the random source used for shuffling and splitting.
func WithSeed(seed int64) Option {
	return func(gd *GradientDescent) {
		gd.seed = seed
	}
}

// WithCallback registers a training callback.
func WithCallback(cb callback.Callback) Option {
	return func(gd *GradientDescent) {
		gd.callbacks.Add(cb)
	}
}

// WithEarlyStopping stops training when the monitored loss has not improved
// by minDelta for rounds consecutive epochs.
func WithEarlyStopping(rounds int, minDelta float64) Option {
	return func(gd *GradientDescent) {
		gd.callbacks.Add(callback.EarlyStopping(rounds, minDelta))
	}
}

// WithTol sets the loss improvement below which training counts as
// converged.
func WithTol(tol float64) Option {
	return func(gd *GradientDescent) {
		gd.tol = tol
	}
}
