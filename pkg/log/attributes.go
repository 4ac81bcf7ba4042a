// Package log defines standard attribute keys for training operations.
//
// Using these keys consistently keeps the emitted JSON analyzable: every fit
// logs the same field names for epochs, losses and data shapes. The keys
// follow a hierarchical naming convention (e.g. "data.samples",
// "training.epoch") for structured filtering.
package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "GradientDescent", "GradientScaler"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ApplicationKey names the forward model used by a training run.
	// Examples: "LinearRegression", "MultinomialLogisticRegression"
	ApplicationKey = "ml.application"

	// OptimizerKey names the update rule used by a training run.
	// Examples: "Classic", "Adam", "AMSGrad"
	OptimizerKey = "ml.optimizer"
)

// Data shape and characteristics.
const (
	// SamplesKey is the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns), bias included.
	FeaturesKey = "data.features"

	// ClassesKey is the number of target classes for classification.
	ClassesKey = "data.classes"

	// BatchSizeKey is the mini-batch size of the run.
	BatchSizeKey = "data.batch_size"
)

// Training progress and metrics.
const (
	// EpochKey is the current epoch of an iterative fit.
	EpochKey = "training.epoch"

	// LearningRateKey is the learning rate in effect for the epoch.
	LearningRateKey = "training.learning_rate"

	// LossKey is the training loss at the end of an epoch.
	LossKey = "metrics.loss"

	// ValLossKey is the validation loss at the end of an epoch.
	ValLossKey = "metrics.val_loss"

	// DurationMsKey is the wall-clock duration of an operation in
	// milliseconds.
	DurationMsKey = "perf.duration_ms"
)
