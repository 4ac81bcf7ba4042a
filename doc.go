// Package mlstudio provides gradient descent model training for Go,
// covering linear, logistic and multinomial regression with a family of
// ten optimizers.
//
// The library follows a scikit-learn-like estimator design: models are
// configured with functional options, trained with Fit, and queried with
// Predict, PredictProba and Score.
//
// # Quick Start
//
// Train a linear regression model:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "gonum.org/v1/gonum/mat"
//
//	    "github.com/j2slab/MLStudio/optimizer"
//	    "github.com/j2slab/MLStudio/trainer"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{0, 1, 2, 3})
//	    y := mat.NewDense(4, 1, []float64{1, 3, 5, 7})
//
//	    gd := trainer.NewGradientDescent(
//	        trainer.WithOptimizer(optimizer.NewAdamDefault()),
//	        trainer.WithLearningRate(0.1),
//	        trainer.WithEpochs(500),
//	    )
//	    if err := gd.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, err := gd.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(mat.Formatted(pred))
//	}
//
// # Packages
//
//   - trainer: the GradientDescent estimator tying everything together
//   - optimizer: Classic, Momentum, Nesterov, Adagrad, Adadelta, RMSprop,
//     Adam, AdaMax, Nadam and AMSGrad update rules
//   - application: linear, logistic and multinomial regression forward passes
//   - objective: mean squared error and cross entropy losses
//   - activation: sigmoid and softmax
//   - preprocessing: scalers, gradient rescaling, label encoding
//   - model_selection: train/test splitting and mini-batch iteration
//   - callback: training hooks, early stopping, learning rate schedules
//   - metrics: regression and classification evaluation
//
// # Error Handling
//
// All errors carry stack traces via cockroachdb/errors and expose typed
// causes such as DimensionError and NotFittedError for errors.As checks.
// Non-fatal conditions like ConvergenceWarning are reported through a
// configurable warning handler; enable pkg/log to route them through
// zerolog.
package mlstudio
