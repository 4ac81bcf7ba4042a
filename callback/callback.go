// Package callback provides training-loop hooks and learning rate schedules.
package callback

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/j2slab/MLStudio/pkg/log"
)

// Stage identifies the point in the training lifecycle a callback is
// invoked at.
type Stage int

const (
	// StageEpochEnd fires after each epoch's batches and loss computation.
	StageEpochEnd Stage = iota
	// StageTrainBegin fires once before the first epoch.
	StageTrainBegin
	// StageTrainEnd fires once after the last epoch.
	StageTrainEnd
)

// TrainEnv carries the training state handed to callbacks. A callback may
// set StopTraining to request early termination; the loop checks the flag
// after each epoch.
type TrainEnv struct {
	Stage        Stage
	Epoch        int
	MaxEpochs    int
	Loss         float64
	ValLoss      float64
	LearningRate float64
	Metrics      map[string]float64
	BeginTime    time.Time
	StopTraining bool
}

// Callback is invoked by the training loop at each lifecycle stage.
type Callback func(env *TrainEnv) error

// CallbackList invokes callbacks in registration order.
type CallbackList struct {
	callbacks []Callback
}

// NewCallbackList creates a list from the given callbacks.
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{callbacks: callbacks}
}

// Add appends a callback to the list.
func (cl *CallbackList) Add(cb Callback) {
	cl.callbacks = append(cl.callbacks, cb)
}

// OnTrainBegin runs every callback with the stage set to StageTrainBegin.
func (cl *CallbackList) OnTrainBegin(env *TrainEnv) error {
	env.Stage = StageTrainBegin
	return cl.run(env)
}

// OnEpochEnd runs every callback with env. Invocation continues after a
// stop request so that all callbacks observe the final epoch.
func (cl *CallbackList) OnEpochEnd(env *TrainEnv) error {
	env.Stage = StageEpochEnd
	return cl.run(env)
}

// OnTrainEnd runs every callback with the stage set to StageTrainEnd.
func (cl *CallbackList) OnTrainEnd(env *TrainEnv) error {
	env.Stage = StageTrainEnd
	return cl.run(env)
}

func (cl *CallbackList) run(env *TrainEnv) error {
	for _, cb := range cl.callbacks {
		if err := cb(env); err != nil {
			return err
		}
	}
	return nil
}

// History records per-epoch training state.
type History struct {
	Loss         []float64
	ValLoss      []float64
	LearningRate []float64
	Metrics      map[string][]float64
}

// RecordHistory returns a callback that appends each epoch's state to
// history.
func RecordHistory(history *History) Callback {
	return func(env *TrainEnv) error {
		if env.Stage != StageEpochEnd {
			return nil
		}
		history.Loss = append(history.Loss, env.Loss)
		history.ValLoss = append(history.ValLoss, env.ValLoss)
		history.LearningRate = append(history.LearningRate, env.LearningRate)
		for name, value := range env.Metrics {
			if history.Metrics == nil {
				history.Metrics = make(map[string][]float64)
			}
			history.Metrics[name] = append(history.Metrics[name], value)
		}
		return nil
	}
}

// EarlyStopping returns a callback that stops training when the monitored
// loss has not improved by at least minDelta for the given number of
// consecutive epochs. Validation loss is monitored when present, training
// loss otherwise.
func EarlyStopping(rounds int, minDelta float64) Callback {
	best := math.Inf(1)
	noImprove := 0

	return func(env *TrainEnv) error {
		if env.Stage != StageEpochEnd {
			return nil
		}
		monitored := env.ValLoss
		if math.IsNaN(monitored) {
			monitored = env.Loss
		}

		if monitored < best-minDelta {
			best = monitored
			noImprove = 0
			return nil
		}

		noImprove++
		if noImprove >= rounds {
			env.StopTraining = true
			logger := log.GetLogger()
			logger.Debug().
				Int(log.EpochKey, env.Epoch).
				Float64(log.LossKey, monitored).
				Msg("early stopping triggered")
		}
		return nil
	}
}

// LogEvaluation returns a callback that logs epoch metrics at the given
// period.
func LogEvaluation(period int) Callback {
	if period <= 0 {
		period = 1
	}
	return func(env *TrainEnv) error {
		if env.Stage != StageEpochEnd || env.Epoch%period != 0 {
			return nil
		}
		logger := log.GetLogger()
		event := logger.Info().
			Int(log.EpochKey, env.Epoch).
			Float64(log.LossKey, env.Loss).
			Float64(log.LearningRateKey, env.LearningRate)
		if !math.IsNaN(env.ValLoss) {
			event = event.Float64(log.ValLossKey, env.ValLoss)
		}
		event.Msg("epoch complete")
		return nil
	}
}

var _ zerolog.LogObjectMarshaler = (*TrainEnv)(nil)

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (env *TrainEnv) MarshalZerologObject(e *zerolog.Event) {
	e.Int(log.EpochKey, env.Epoch).
		Float64(log.LossKey, env.Loss).
		Float64(log.LearningRateKey, env.LearningRate)
}
