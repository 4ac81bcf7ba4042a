package callback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackListOrder(t *testing.T) {
	var order []int
	cl := NewCallbackList(
		func(env *TrainEnv) error { order = append(order, 1); return nil },
		func(env *TrainEnv) error { order = append(order, 2); return nil },
	)
	cl.Add(func(env *TrainEnv) error { order = append(order, 3); return nil })

	err := cl.OnEpochEnd(&TrainEnv{Epoch: 0})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestCallbackListStages(t *testing.T) {
	var stages []Stage
	cl := NewCallbackList(func(env *TrainEnv) error {
		stages = append(stages, env.Stage)
		return nil
	})

	require.NoError(t, cl.OnTrainBegin(&TrainEnv{}))
	require.NoError(t, cl.OnEpochEnd(&TrainEnv{}))
	require.NoError(t, cl.OnTrainEnd(&TrainEnv{}))

	assert.Equal(t, []Stage{StageTrainBegin, StageEpochEnd, StageTrainEnd}, stages)
}

func TestEarlyStoppingIgnoresNonEpochStages(t *testing.T) {
	cb := EarlyStopping(1, 0.0)

	env := &TrainEnv{Stage: StageTrainBegin, ValLoss: 1.0}
	require.NoError(t, cb(env))
	assert.False(t, env.StopTraining)
}

func TestEarlyStoppingStopsAfterRounds(t *testing.T) {
	cb := EarlyStopping(3, 0.0)

	losses := []float64{1.0, 0.9, 0.9, 0.9, 0.9}
	var stoppedAt int
	for epoch, loss := range losses {
		env := &TrainEnv{Epoch: epoch, ValLoss: loss, Loss: loss}
		require.NoError(t, cb(env))
		if env.StopTraining {
			stoppedAt = epoch
			break
		}
	}
	// Improvement at epoch 1, then three flat epochs.
	assert.Equal(t, 4, stoppedAt)
}

func TestEarlyStoppingMinDelta(t *testing.T) {
	cb := EarlyStopping(2, 0.05)

	// Improvements below minDelta do not reset the counter.
	env := &TrainEnv{ValLoss: 1.0}
	require.NoError(t, cb(env))
	env = &TrainEnv{Epoch: 1, ValLoss: 0.99}
	require.NoError(t, cb(env))
	assert.False(t, env.StopTraining)
	env = &TrainEnv{Epoch: 2, ValLoss: 0.98}
	require.NoError(t, cb(env))
	assert.True(t, env.StopTraining)
}

func TestEarlyStoppingFallsBackToTrainingLoss(t *testing.T) {
	cb := EarlyStopping(1, 0.0)

	env := &TrainEnv{Loss: 1.0, ValLoss: math.NaN()}
	require.NoError(t, cb(env))
	env = &TrainEnv{Epoch: 1, Loss: 1.0, ValLoss: math.NaN()}
	require.NoError(t, cb(env))
	assert.True(t, env.StopTraining)
}

func TestRecordHistory(t *testing.T) {
	var history History
	cb := RecordHistory(&history)

	for epoch, loss := range []float64{0.5, 0.4, 0.3} {
		env := &TrainEnv{
			Epoch:        epoch,
			Loss:         loss,
			ValLoss:      loss + 0.1,
			LearningRate: 0.01,
			Metrics:      map[string]float64{"accuracy": 0.8 + float64(epoch)*0.05},
		}
		require.NoError(t, cb(env))
	}

	assert.Equal(t, []float64{0.5, 0.4, 0.3}, history.Loss)
	assert.InDelta(t, 0.6, history.ValLoss[0], 1e-12)
	assert.Len(t, history.LearningRate, 3)
	assert.Equal(t, []float64{0.8, 0.85, 0.9}, history.Metrics["accuracy"])
}

func TestSchedules(t *testing.T) {
	t.Run("constant", func(t *testing.T) {
		s := NewConstantRate()
		assert.Equal(t, 0.1, s.NextRate(0, 0.1))
		assert.Equal(t, 0.1, s.NextRate(50, 0.1))
	})

	t.Run("time decay", func(t *testing.T) {
		s := NewTimeDecay(0.1, 0.5)
		assert.InDelta(t, 0.1, s.NextRate(0, 0.1), 1e-12)
		assert.InDelta(t, 0.1/1.5, s.NextRate(1, 0.1), 1e-12)
		assert.InDelta(t, 0.1/2.0, s.NextRate(2, 0.1), 1e-12)
	})

	t.Run("step decay", func(t *testing.T) {
		s := NewStepDecay(0.1, 0.5, 10)
		assert.InDelta(t, 0.1, s.NextRate(0, 0.1), 1e-12)
		assert.InDelta(t, 0.1, s.NextRate(9, 0.1), 1e-12)
		assert.InDelta(t, 0.05, s.NextRate(10, 0.1), 1e-12)
		assert.InDelta(t, 0.025, s.NextRate(20, 0.1), 1e-12)
	})

	t.Run("exponential decay", func(t *testing.T) {
		s := NewExponentialDecay(0.1, 0.1)
		assert.InDelta(t, 0.1, s.NextRate(0, 0.1), 1e-12)
		assert.InDelta(t, 0.1*math.Exp(-0.1), s.NextRate(1, 0.1), 1e-12)
	})
}

func TestScheduleRatesDecrease(t *testing.T) {
	schedules := []Schedule{
		NewTimeDecay(0.1, 0.2),
		NewStepDecay(0.1, 0.9, 1),
		NewExponentialDecay(0.1, 0.05),
	}
	for _, s := range schedules {
		prev := math.Inf(1)
		for epoch := 0; epoch < 20; epoch++ {
			rate := s.NextRate(epoch, prev)
			assert.Less(t, rate, prev)
			assert.Greater(t, rate, 0.0)
			prev = rate
		}
	}
}
