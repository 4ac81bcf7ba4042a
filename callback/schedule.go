package callback

import "math"

// Schedule computes the learning rate for the next epoch. Epochs are
// zero-based; every schedule returns its initial rate at epoch 0.
type Schedule interface {
	NextRate(epoch int, rate float64) float64
}

// ConstantRate keeps the learning rate unchanged.
type ConstantRate struct{}

// NewConstantRate creates a schedule that never changes the rate.
func NewConstantRate() *ConstantRate {
	return &ConstantRate{}
}

// NextRate returns rate unchanged.
func (s *ConstantRate) NextRate(_ int, rate float64) float64 {
	return rate
}

// TimeDecay divides the initial rate by 1 + decay*epoch.
type TimeDecay struct {
	InitialRate float64
	Decay       float64
}

// NewTimeDecay creates a time decay schedule.
func NewTimeDecay(initialRate, decay float64) *TimeDecay {
	return &TimeDecay{InitialRate: initialRate, Decay: decay}
}

// NextRate implements Schedule.
func (s *TimeDecay) NextRate(epoch int, _ float64) float64 {
	return s.InitialRate / (1 + s.Decay*float64(epoch))
}

// StepDecay multiplies the initial rate by DropFactor every EpochsPerDrop
// epochs.
type StepDecay struct {
	InitialRate   float64
	DropFactor    float64
	EpochsPerDrop int
}

// NewStepDecay creates a step decay schedule.
func NewStepDecay(initialRate, dropFactor float64, epochsPerDrop int) *StepDecay {
	if epochsPerDrop <= 0 {
		epochsPerDrop = 1
	}
	return &StepDecay{InitialRate: initialRate, DropFactor: dropFactor, EpochsPerDrop: epochsPerDrop}
}

// NextRate implements Schedule.
func (s *StepDecay) NextRate(epoch int, _ float64) float64 {
	drops := math.Floor(float64(epoch) / float64(s.EpochsPerDrop))
	return s.InitialRate * math.Pow(s.DropFactor, drops)
}

// ExponentialDecay multiplies the initial rate by exp(-decay*epoch).
type ExponentialDecay struct {
	InitialRate float64
	Decay       float64
}

// NewExponentialDecay creates an exponential decay schedule.
func NewExponentialDecay(initialRate, decay float64) *ExponentialDecay {
	return &ExponentialDecay{InitialRate: initialRate, Decay: decay}
}

// NextRate implements Schedule.
func (s *ExponentialDecay) NextRate(epoch int, _ float64) float64 {
	return s.InitialRate * math.Exp(-s.Decay*float64(epoch))
}
