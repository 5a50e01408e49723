package indicator

import (
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// EMA computes an exponential moving average incrementally. The first
// `period` values are averaged to seed the EMA, after which the standard
// smoothing recurrence applies.
type EMA struct {
	period      int
	alpha       float64
	value       float64
	seedSum     float64
	count       int
	initialized bool
}

// NewEMA creates an EMA with the given period.
func NewEMA(period int) (*EMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "ema period must be positive, got %d", period)
	}

	return &EMA{
		period: period,
		alpha:  2.0 / (float64(period) + 1.0),
	}, nil
}

// Name returns the indicator type.
func (e *EMA) Name() Type {
	return TypeEMA
}

// Initialized reports whether the seed window has filled.
func (e *EMA) Initialized() bool {
	return e.initialized
}

// Update feeds the next value into the average.
func (e *EMA) Update(value float64) {
	e.count++

	if !e.initialized {
		e.seedSum += value
		if e.count >= e.period {
			e.value = e.seedSum / float64(e.period)
			e.initialized = true
		}

		return
	}

	e.value = e.alpha*value + (1-e.alpha)*e.value
}

// Value returns the current average. Only meaningful once Initialized.
func (e *EMA) Value() float64 {
	return e.value
}

// Reset clears all accumulated state.
func (e *EMA) Reset() {
	e.value = 0
	e.seedSum = 0
	e.count = 0
	e.initialized = false
}
