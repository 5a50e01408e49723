package indicator

import (
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// SMA computes a simple moving average over a fixed rolling window.
type SMA struct {
	period int
	window []float64
	sum    float64
	head   int
	filled bool
}

// NewSMA creates an SMA with the given period.
func NewSMA(period int) (*SMA, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "sma period must be positive, got %d", period)
	}

	return &SMA{
		period: period,
		window: make([]float64, period),
	}, nil
}

// Name returns the indicator type.
func (s *SMA) Name() Type {
	return TypeSMA
}

// Initialized reports whether the window has filled.
func (s *SMA) Initialized() bool {
	return s.filled
}

// Update feeds the next value into the window.
func (s *SMA) Update(value float64) {
	if s.filled {
		s.sum -= s.window[s.head]
	}

	s.window[s.head] = value
	s.sum += value
	s.head++

	if s.head == s.period {
		s.head = 0
		s.filled = true
	}
}

// Value returns the current average. Only meaningful once Initialized.
func (s *SMA) Value() float64 {
	if !s.filled {
		return 0
	}

	return s.sum / float64(s.period)
}

// Reset clears all accumulated state.
func (s *SMA) Reset() {
	s.window = make([]float64, s.period)
	s.sum = 0
	s.head = 0
	s.filled = false
}
