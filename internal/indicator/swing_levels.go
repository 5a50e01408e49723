package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// SwingLevels detects pivot highs and lows in a bar stream. A pivot is
// confirmed when the candidate bar, `right` bars back, is the extreme of a
// window of `left` bars before it and `right` bars after it. Confirmation
// therefore lags the candidate by `right` bars, which keeps the indicator
// causal: a pivot is only reported once all bars needed to confirm it have
// been observed.
type SwingLevels struct {
	left  int
	right int

	highs []float64
	lows  []float64
	bars  []types.Bar

	// PivotHigh and PivotLow hold the confirmed pivot price for the bar the
	// indicator was last updated with, or None when no pivot confirmed.
	PivotHigh optional.Option[float64]
	PivotLow  optional.Option[float64]

	// LastPivotHigh and LastPivotLow retain the most recently confirmed
	// levels so strategies can test breakouts against them.
	LastPivotHigh optional.Option[float64]
	LastPivotLow  optional.Option[float64]
}

// NewSwingLevels creates a SwingLevels detector with the given window sizes.
func NewSwingLevels(left, right int) (*SwingLevels, error) {
	if left <= 0 || right <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "swing sizes must be positive, got left=%d right=%d", left, right)
	}

	return &SwingLevels{
		left:          left,
		right:         right,
		PivotHigh:     optional.None[float64](),
		PivotLow:      optional.None[float64](),
		LastPivotHigh: optional.None[float64](),
		LastPivotLow:  optional.None[float64](),
	}, nil
}

// Name returns the indicator type.
func (s *SwingLevels) Name() Type {
	return TypeSwingLevels
}

// Initialized reports whether the detection window has filled.
func (s *SwingLevels) Initialized() bool {
	return len(s.highs) >= s.windowSize()
}

func (s *SwingLevels) windowSize() int {
	return s.left + s.right + 1
}

// Update feeds the next bar and checks whether the candidate bar in the
// window became a confirmed pivot.
func (s *SwingLevels) Update(bar types.Bar) {
	size := s.windowSize()

	s.highs = append(s.highs, bar.High)
	s.lows = append(s.lows, bar.Low)
	s.bars = append(s.bars, bar)

	if len(s.highs) > size {
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
		s.bars = s.bars[1:]
	}

	s.PivotHigh = optional.None[float64]()
	s.PivotLow = optional.None[float64]()

	if len(s.highs) < size {
		return
	}

	candidate := s.left

	candidateHigh := s.highs[candidate]
	if candidateHigh == maxOf(s.highs) && candidateHigh > minOf(s.highs) {
		s.PivotHigh = optional.Some(candidateHigh)
		s.LastPivotHigh = optional.Some(candidateHigh)
	}

	candidateLow := s.lows[candidate]
	if candidateLow == minOf(s.lows) && candidateLow < maxOf(s.lows) {
		s.PivotLow = optional.Some(candidateLow)
		s.LastPivotLow = optional.Some(candidateLow)
	}
}

// Reset clears all accumulated state.
func (s *SwingLevels) Reset() {
	s.highs = nil
	s.lows = nil
	s.bars = nil
	s.PivotHigh = optional.None[float64]()
	s.PivotLow = optional.None[float64]()
	s.LastPivotHigh = optional.None[float64]()
	s.LastPivotLow = optional.None[float64]()
}

func maxOf(values []float64) float64 {
	result := values[0]
	for _, v := range values[1:] {
		if v > result {
			result = v
		}
	}

	return result
}

func minOf(values []float64) float64 {
	result := values[0]
	for _, v := range values[1:] {
		if v < result {
			result = v
		}
	}

	return result
}
