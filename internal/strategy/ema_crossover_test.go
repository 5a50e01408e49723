package strategy_test

import (
	"testing"
	"time"

	"github.com/sinly-lab/sinly-quant/internal/strategy"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistory struct {
	bars map[string][]types.Bar
}

func (f *fakeHistory) Symbols() []string {
	symbols := make([]string, 0, len(f.bars))
	for symbol := range f.bars {
		symbols = append(symbols, symbol)
	}

	return symbols
}

func (f *fakeHistory) Bars(symbol string) []types.Bar {
	return f.bars[symbol]
}

func (f *fakeHistory) Last(symbol string) (types.Bar, bool) {
	series := f.bars[symbol]
	if len(series) == 0 {
		return types.Bar{}, false
	}

	return series[len(series)-1], true
}

func (f *fakeHistory) Len(symbol string) int {
	return len(f.bars[symbol])
}

func (f *fakeHistory) push(bar types.Bar) {
	f.bars[bar.Symbol] = append(f.bars[bar.Symbol], bar)
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{bars: make(map[string][]types.Bar)}
}

func closeBar(symbol string, i int, close float64) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 1000,
	}
}

func TestEMACrossoverRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{name: "fast not below slow", config: "fast_period: 20\nslow_period: 20\n"},
		{name: "zero period", config: "fast_period: 0\nslow_period: 20\n"},
		{name: "weight above one", config: "fast_period: 5\nslow_period: 10\nweight: 1.5\n"},
		{name: "not yaml", config: "{{{"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := strategy.NewEMACrossover()
			assert.Error(t, s.Initialize(tc.config))
		})
	}
}

func TestEMACrossoverEmitsGoldenAndDeathCross(t *testing.T) {
	s := strategy.NewEMACrossover()
	require.NoError(t, s.Initialize("fast_period: 2\nslow_period: 3\nweight: 0.8\n"))

	history := newFakeHistory()
	prices := []float64{10, 10, 10, 20, 5}

	var signals []types.Signal

	for i, price := range prices {
		b := closeBar("AAPL", i, price)
		history.push(b)

		signalOpt, err := s.OnBar(history, b)
		require.NoError(t, err)

		if signalOpt.IsSome() {
			signals = append(signals, signalOpt.Unwrap())
		}
	}

	require.Len(t, signals, 2)

	golden := signals[0]
	assert.Equal(t, "golden_cross", golden.Reason)
	assert.Equal(t, types.TargetKindWeight, golden.Kind)
	assert.InDelta(t, 0.8, golden.Target, 1e-9)
	assert.Equal(t, "AAPL", golden.Symbol)

	death := signals[1]
	assert.Equal(t, "death_cross", death.Reason)
	assert.Zero(t, death.Target)
}

func TestEMACrossoverTracksSymbolsIndependently(t *testing.T) {
	s := strategy.NewEMACrossover()
	require.NoError(t, s.Initialize("fast_period: 2\nslow_period: 3\n"))

	history := newFakeHistory()

	// Only AAPL crosses; MSFT stays flat and must emit nothing.
	aapl := []float64{10, 10, 10, 20}
	msft := []float64{50, 50, 50, 50}

	var signals []types.Signal

	for i := range aapl {
		for _, b := range []types.Bar{closeBar("AAPL", i, aapl[i]), closeBar("MSFT", i, msft[i])} {
			history.push(b)

			signalOpt, err := s.OnBar(history, b)
			require.NoError(t, err)

			if signalOpt.IsSome() {
				signals = append(signals, signalOpt.Unwrap())
			}
		}
	}

	require.Len(t, signals, 1)
	assert.Equal(t, "AAPL", signals[0].Symbol)
}

func TestEMACrossoverSignalIsCausallyStamped(t *testing.T) {
	s := strategy.NewEMACrossover()
	require.NoError(t, s.Initialize("fast_period: 2\nslow_period: 3\n"))

	history := newFakeHistory()
	prices := []float64{10, 10, 10, 20}

	var last types.Bar
	var signal types.Signal

	for i, price := range prices {
		last = closeBar("AAPL", i, price)
		history.push(last)

		signalOpt, err := s.OnBar(history, last)
		require.NoError(t, err)

		if signalOpt.IsSome() {
			signal = signalOpt.Unwrap()
		}
	}

	assert.True(t, signal.Time.Equal(last.Time), "signal must carry the timestamp of the bar that produced it")
}
