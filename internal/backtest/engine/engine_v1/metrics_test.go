package engine_test

import (
	"testing"
	"time"

	engine_v1 "github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotAt(day int, equity float64) types.Snapshot {
	return types.Snapshot{
		Time:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Cash:   equity,
		Equity: equity,
	}
}

func TestSummarizeEmptyRunFails(t *testing.T) {
	_, err := engine_v1.Summarize(nil, nil, execConfig(nil))
	assert.Error(t, err)
}

func TestSummarizeFullInvestmentScenario(t *testing.T) {
	config := execConfig(func(c *engine_v1.BacktestConfigV1) { c.InitialCash = 1000 })

	// Equity path for a full investment at 100 with closes 100, 110, 90.
	snapshots := []types.Snapshot{
		snapshotAt(1, 1000),
		snapshotAt(2, 1100),
		snapshotAt(3, 900),
	}

	metrics, err := engine_v1.Summarize(snapshots, nil, config)
	require.NoError(t, err)

	assert.InDelta(t, -0.10, metrics.TotalReturn, 1e-9)
	assert.InDelta(t, 200.0/1100.0, metrics.MaxDrawdown, 1e-9)
	assert.InDelta(t, 900.0, metrics.FinalEquity, 1e-9)
	assert.Negative(t, metrics.AnnualizedReturn)
	assert.Positive(t, metrics.Volatility)
}

func TestSummarizeConstantEquity(t *testing.T) {
	config := execConfig(func(c *engine_v1.BacktestConfigV1) { c.InitialCash = 1000 })

	snapshots := []types.Snapshot{
		snapshotAt(1, 1000),
		snapshotAt(2, 1000),
		snapshotAt(3, 1000),
	}

	metrics, err := engine_v1.Summarize(snapshots, nil, config)
	require.NoError(t, err)

	assert.Zero(t, metrics.TotalReturn)
	assert.Zero(t, metrics.MaxDrawdown)
	assert.Zero(t, metrics.Volatility)
	assert.Zero(t, metrics.SharpeRatio, "zero volatility must not divide")
	assert.Zero(t, metrics.TradeCount)
}

func TestSummarizeMonotonicRiseHasNoDrawdown(t *testing.T) {
	config := execConfig(func(c *engine_v1.BacktestConfigV1) { c.InitialCash = 1000 })

	snapshots := []types.Snapshot{
		snapshotAt(1, 1000),
		snapshotAt(2, 1050),
		snapshotAt(3, 1200),
	}

	metrics, err := engine_v1.Summarize(snapshots, nil, config)
	require.NoError(t, err)

	assert.Zero(t, metrics.MaxDrawdown)
	assert.InDelta(t, 0.2, metrics.TotalReturn, 1e-9)
	assert.Positive(t, metrics.SharpeRatio)
}

func TestSummarizeTradeAccounting(t *testing.T) {
	config := execConfig(func(c *engine_v1.BacktestConfigV1) { c.InitialCash = 1000 })

	snapshots := []types.Snapshot{
		snapshotAt(1, 1000),
		{
			Time:        time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Cash:        1010,
			Equity:      1010,
			RealizedPnL: 10,
		},
	}

	outcomes := []engine_v1.FillOutcome{
		{Fill: types.Fill{Quantity: 10, Price: 100, Cost: 1}},
		{Fill: types.Fill{Quantity: -5, Price: 103, Cost: 1}, RealizedPnL: 14},
		{Fill: types.Fill{Quantity: -5, Price: 99, Cost: 1, Partial: true}, RealizedPnL: -4},
	}

	metrics, err := engine_v1.Summarize(snapshots, outcomes, config)
	require.NoError(t, err)

	assert.Equal(t, 3, metrics.TradeCount)
	assert.Equal(t, 1, metrics.WinningTrades)
	assert.Equal(t, 1, metrics.LosingTrades)
	assert.Equal(t, 1, metrics.PartialFills)
	assert.InDelta(t, 3.0, metrics.TotalCosts, 1e-9)
	assert.InDelta(t, 10.0, metrics.RealizedPnL, 1e-9)
}

func TestSummarizeCountsStaleSteps(t *testing.T) {
	config := execConfig(func(c *engine_v1.BacktestConfigV1) { c.InitialCash = 1000 })

	snapshots := []types.Snapshot{
		snapshotAt(1, 1000),
		{
			Time:         time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Cash:         1000,
			Equity:       1000,
			StaleSymbols: []string{"MSFT"},
		},
	}

	metrics, err := engine_v1.Summarize(snapshots, nil, config)
	require.NoError(t, err)
	assert.Equal(t, 1, metrics.StaleSteps)
}
