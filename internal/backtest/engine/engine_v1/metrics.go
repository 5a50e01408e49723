package engine

import (
	"math"

	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// FillOutcome pairs a fill with the realized PnL delta the ledger reported
// for it. Position-increasing fills carry a zero delta.
type FillOutcome struct {
	Fill        types.Fill
	RealizedPnL float64
}

// Summarize reduces a completed run's snapshot and fill streams into
// performance metrics. It never touches the wall clock; annualization uses
// the configured bars-per-year factor against the number of simulation
// steps actually taken.
func Summarize(snapshots []types.Snapshot, outcomes []FillOutcome, config BacktestConfigV1) (types.Metrics, error) {
	if len(snapshots) == 0 {
		return types.Metrics{}, errors.New(errors.ErrCodeNoDataFound, "no snapshots to summarize")
	}

	initial := config.InitialCash
	final := snapshots[len(snapshots)-1].Equity

	metrics := types.Metrics{
		InitialCash: initial,
		FinalEquity: final,
		RealizedPnL: snapshots[len(snapshots)-1].RealizedPnL,
		TradeCount:  len(outcomes),
	}

	if initial != 0 {
		metrics.TotalReturn = final/initial - 1
	}

	returns := stepReturns(snapshots)
	mean, std := meanStd(returns)

	metrics.Volatility = std * math.Sqrt(config.BarsPerYear)
	metrics.AnnualizedReturn = annualizedReturn(initial, final, len(snapshots), config.BarsPerYear)
	metrics.MaxDrawdown = maxDrawdown(snapshots)

	// Zero-volatility runs report a Sharpe of zero rather than dividing by
	// zero or signalling infinity.
	if std > 0 {
		riskFreePerStep := config.RiskFreeRate / config.BarsPerYear
		metrics.SharpeRatio = (mean - riskFreePerStep) / std * math.Sqrt(config.BarsPerYear)
	}

	for _, outcome := range outcomes {
		if outcome.Fill.Partial {
			metrics.PartialFills++
		}

		metrics.TotalCosts += outcome.Fill.Cost

		switch {
		case outcome.RealizedPnL > 0:
			metrics.WinningTrades++
		case outcome.RealizedPnL < 0:
			metrics.LosingTrades++
		}
	}

	for _, snapshot := range snapshots {
		if len(snapshot.StaleSymbols) > 0 {
			metrics.StaleSteps++
		}
	}

	return metrics, nil
}

// stepReturns computes simple step-over-step equity returns.
func stepReturns(snapshots []types.Snapshot) []float64 {
	if len(snapshots) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(snapshots)-1)

	for i := 1; i < len(snapshots); i++ {
		previous := snapshots[i-1].Equity
		if previous == 0 {
			returns = append(returns, 0)
			continue
		}

		returns = append(returns, snapshots[i].Equity/previous-1)
	}

	return returns
}

// meanStd returns the mean and sample standard deviation of the series.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, value := range values {
		sum += value
	}

	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}

	sumSquares := 0.0
	for _, value := range values {
		deviation := value - mean
		sumSquares += deviation * deviation
	}

	return mean, math.Sqrt(sumSquares / float64(len(values)-1))
}

// annualizedReturn compounds the total return over the observed step count
// scaled to bars-per-year. Degenerate inputs report zero.
func annualizedReturn(initial, final float64, steps int, barsPerYear float64) float64 {
	if steps == 0 || initial <= 0 || final <= 0 {
		return 0
	}

	return math.Pow(final/initial, barsPerYear/float64(steps)) - 1
}

// maxDrawdown returns the largest peak-to-trough equity decline as a
// fraction of the peak. A monotonically rising series reports zero.
func maxDrawdown(snapshots []types.Snapshot) float64 {
	peak := 0.0
	worst := 0.0

	for _, snapshot := range snapshots {
		if snapshot.Equity > peak {
			peak = snapshot.Equity
		}

		if peak > 0 {
			if drawdown := (peak - snapshot.Equity) / peak; drawdown > worst {
				worst = drawdown
			}
		}
	}

	return worst
}
