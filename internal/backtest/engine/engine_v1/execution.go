package engine

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/costmodel"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// ExecutionModel converts target-position signals into fills against a
// specific bar. It owns the slippage model, the cost model, and the seeded
// random source for slippage jitter, so that two runs with the same
// configuration produce byte-identical fill streams.
type ExecutionModel struct {
	config    BacktestConfigV1
	costModel costmodel.CostModel
	rng       *rand.Rand
}

// NewExecutionModel builds an execution model from a validated config.
func NewExecutionModel(config BacktestConfigV1) (*ExecutionModel, error) {
	model, err := costmodel.New(config.CostModel, config.CostRate, config.FixedCost)
	if err != nil {
		return nil, err
	}

	return &ExecutionModel{
		config:    config,
		costModel: model,
		rng:       rand.New(rand.NewSource(config.RandomSeed)),
	}, nil
}

// Fill executes a signal against a bar and returns the resulting fill, or
// None when nothing needs to trade (already at target, untradeable bar, or
// the affordable quantity rounds to zero). The equity argument is the
// mark-to-market account value used to size weight signals.
//
// Buys that exceed available cash are clipped to the largest affordable
// quantity when margin is disabled, and the fill is flagged partial. Sells
// below a flat position are likewise clipped to the held quantity.
func (e *ExecutionModel) Fill(signal types.Signal, bar types.Bar, ledger *Ledger, equity float64) (optional.Option[types.Fill], error) {
	if bar.Time.Before(signal.Time) {
		return nil, errors.Newf(errors.ErrCodeFutureBarExecution,
			"signal for %s at %s executed against earlier bar %s",
			signal.Symbol, signal.Time, bar.Time)
	}

	if bar.Volume == 0 && !e.config.AllowZeroVolume {
		return nil, nil
	}

	current := ledger.Position(signal.Symbol).Quantity
	target, err := e.targetQuantity(signal, bar, equity)
	if err != nil {
		return nil, err
	}

	delta := e.truncate(target - current)
	if delta == 0 {
		return nil, nil
	}

	price := e.fillPrice(bar.Close, delta)
	cost := e.costModel.Cost(delta, price)
	partial := false

	if !e.config.MarginAllowed {
		if delta > 0 {
			required := delta*price + cost
			if cash := ledger.Cash(); required > cash {
				affordable := e.maxAffordableQuantity(cash, price)
				if affordable <= 0 {
					return nil, nil
				}

				delta = affordable
				cost = e.costModel.Cost(delta, price)
				partial = true
			}
		} else if current+delta < 0 {
			delta = e.truncate(-current)
			if delta == 0 {
				return nil, nil
			}

			cost = e.costModel.Cost(delta, price)
			partial = true
		}
	}

	reason := signal.Reason
	if reason == "" {
		reason = types.FillReasonStrategy
	}

	if partial {
		reason = types.FillReasonClipped
	}

	return optional.Some(types.Fill{
		ID:       uuid.New().String(),
		Time:     bar.Time,
		Symbol:   signal.Symbol,
		Quantity: delta,
		Price:    price,
		Cost:     cost,
		Partial:  partial,
		Reason:   reason,
	}), nil
}

// targetQuantity resolves a signal into an absolute target quantity.
// Weight signals size against equity at the execution bar's close and
// truncate toward zero at the configured precision.
func (e *ExecutionModel) targetQuantity(signal types.Signal, bar types.Bar, equity float64) (float64, error) {
	switch signal.Kind {
	case types.TargetKindWeight:
		if bar.Close <= 0 {
			return 0, errors.Newf(errors.ErrCodeMalformedBar, "non-positive close %f for %s", bar.Close, bar.Symbol)
		}

		return e.truncate(signal.Target * equity / bar.Close), nil
	case types.TargetKindQuantity:
		return e.truncate(signal.Target), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidSignal, "unknown target kind %s", signal.Kind)
	}
}

// fillPrice applies slippage against the trade direction. When jitter is
// configured a uniform draw from the seeded source widens the base rate.
func (e *ExecutionModel) fillPrice(close float64, delta float64) float64 {
	slippage := e.config.SlippageRate
	if e.config.SlippageJitter > 0 {
		slippage += e.rng.Float64() * e.config.SlippageJitter
	}

	if delta > 0 {
		return close * (1 + slippage)
	}

	return close * (1 - slippage)
}

// maxAffordableQuantity finds the largest quantity whose notional plus
// transaction cost fits inside the available cash. The cost depends on the
// quantity, so the estimate is refined iteratively before truncation.
func (e *ExecutionModel) maxAffordableQuantity(cash, price float64) float64 {
	if cash <= 0 || price <= 0 {
		return 0
	}

	quantity := cash / price

	for i := 0; i < 10; i++ {
		total := quantity*price + e.costModel.Cost(quantity, price)
		if total <= cash {
			break
		}

		quantity *= cash / total
	}

	quantity = e.truncate(quantity)
	step := math.Pow10(-e.config.DecimalPrecision)

	for quantity > 0 && quantity*price+e.costModel.Cost(quantity, price) > cash {
		quantity = e.truncate(quantity - step)
	}

	return quantity
}

func (e *ExecutionModel) truncate(quantity float64) float64 {
	multiplier := math.Pow10(e.config.DecimalPrecision)

	return math.Trunc(quantity*multiplier) / multiplier
}
