package engine

import (
	"github.com/shopspring/decimal"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// Ledger holds the authoritative account state of one backtest run: cash,
// per-instrument positions, and cumulative realized PnL. It is mutated
// exclusively by applying fills, strictly sequentially; the engine threads a
// single owned instance through the simulation loop. Money arithmetic runs
// on decimals so repeated sequential mutation does not accumulate float
// drift into the accounting identity.
type Ledger struct {
	cash       decimal.Decimal
	positions  map[string]types.Position
	realized   decimal.Decimal
	totalCosts decimal.Decimal
}

// NewLedger creates a ledger with the given starting cash.
func NewLedger(initialCash float64) *Ledger {
	return &Ledger{
		cash:      decimal.NewFromFloat(initialCash),
		positions: make(map[string]types.Position),
	}
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 {
	cash, _ := l.cash.Float64()

	return cash
}

// RealizedPnL returns the cumulative realized profit and loss, net of the
// transaction costs charged on position-reducing fills.
func (l *Ledger) RealizedPnL() float64 {
	realized, _ := l.realized.Float64()

	return realized
}

// TotalCosts returns the sum of all transaction costs paid so far.
func (l *Ledger) TotalCosts() float64 {
	costs, _ := l.totalCosts.Float64()

	return costs
}

// Position returns the current position for a symbol. A flat, zero-value
// position is returned for symbols never traded.
func (l *Ledger) Position(symbol string) types.Position {
	if position, ok := l.positions[symbol]; ok {
		return position
	}

	return types.Position{Symbol: symbol}
}

// Positions returns a copy of all open positions.
func (l *Ledger) Positions() map[string]types.Position {
	result := make(map[string]types.Position, len(l.positions))
	for symbol, position := range l.positions {
		result[symbol] = position
	}

	return result
}

// Apply mutates the ledger with one fill and returns the realized PnL delta
// the fill produced (zero unless the fill reduced an existing position).
//
// Cash moves by exactly quantity*price + cost on a buy and symmetrically on
// a sell. Average cost is recomputed as a volume-weighted mean, with the
// transaction cost raising a long entry and lowering a short one, only when
// the position grows in its current direction; reducing a position leaves
// the average untouched and realizes
// (price - avg) * closed quantity, net of cost. A fill crossing through
// zero closes the old position entirely and opens the remainder at the fill
// price.
func (l *Ledger) Apply(fill types.Fill) (float64, error) {
	if err := fill.Validate(); err != nil {
		return 0, err
	}

	qty := decimal.NewFromFloat(fill.Quantity)
	price := decimal.NewFromFloat(fill.Price)
	cost := decimal.NewFromFloat(fill.Cost)

	// cash -= qty*price + cost; sells carry negative qty so cash increases.
	l.cash = l.cash.Sub(qty.Mul(price)).Sub(cost)
	l.totalCosts = l.totalCosts.Add(cost)

	position := l.Position(fill.Symbol)
	oldQty := decimal.NewFromFloat(position.Quantity)
	newQty := oldQty.Add(qty)

	realizedDelta := decimal.Zero

	switch {
	case oldQty.IsZero():
		// Entry cost worsens the effective entry: it raises a long entry
		// and lowers a short one.
		perUnitCost := cost.Div(qty.Abs())
		if qty.Sign() < 0 {
			position.AvgCost, _ = price.Sub(perUnitCost).Float64()
		} else {
			position.AvgCost, _ = price.Add(perUnitCost).Float64()
		}

		position.Quantity, _ = newQty.Float64()
		position.OpenedAt = fill.Time

	case oldQty.Sign() == qty.Sign():
		// Growing in the same direction: volume-weighted average entry,
		// transaction cost folded in with the direction's sign.
		oldNotional := oldQty.Abs().Mul(decimal.NewFromFloat(position.AvgCost))

		addNotional := qty.Abs().Mul(price)
		if qty.Sign() < 0 {
			addNotional = addNotional.Sub(cost)
		} else {
			addNotional = addNotional.Add(cost)
		}

		position.AvgCost, _ = oldNotional.Add(addNotional).Div(newQty.Abs()).Float64()
		position.Quantity, _ = newQty.Float64()

	default:
		// Reducing, possibly crossing through zero.
		closeQty := decimal.Min(qty.Abs(), oldQty.Abs())
		direction := decimal.NewFromInt(int64(oldQty.Sign()))
		avg := decimal.NewFromFloat(position.AvgCost)
		realizedDelta = direction.Mul(closeQty).Mul(price.Sub(avg)).Sub(cost)
		l.realized = l.realized.Add(realizedDelta)

		if newQty.IsZero() {
			position.Quantity = 0
		} else if newQty.Sign() == oldQty.Sign() {
			position.Quantity, _ = newQty.Float64()
		} else {
			// Crossed zero: the remainder opens a fresh position.
			position.Quantity, _ = newQty.Float64()
			position.AvgCost, _ = price.Float64()
			position.OpenedAt = fill.Time
		}
	}

	if position.Quantity == 0 {
		delete(l.positions, fill.Symbol)
	} else {
		l.positions[fill.Symbol] = position
	}

	delta, _ := realizedDelta.Float64()

	return delta, nil
}

// MarkToMarket values the account at the given prices: cash plus the sum of
// quantity * price over all open positions. Every held symbol must have a
// price; the engine guarantees this through stale-price carry.
func (l *Ledger) MarkToMarket(prices map[string]float64) (float64, error) {
	equity := l.cash

	for symbol, position := range l.positions {
		price, ok := prices[symbol]
		if !ok {
			return 0, errors.Newf(errors.ErrCodeDataNotFound, "no mark price for held symbol %s", symbol)
		}

		equity = equity.Add(decimal.NewFromFloat(position.Quantity).Mul(decimal.NewFromFloat(price)))
	}

	result, _ := equity.Float64()

	return result, nil
}
