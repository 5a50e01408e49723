package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents current holdings of an instrument. Quantity is signed:
// positive long, negative short. AvgCost is the volume-weighted entry price
// including transaction costs; it is recomputed only when the position grows
// in its current direction and preserved while it is being reduced.
type Position struct {
	Symbol   string    `yaml:"symbol" json:"symbol"`
	Quantity float64   `yaml:"quantity" json:"quantity"`
	AvgCost  float64   `yaml:"avg_cost" json:"avg_cost"`
	OpenedAt time.Time `yaml:"opened_at" json:"opened_at"`
}

// IsFlat reports whether the position holds no quantity.
func (p Position) IsFlat() bool {
	return p.Quantity == 0
}

// MarketValue returns quantity * price, negative for shorts.
func (p Position) MarketValue(price float64) float64 {
	value, _ := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(price)).Float64()

	return value
}

// UnrealizedPnL values the open position against the given mark price.
func (p Position) UnrealizedPnL(price float64) float64 {
	qty := decimal.NewFromFloat(p.Quantity)
	diff := decimal.NewFromFloat(price).Sub(decimal.NewFromFloat(p.AvgCost))
	pnl, _ := qty.Mul(diff).Float64()

	return pnl
}
