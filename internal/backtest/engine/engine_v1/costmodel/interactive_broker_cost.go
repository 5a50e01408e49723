package costmodel

import "math"

// InteractiveBrokerCost approximates the IBKR fixed US equity pricing:
// half a cent per share with a one dollar minimum.
type InteractiveBrokerCost struct{}

// NewInteractiveBrokerCost creates an IBKR-style per-share cost model.
func NewInteractiveBrokerCost() CostModel {
	return &InteractiveBrokerCost{}
}

// Cost implements CostModel.
func (c *InteractiveBrokerCost) Cost(quantity float64, price float64) float64 {
	if quantity == 0 {
		return 0
	}

	cost := 0.005 * math.Abs(quantity)
	if cost < 1.0 {
		return 1.0
	}

	return cost
}
