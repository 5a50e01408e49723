package costmodel

import "math"

// RateFixedCost charges a proportional rate on traded notional plus a fixed
// per-trade cost: |quantity * price| * rate + fixed.
type RateFixedCost struct {
	rate  float64
	fixed float64
}

// NewRateFixedCost creates a proportional-plus-fixed cost model.
func NewRateFixedCost(rate float64, fixed float64) CostModel {
	return &RateFixedCost{
		rate:  rate,
		fixed: fixed,
	}
}

// Cost implements CostModel.
func (c *RateFixedCost) Cost(quantity float64, price float64) float64 {
	if quantity == 0 {
		return 0
	}

	return math.Abs(quantity*price)*c.rate + c.fixed
}
