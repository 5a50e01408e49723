package costmodel

// ZeroCost implements CostModel with no transaction costs.
type ZeroCost struct{}

// NewZeroCost creates a cost model that always returns zero.
func NewZeroCost() CostModel {
	return &ZeroCost{}
}

// Cost returns 0 for any trade.
func (c *ZeroCost) Cost(quantity float64, price float64) float64 {
	return 0.0
}
