// Package costmodel provides transaction cost models applied by the
// execution model when converting signals into fills.
package costmodel

import (
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// CostModel computes the transaction cost in account currency for a trade
// of the given absolute quantity at the given price.
type CostModel interface {
	Cost(quantity float64, price float64) float64
}

// Model selects a cost model implementation by name.
type Model string

const (
	ModelZero              Model = "zero"
	ModelRateFixed         Model = "rate_fixed"
	ModelInteractiveBroker Model = "interactive_broker"
)

// AllModels lists the valid model names, used for config schema generation.
var AllModels = []any{
	ModelZero,
	ModelRateFixed,
	ModelInteractiveBroker,
}

// New returns the cost model for the given name. Rate and fixed only apply
// to the rate_fixed model.
func New(model Model, rate float64, fixed float64) (CostModel, error) {
	switch model {
	case ModelZero:
		return NewZeroCost(), nil
	case ModelRateFixed:
		return NewRateFixedCost(rate, fixed), nil
	case ModelInteractiveBroker:
		return NewInteractiveBrokerCost(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidCostModel, "unknown cost model %q", model)
	}
}
