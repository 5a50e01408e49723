package types_test

import (
	"testing"

	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/stretchr/testify/assert"
)

// lookupPosition mimics accessors that hand out positions by value, the way
// the ledger does. The methods must be callable on that returned value.
func lookupPosition(quantity float64) types.Position {
	return types.Position{Symbol: "AAPL", Quantity: quantity, AvgCost: 100}
}

func TestPositionMethodsOnReturnedValue(t *testing.T) {
	assert.True(t, lookupPosition(0).IsFlat())
	assert.False(t, lookupPosition(10).IsFlat())

	assert.InDelta(t, 1100.0, lookupPosition(10).MarketValue(110), 1e-9)
	assert.InDelta(t, -1100.0, lookupPosition(-10).MarketValue(110), 1e-9)

	assert.InDelta(t, 100.0, lookupPosition(10).UnrealizedPnL(110), 1e-9)
	assert.InDelta(t, -100.0, lookupPosition(-10).UnrealizedPnL(110), 1e-9)
}
