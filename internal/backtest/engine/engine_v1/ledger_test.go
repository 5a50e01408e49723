package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	engine_v1 "github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fill(symbol string, quantity, price, cost float64) types.Fill {
	return types.Fill{
		ID:       uuid.New().String(),
		Time:     time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Symbol:   symbol,
		Quantity: quantity,
		Price:    price,
		Cost:     cost,
		Reason:   types.FillReasonStrategy,
	}
}

func TestLedgerBuyMovesCashAndOpensPosition(t *testing.T) {
	ledger := engine_v1.NewLedger(10000)

	realized, err := ledger.Apply(fill("AAPL", 10, 100, 5))
	require.NoError(t, err)
	assert.Zero(t, realized)

	// cash = 10000 - 10*100 - 5
	assert.InDelta(t, 8995.0, ledger.Cash(), 1e-9)

	position := ledger.Position("AAPL")
	assert.InDelta(t, 10.0, position.Quantity, 1e-9)
	// avg includes the cost: (10*100 + 5) / 10
	assert.InDelta(t, 100.5, position.AvgCost, 1e-9)
}

func TestLedgerSellIsSymmetric(t *testing.T) {
	ledger := engine_v1.NewLedger(1000)

	_, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)
	require.InDelta(t, 0.0, ledger.Cash(), 1e-9)

	_, err = ledger.Apply(fill("AAPL", -10, 100, 0))
	require.NoError(t, err)
	assert.InDelta(t, 1000.0, ledger.Cash(), 1e-9)
	assert.True(t, ledger.Position("AAPL").IsFlat())
}

func TestLedgerWeightedAverageOnIncrease(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)

	_, err = ledger.Apply(fill("AAPL", 10, 120, 0))
	require.NoError(t, err)

	position := ledger.Position("AAPL")
	assert.InDelta(t, 20.0, position.Quantity, 1e-9)
	assert.InDelta(t, 110.0, position.AvgCost, 1e-9)
}

func TestLedgerAveragePreservedOnReduce(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", 20, 100, 0))
	require.NoError(t, err)

	realized, err := ledger.Apply(fill("AAPL", -5, 110, 0))
	require.NoError(t, err)

	// 5 closed at +10 each.
	assert.InDelta(t, 50.0, realized, 1e-9)
	assert.InDelta(t, 50.0, ledger.RealizedPnL(), 1e-9)

	position := ledger.Position("AAPL")
	assert.InDelta(t, 15.0, position.Quantity, 1e-9)
	assert.InDelta(t, 100.0, position.AvgCost, 1e-9, "reduction must not touch the average")
}

func TestLedgerRealizedPnLNetOfCost(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)

	realized, err := ledger.Apply(fill("AAPL", -10, 110, 7))
	require.NoError(t, err)

	// 10 * (110 - 100) - 7
	assert.InDelta(t, 93.0, realized, 1e-9)
}

func TestLedgerLossOnReduce(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)

	realized, err := ledger.Apply(fill("AAPL", -10, 90, 0))
	require.NoError(t, err)

	assert.InDelta(t, -100.0, realized, 1e-9)
	assert.True(t, ledger.Position("AAPL").IsFlat())
}

func TestLedgerCrossZeroReopensAtFillPrice(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)

	// Sell 15: closes the 10 long, opens a 5 short at the fill price.
	realized, err := ledger.Apply(fill("AAPL", -15, 120, 0))
	require.NoError(t, err)

	assert.InDelta(t, 200.0, realized, 1e-9)

	position := ledger.Position("AAPL")
	assert.InDelta(t, -5.0, position.Quantity, 1e-9)
	assert.InDelta(t, 120.0, position.AvgCost, 1e-9)
}

func TestLedgerShortRealizesOnBuyBack(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", -10, 100, 0))
	require.NoError(t, err)

	realized, err := ledger.Apply(fill("AAPL", 10, 90, 0))
	require.NoError(t, err)

	// Short from 100 covered at 90.
	assert.InDelta(t, 100.0, realized, 1e-9)
	assert.True(t, ledger.Position("AAPL").IsFlat())
}

func TestLedgerShortEntryCostLowersEffectiveEntry(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", -10, 100, 10))
	require.NoError(t, err)

	// Short 10 at 100 paying 10: effective entry 100 - 10/10.
	assert.InDelta(t, 99.0, ledger.Position("AAPL").AvgCost, 1e-9)

	// Covering at the entry price realizes exactly the entry cost as loss.
	realized, err := ledger.Apply(fill("AAPL", 10, 100, 0))
	require.NoError(t, err)
	assert.InDelta(t, -10.0, realized, 1e-9)
	assert.InDelta(t, -10.0, ledger.RealizedPnL(), 1e-9)
}

func TestLedgerShortGrowthWeightsCostAgainstEntry(t *testing.T) {
	ledger := engine_v1.NewLedger(100000)

	_, err := ledger.Apply(fill("AAPL", -10, 100, 10))
	require.NoError(t, err)

	_, err = ledger.Apply(fill("AAPL", -10, 120, 10))
	require.NoError(t, err)

	position := ledger.Position("AAPL")
	assert.InDelta(t, -20.0, position.Quantity, 1e-9)
	// (10*99 + 10*120 - 10) / 20
	assert.InDelta(t, 109.0, position.AvgCost, 1e-9)
}

func TestLedgerMarkToMarket(t *testing.T) {
	ledger := engine_v1.NewLedger(1000)

	_, err := ledger.Apply(fill("AAPL", 5, 100, 0))
	require.NoError(t, err)

	equity, err := ledger.MarkToMarket(map[string]float64{"AAPL": 110})
	require.NoError(t, err)

	// 500 cash + 5 * 110
	assert.InDelta(t, 1050.0, equity, 1e-9)

	_, err = ledger.MarkToMarket(map[string]float64{})
	assert.Error(t, err, "held symbols need a mark price")
}

func TestLedgerRejectsInvalidFill(t *testing.T) {
	ledger := engine_v1.NewLedger(1000)

	bad := fill("AAPL", 0, 100, 0)
	_, err := ledger.Apply(bad)
	assert.Error(t, err)
	assert.InDelta(t, 1000.0, ledger.Cash(), 1e-9, "rejected fill must not move cash")
}

func TestLedgerNoFloatDriftOverManyFills(t *testing.T) {
	ledger := engine_v1.NewLedger(1000)

	for i := 0; i < 1000; i++ {
		_, err := ledger.Apply(fill("AAPL", 1, 0.1, 0))
		require.NoError(t, err)

		_, err = ledger.Apply(fill("AAPL", -1, 0.1, 0))
		require.NoError(t, err)
	}

	assert.Equal(t, 1000.0, ledger.Cash(), "decimal accounting must return to the exact start")
}
