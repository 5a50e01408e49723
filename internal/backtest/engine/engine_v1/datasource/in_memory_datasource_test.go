package datasource_test

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBar(symbol string, day int, close float64) types.Bar {
	return types.Bar{
		Symbol: symbol,
		Time:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: 100,
	}
}

func collect(source datasource.DataSource, start, end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range source.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func TestInMemoryDataSourceSortsInput(t *testing.T) {
	source := datasource.NewInMemoryDataSource([]types.Bar{
		testBar("MSFT", 2, 200),
		testBar("AAPL", 1, 100),
		testBar("AAPL", 2, 101),
		testBar("MSFT", 1, 199),
	})

	bars, err := collect(source, nil, nil)
	require.NoError(t, err)
	require.Len(t, bars, 4)

	// Ascending time, symbol breaking ties.
	assert.Equal(t, "AAPL", bars[0].Symbol)
	assert.Equal(t, "MSFT", bars[1].Symbol)
	assert.Equal(t, 1, bars[0].Time.Day())
	assert.Equal(t, 2, bars[2].Time.Day())
}

func TestInMemoryDataSourceRangeFilter(t *testing.T) {
	source := datasource.NewInMemoryDataSource([]types.Bar{
		testBar("AAPL", 1, 100),
		testBar("AAPL", 2, 101),
		testBar("AAPL", 3, 102),
	})

	start := optional.Some(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	end := optional.Some(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC))

	bars, err := collect(source, start, end)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 2, bars[0].Time.Day())

	count, err := source.Count(start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInMemoryDataSourceReadLastData(t *testing.T) {
	source := datasource.NewInMemoryDataSource([]types.Bar{
		testBar("AAPL", 1, 100),
		testBar("AAPL", 3, 102),
		testBar("AAPL", 2, 101),
	})

	last, err := source.ReadLastData("AAPL")
	require.NoError(t, err)
	assert.InDelta(t, 102.0, last.Close, 1e-9)

	_, err = source.ReadLastData("TSLA")
	assert.Error(t, err)
}

func TestInMemoryDataSourceDoesNotMutateInput(t *testing.T) {
	input := []types.Bar{
		testBar("AAPL", 2, 101),
		testBar("AAPL", 1, 100),
	}

	datasource.NewInMemoryDataSource(input)

	assert.Equal(t, 2, input[0].Time.Day(), "constructor must copy before sorting")
}
