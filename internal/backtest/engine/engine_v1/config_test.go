package engine_test

import (
	"testing"

	engine_v1 "github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/costmodel"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

const minimalConfig = `
initial_cash: 10000
execution_timing: same_bar
`

func parseConfig(t *testing.T, doc string) engine_v1.BacktestConfigV1 {
	t.Helper()

	var config engine_v1.BacktestConfigV1
	require.NoError(t, yaml.Unmarshal([]byte(doc), &config))

	return config
}

func TestConfigDefaults(t *testing.T) {
	config := parseConfig(t, minimalConfig)

	require.NoError(t, config.Validate())
	assert.Equal(t, costmodel.ModelRateFixed, config.CostModel)
	assert.InDelta(t, 252.0, config.BarsPerYear, 1e-9)
	assert.Zero(t, config.DecimalPrecision)
	assert.False(t, config.MarginAllowed)
	assert.True(t, config.StartTime.IsNone())
	assert.True(t, config.EndTime.IsNone())
}

func TestConfigExecutionTimingIsRequired(t *testing.T) {
	config := parseConfig(t, "initial_cash: 10000\n")

	err := config.Validate()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestConfigRejectsUnknownTiming(t *testing.T) {
	config := parseConfig(t, "initial_cash: 10000\nexecution_timing: on_open\n")

	assert.Error(t, config.Validate())
}

func TestConfigRejectsNonPositiveCash(t *testing.T) {
	config := parseConfig(t, "initial_cash: 0\nexecution_timing: same_bar\n")

	assert.Error(t, config.Validate())
}

func TestConfigRejectsInvertedPeriod(t *testing.T) {
	config := parseConfig(t, `
initial_cash: 10000
execution_timing: same_bar
start_time: 2024-06-01T00:00:00Z
end_time: 2024-01-01T00:00:00Z
`)

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_time")
}

func TestConfigParsesOptionalPeriod(t *testing.T) {
	config := parseConfig(t, `
initial_cash: 10000
execution_timing: next_bar
start_time: 2024-01-01T00:00:00Z
`)

	require.NoError(t, config.Validate())
	require.True(t, config.StartTime.IsSome())
	assert.Equal(t, 2024, config.StartTime.Unwrap().Year())
	assert.True(t, config.EndTime.IsNone())
}

func TestConfigSchemaListsTimingValues(t *testing.T) {
	config := engine_v1.DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	require.NoError(t, err)
	assert.Contains(t, schema, "same_bar")
	assert.Contains(t, schema, "next_bar")
	assert.Contains(t, schema, "initial_cash")
}
