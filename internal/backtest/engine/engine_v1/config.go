package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/costmodel"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// ExecutionTiming selects the bar a signal is filled against.
type ExecutionTiming string

const (
	// ExecutionTimingSameBar fills a signal against the close of the bar
	// that produced it.
	ExecutionTimingSameBar ExecutionTiming = "same_bar"
	// ExecutionTimingNextBar defers a signal and fills it against the
	// symbol's next bar.
	ExecutionTimingNextBar ExecutionTiming = "next_bar"
)

// AllExecutionTimings lists the valid timings, used for schema generation.
var AllExecutionTimings = []any{
	ExecutionTimingSameBar,
	ExecutionTimingNextBar,
}

// BacktestConfigV1 is the engine configuration. ExecutionTiming has no
// default on purpose: it materially changes results, so a config that omits
// it fails validation instead of silently guessing.
type BacktestConfigV1 struct {
	InitialCash    float64         `yaml:"initial_cash" json:"initial_cash" validate:"required,gt=0" jsonschema:"title=Initial Cash,description=Starting capital for the backtest,minimum=0"`
	SlippageRate   float64         `yaml:"slippage_rate" json:"slippage_rate" validate:"gte=0,lt=1" jsonschema:"title=Slippage Rate,description=Fractional price degradation applied per fill"`
	SlippageJitter float64         `yaml:"slippage_jitter" json:"slippage_jitter" validate:"gte=0,lt=1" jsonschema:"title=Slippage Jitter,description=Upper bound of seeded random slippage added on top of the base rate"`
	CostRate       float64         `yaml:"cost_rate" json:"cost_rate" validate:"gte=0,lt=1" jsonschema:"title=Cost Rate,description=Proportional transaction cost on traded notional"`
	FixedCost      float64         `yaml:"fixed_cost" json:"fixed_cost" validate:"gte=0" jsonschema:"title=Fixed Cost,description=Fixed transaction cost per fill"`
	CostModel      costmodel.Model `yaml:"cost_model" json:"cost_model" validate:"required,oneof=zero rate_fixed interactive_broker" jsonschema:"title=Cost Model,description=The transaction cost model to apply"`
	MarginAllowed  bool            `yaml:"margin_allowed" json:"margin_allowed" jsonschema:"title=Margin Allowed,description=Allow negative cash and short positions"`
	// AllowZeroVolume permits fills on bars that traded no volume.
	AllowZeroVolume  bool            `yaml:"allow_zero_volume" json:"allow_zero_volume" jsonschema:"title=Allow Zero Volume,description=Permit fills on bars with zero traded volume"`
	ExecutionTiming  ExecutionTiming `yaml:"execution_timing" json:"execution_timing" validate:"required,oneof=same_bar next_bar" jsonschema:"title=Execution Timing,description=Fill on the signal bar or the next bar; required and has no default"`
	RandomSeed       int64           `yaml:"random_seed" json:"random_seed" jsonschema:"title=Random Seed,description=Seed for slippage jitter; identical seeds reproduce identical runs"`
	DecimalPrecision int             `yaml:"decimal_precision" json:"decimal_precision" validate:"gte=0,lte=8" jsonschema:"title=Decimal Precision,description=Decimal places quantities are truncated to; 0 trades whole units"`
	BarsPerYear      float64         `yaml:"bars_per_year" json:"bars_per_year" validate:"required,gt=0" jsonschema:"title=Bars Per Year,description=Bar frequency used to annualize returns and volatility"`
	RiskFreeRate     float64         `yaml:"risk_free_rate" json:"risk_free_rate" validate:"gte=0" jsonschema:"title=Risk Free Rate,description=Annual risk-free rate used in the Sharpe ratio"`

	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the backtest period"`
	EndTime   optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestConfigV1,
// mediating the optional time fields through pointers.
func (c *BacktestConfigV1) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCash      float64         `yaml:"initial_cash"`
		SlippageRate     float64         `yaml:"slippage_rate"`
		SlippageJitter   float64         `yaml:"slippage_jitter"`
		CostRate         float64         `yaml:"cost_rate"`
		FixedCost        float64         `yaml:"fixed_cost"`
		CostModel        costmodel.Model `yaml:"cost_model"`
		MarginAllowed    bool            `yaml:"margin_allowed"`
		AllowZeroVolume  bool            `yaml:"allow_zero_volume"`
		ExecutionTiming  ExecutionTiming `yaml:"execution_timing"`
		RandomSeed       int64           `yaml:"random_seed"`
		DecimalPrecision int             `yaml:"decimal_precision"`
		BarsPerYear      float64         `yaml:"bars_per_year"`
		RiskFreeRate     float64         `yaml:"risk_free_rate"`
		StartTime        *time.Time      `yaml:"start_time"`
		EndTime          *time.Time      `yaml:"end_time"`
	}

	config := plainConfig{
		CostModel:   costmodel.ModelRateFixed,
		BarsPerYear: 252,
	}

	if err := unmarshal(&config); err != nil {
		return err
	}

	c.InitialCash = config.InitialCash
	c.SlippageRate = config.SlippageRate
	c.SlippageJitter = config.SlippageJitter
	c.CostRate = config.CostRate
	c.FixedCost = config.FixedCost
	c.CostModel = config.CostModel
	c.MarginAllowed = config.MarginAllowed
	c.AllowZeroVolume = config.AllowZeroVolume
	c.ExecutionTiming = config.ExecutionTiming
	c.RandomSeed = config.RandomSeed
	c.DecimalPrecision = config.DecimalPrecision
	c.BarsPerYear = config.BarsPerYear
	c.RiskFreeRate = config.RiskFreeRate

	c.StartTime = optional.None[time.Time]()
	c.EndTime = optional.None[time.Time]()

	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}

	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the configuration. Invalid parameters are fatal at setup.
func (c *BacktestConfigV1) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time precedes start_time")
	}

	return nil
}

// GenerateSchema generates a JSON schema for the BacktestConfigV1.
func (c *BacktestConfigV1) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			if strings.Contains(t.String(), "costmodel.Model") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: costmodel.AllModels,
				}
			}
			if strings.Contains(t.String(), "engine.ExecutionTiming") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllExecutionTimings,
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-config-v1"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestConfigV1.
func (c *BacktestConfigV1) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns a BacktestConfigV1 with defaults for everything
// except InitialCash and ExecutionTiming, which callers must set.
func DefaultConfig() BacktestConfigV1 {
	return BacktestConfigV1{
		CostModel:   costmodel.ModelRateFixed,
		BarsPerYear: 252,
		StartTime:   optional.None[time.Time](),
		EndTime:     optional.None[time.Time](),
	}
}
