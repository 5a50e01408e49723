package engine

import (
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/sinly-lab/sinly-quant/internal/strategy"
	"github.com/sinly-lab/sinly-quant/internal/types"
)

// OnStepCallback is called once per simulated step, after the step's
// snapshot has been appended.
type OnStepCallback func(current int, total int)

// RunResult is the structured output of one completed backtest run: the
// ordered snapshot sequence, the fills that produced it, and the metrics
// summarized from it. A failed run produces no RunResult at all.
type RunResult struct {
	StrategyName string
	Snapshots    []types.Snapshot
	Fills        []types.Fill
	Metrics      types.Metrics
}

// Engine drives deterministic backtest runs. Implementations own all
// per-run state; two engines never share a ledger.
type Engine interface {
	// Initialize the engine with the given YAML configuration document.
	Initialize(config string) error
	// LoadStrategy loads a trading strategy together with its own YAML
	// configuration. Can be called multiple times; strategies run
	// sequentially, each against a fresh ledger.
	LoadStrategy(s strategy.Strategy, config string) error
	// SetDataSource sets the market data source for the engine.
	SetDataSource(source datasource.DataSource) error
	// SetDataPath sets the data file path handed to the data source before
	// the run. Sources that carry their own data may ignore it.
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for metrics and the
	// exported fill/snapshot parquet files. Optional; without it results
	// are only returned in memory.
	SetResultsFolder(folder string) error
	// Run executes all loaded strategies and returns one RunResult per
	// strategy. On any fatal error no partial results are returned.
	Run(onStep optional.Option[OnStepCallback]) ([]RunResult, error)
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
