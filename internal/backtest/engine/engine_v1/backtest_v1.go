package engine

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/sinly-lab/sinly-quant/internal/logger"
	"github.com/sinly-lab/sinly-quant/internal/strategy"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/internal/version"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type loadedStrategy struct {
	s      strategy.Strategy
	config string
}

// BacktestEngineV1 replays a frozen bar series through loaded strategies,
// one strategy at a time, each against a fresh ledger. The loop is strictly
// time-ordered and never consults the wall clock, so a given configuration,
// data set, and seed always reproduce the same snapshot and fill streams.
type BacktestEngineV1 struct {
	config        BacktestConfigV1
	strategies    []loadedStrategy
	dataSource    datasource.DataSource
	dataPath      string
	resultsFolder string
	log           *logger.Logger
	state         *BacktestState
}

// NewBacktestEngineV1 creates an uninitialized engine.
func NewBacktestEngineV1() engine.Engine {
	return &BacktestEngineV1{}
}

// Initialize parses and validates the YAML configuration and prepares the
// run state store.
func (b *BacktestEngineV1) Initialize(config string) error {
	var parsed BacktestConfigV1
	if err := yaml.Unmarshal([]byte(config), &parsed); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse engine configuration", err)
	}

	if err := parsed.Validate(); err != nil {
		return err
	}

	if b.log == nil {
		log, err := logger.NewLogger()
		if err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create logger", err)
		}

		b.log = log
	}

	state, err := NewBacktestState(b.log)
	if err != nil {
		return err
	}

	if err := state.Initialize(); err != nil {
		return err
	}

	b.config = parsed
	b.state = state
	b.log.Info("backtest engine initialized",
		zap.Float64("initial_cash", parsed.InitialCash),
		zap.String("execution_timing", string(parsed.ExecutionTiming)),
		zap.String("cost_model", string(parsed.CostModel)),
	)

	return nil
}

// LoadStrategy registers a strategy for the run after checking that it was
// built against a compatible strategy API version.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy, config string) error {
	if s == nil {
		return errors.New(errors.ErrCodeStrategyNotLoaded, "strategy is nil")
	}

	if err := version.CheckApiCompatibility(version.StrategyApiVersion, s.ApiVersion()); err != nil {
		return err
	}

	b.strategies = append(b.strategies, loadedStrategy{s: s, config: config})

	return nil
}

// SetDataSource sets the market data source for the run.
func (b *BacktestEngineV1) SetDataSource(source datasource.DataSource) error {
	if source == nil {
		return errors.New(errors.ErrCodeBacktestNoDatasource, "data source is nil")
	}

	b.dataSource = source

	return nil
}

// SetDataPath sets the data file handed to the data source before the run.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	b.dataPath = path

	return nil
}

// SetResultsFolder sets the output directory for run artifacts.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	b.resultsFolder = folder

	return nil
}

// GetConfigSchema returns the JSON schema of the engine configuration.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// Run executes every loaded strategy sequentially. Any failure aborts the
// whole run: recorded state is discarded and no results are returned.
func (b *BacktestEngineV1) Run(onStep optional.Option[engine.OnStepCallback]) ([]engine.RunResult, error) {
	if err := b.preRunCheck(); err != nil {
		return nil, err
	}

	if b.resultsFolder != "" {
		if err := os.MkdirAll(b.resultsFolder, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeBacktestNoResultsDir, "failed to create results folder", err)
		}
	}

	bars, err := b.loadBars()
	if err != nil {
		return nil, err
	}

	results := make([]engine.RunResult, 0, len(b.strategies))

	for _, loaded := range b.strategies {
		result, err := b.runStrategy(loaded, bars, onStep)
		if err != nil {
			if cleanupErr := b.state.Cleanup(); cleanupErr != nil {
				b.log.Warn("failed to clean aborted run state", zap.Error(cleanupErr))
			}

			return nil, errors.Wrapf(errors.ErrCodeBacktestRunAborted, err,
				"backtest aborted while running strategy %s", loaded.s.Name())
		}

		results = append(results, result)
	}

	return results, nil
}

func (b *BacktestEngineV1) preRunCheck() error {
	if b.state == nil {
		return errors.New(errors.ErrCodeBacktestStateNil, "engine is not initialized")
	}

	if len(b.strategies) == 0 {
		return errors.New(errors.ErrCodeBacktestNoStrategies, "no strategies loaded")
	}

	if b.dataSource == nil {
		return errors.New(errors.ErrCodeBacktestNoDatasource, "no data source set")
	}

	return nil
}

// loadBars freezes the full bar series for the run. Once loaded, the data
// never changes mid-run.
func (b *BacktestEngineV1) loadBars() ([]types.Bar, error) {
	if b.dataPath != "" {
		if err := b.dataSource.Initialize(b.dataPath); err != nil {
			return nil, err
		}
	}

	var bars []types.Bar

	for bar, err := range b.dataSource.ReadAll(b.config.StartTime, b.config.EndTime) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.New(errors.ErrCodeNoDataFound, "data source yielded no bars for the configured period")
	}

	if err := types.ValidateSeries(bars); err != nil {
		return nil, err
	}

	return bars, nil
}

// simStep groups the bars sharing one timestamp. Steps form the timeline of
// the simulation loop.
type simStep struct {
	time time.Time
	bars []types.Bar
}

func buildTimeline(bars []types.Bar) []simStep {
	var steps []simStep

	for _, bar := range bars {
		if len(steps) == 0 || !steps[len(steps)-1].time.Equal(bar.Time) {
			steps = append(steps, simStep{time: bar.Time})
		}

		last := &steps[len(steps)-1]
		last.bars = append(last.bars, bar)
	}

	// Bars within a step execute in symbol order regardless of how the
	// source interleaved them.
	for i := range steps {
		sort.SliceStable(steps[i].bars, func(a, c int) bool {
			return steps[i].bars[a].Symbol < steps[i].bars[c].Symbol
		})
	}

	return steps
}

func (b *BacktestEngineV1) runStrategy(loaded loadedStrategy, bars []types.Bar, onStep optional.Option[engine.OnStepCallback]) (engine.RunResult, error) {
	name := loaded.s.Name()
	b.log.Info("starting backtest run", zap.String("strategy", name), zap.Int("bars", len(bars)))

	if err := b.state.Cleanup(); err != nil {
		return engine.RunResult{}, err
	}

	if err := loaded.s.Initialize(loaded.config); err != nil {
		return engine.RunResult{}, errors.Wrapf(errors.ErrCodeStrategyConfigError, err,
			"strategy %s rejected its configuration", name)
	}

	execution, err := NewExecutionModel(b.config)
	if err != nil {
		return engine.RunResult{}, err
	}

	ledger := NewLedger(b.config.InitialCash)
	view := newHistoryView(bars)
	steps := buildTimeline(bars)

	lastPrices := make(map[string]float64)
	pending := make(map[string]types.Signal)

	var snapshots []types.Snapshot
	var outcomes []FillOutcome

	for i, step := range steps {
		for _, bar := range step.bars {
			view.advance(bar.Symbol)
			lastPrices[bar.Symbol] = bar.Close
		}

		partialFill := false

		executeSignal := func(signal types.Signal, bar types.Bar) error {
			equity, err := ledger.MarkToMarket(lastPrices)
			if err != nil {
				return err
			}

			fillOpt, err := execution.Fill(signal, bar, ledger, equity)
			if err != nil {
				return err
			}

			if fillOpt.IsNone() {
				return nil
			}

			fill := fillOpt.Unwrap()

			realized, err := ledger.Apply(fill)
			if err != nil {
				return err
			}

			if err := b.state.RecordFill(fill, name); err != nil {
				return err
			}

			outcomes = append(outcomes, FillOutcome{Fill: fill, RealizedPnL: realized})
			if fill.Partial {
				partialFill = true
			}

			return nil
		}

		// Signals deferred from the previous step execute first, at this
		// step's prices.
		for _, bar := range step.bars {
			signal, ok := pending[bar.Symbol]
			if !ok {
				continue
			}

			delete(pending, bar.Symbol)

			if err := executeSignal(signal, bar); err != nil {
				return engine.RunResult{}, err
			}
		}

		for _, bar := range step.bars {
			signalOpt, err := loaded.s.OnBar(view, bar)
			if err != nil {
				return engine.RunResult{}, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
					"strategy %s failed on bar %s %s", name, bar.Symbol, bar.Time)
			}

			if signalOpt.IsNone() {
				continue
			}

			signal := signalOpt.Unwrap()
			if signal.Time.After(step.time) {
				return engine.RunResult{}, errors.Newf(errors.ErrCodeStrategyContractViolation,
					"strategy %s emitted a signal timestamped %s ahead of the current step %s",
					name, signal.Time, step.time)
			}

			if err := signal.Validate(); err != nil {
				return engine.RunResult{}, err
			}

			switch b.config.ExecutionTiming {
			case ExecutionTimingSameBar:
				if err := executeSignal(signal, bar); err != nil {
					return engine.RunResult{}, err
				}
			case ExecutionTimingNextBar:
				// Latest signal per symbol wins within a step.
				if signal.Reason == "" {
					signal.Reason = types.FillReasonNextBarExec
				}

				pending[signal.Symbol] = signal
			}
		}

		equity, err := ledger.MarkToMarket(lastPrices)
		if err != nil {
			return engine.RunResult{}, err
		}

		snapshot := types.Snapshot{
			Time:         step.time,
			Cash:         ledger.Cash(),
			Equity:       equity,
			RealizedPnL:  ledger.RealizedPnL(),
			Positions:    ledger.Positions(),
			StaleSymbols: staleSymbols(ledger, step.bars),
			PartialFill:  partialFill,
		}

		if err := b.state.RecordSnapshot(snapshot); err != nil {
			return engine.RunResult{}, err
		}

		snapshots = append(snapshots, snapshot)

		if onStep.IsSome() {
			onStep.Unwrap()(i+1, len(steps))
		}
	}

	metrics, err := Summarize(snapshots, outcomes, b.config)
	if err != nil {
		return engine.RunResult{}, err
	}

	metrics.ID = uuid.New().String()
	metrics.Timestamp = time.Now().UTC()
	metrics.StrategyName = name
	metrics.DataPath = b.dataPath

	fills := make([]types.Fill, len(outcomes))
	for i, outcome := range outcomes {
		fills[i] = outcome.Fill
	}

	if b.resultsFolder != "" {
		if err := b.writeResults(name, &metrics); err != nil {
			return engine.RunResult{}, err
		}
	}

	b.log.Info("backtest run finished",
		zap.String("strategy", name),
		zap.Float64("final_equity", metrics.FinalEquity),
		zap.Float64("total_return", metrics.TotalReturn),
		zap.Int("trades", metrics.TradeCount),
	)

	return engine.RunResult{
		StrategyName: name,
		Snapshots:    snapshots,
		Fills:        fills,
		Metrics:      metrics,
	}, nil
}

// staleSymbols lists held symbols that received no bar at the current step
// and are therefore marked at a carried price.
func staleSymbols(ledger *Ledger, stepBars []types.Bar) []string {
	fresh := make(map[string]bool, len(stepBars))
	for _, bar := range stepBars {
		fresh[bar.Symbol] = true
	}

	var stale []string

	for symbol := range ledger.Positions() {
		if !fresh[symbol] {
			stale = append(stale, symbol)
		}
	}

	sort.Strings(stale)

	return stale
}

func (b *BacktestEngineV1) writeResults(strategyName string, metrics *types.Metrics) error {
	folder := filepath.Join(b.resultsFolder, strategyName)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestNoResultsDir, "failed to create strategy results folder", err)
	}

	fillsPath, snapshotsPath, err := b.state.Write(folder)
	if err != nil {
		return err
	}

	metrics.FillsFilePath = fillsPath
	metrics.SnapshotsFilePath = snapshotsPath

	return types.WriteMetrics(filepath.Join(folder, "metrics.yaml"), *metrics)
}
