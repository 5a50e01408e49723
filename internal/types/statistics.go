package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Metrics summarizes a completed backtest run. All ratios are fractions,
// not percentages.
type Metrics struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// StrategyName is the name of the strategy that produced the run.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// InitialCash is the starting capital.
	InitialCash float64 `yaml:"initial_cash" json:"initial_cash"`
	// FinalEquity is the equity of the last snapshot.
	FinalEquity float64 `yaml:"final_equity" json:"final_equity"`
	// TotalReturn is final equity / initial cash - 1.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// AnnualizedReturn scales TotalReturn by the configured bar frequency.
	AnnualizedReturn float64 `yaml:"annualized_return" json:"annualized_return"`
	// MaxDrawdown is the largest peak-to-trough equity decline, as a fraction.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// Volatility is the annualized standard deviation of per-step returns.
	Volatility float64 `yaml:"volatility" json:"volatility"`
	// SharpeRatio is the annualized excess return over volatility.
	// A zero-volatility equity curve yields 0, never a division error.
	SharpeRatio float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	// TradeCount is the number of fills recorded during the run.
	TradeCount int `yaml:"trade_count" json:"trade_count"`
	// WinningTrades counts position-reducing fills with positive realized PnL.
	WinningTrades int `yaml:"winning_trades" json:"winning_trades"`
	// LosingTrades counts position-reducing fills with negative realized PnL.
	LosingTrades int `yaml:"losing_trades" json:"losing_trades"`
	// PartialFills counts fills clipped by the cash constraint.
	PartialFills int `yaml:"partial_fills" json:"partial_fills"`
	// TotalCosts is the sum of all transaction costs paid.
	TotalCosts float64 `yaml:"total_costs" json:"total_costs"`
	// RealizedPnL is the cumulative realized profit and loss.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// StaleSteps counts snapshots that relied on stale price carry.
	StaleSteps int `yaml:"stale_steps" json:"stale_steps"`
	// FillsFilePath is the path to the exported fills parquet file.
	FillsFilePath string `yaml:"fills_file_path" json:"fills_file_path"`
	// SnapshotsFilePath is the path to the exported snapshots parquet file.
	SnapshotsFilePath string `yaml:"snapshots_file_path" json:"snapshots_file_path"`
	// DataPath is the market data file used for this run.
	DataPath string `yaml:"data_path" json:"data_path"`
}

// WriteMetrics writes run metrics to a YAML file.
func WriteMetrics(path string, metrics Metrics) error {
	data, err := yaml.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write metrics to file: %w", err)
	}

	return nil
}
