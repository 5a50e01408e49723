package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine"
	engine_v1 "github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1"
	"github.com/sinly-lab/sinly-quant/internal/backtest/engine/engine_v1/datasource"
	"github.com/sinly-lab/sinly-quant/internal/logger"
	"github.com/sinly-lab/sinly-quant/internal/strategy"
	"github.com/sinly-lab/sinly-quant/internal/version"
	"github.com/urfave/cli/v3"
)

// backtestAction wires a configured engine to a data file and one of the
// built-in strategies, runs it, and prints the resulting metrics.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	strategyName := cmd.String("strategy")
	strategyConfigPath := cmd.String("strategy-config")
	output := cmd.String("output")

	configContent, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read engine config: %w", err)
	}

	strategyConfig := ""

	if strategyConfigPath != "" {
		content, err := os.ReadFile(strategyConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read strategy config: %w", err)
		}

		strategyConfig = string(content)
	}

	var selected strategy.Strategy

	switch strategyName {
	case "ema_crossover":
		selected = strategy.NewEMACrossover()
	case "pair_ratio":
		selected = strategy.NewPairRatio()
	default:
		return fmt.Errorf("unknown strategy %q, expected ema_crossover or pair_ratio", strategyName)
	}

	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	source, err := datasource.NewDuckDBDataSource(log)
	if err != nil {
		return err
	}
	defer source.Close()

	backtest := engine_v1.NewBacktestEngineV1()
	if err := backtest.Initialize(string(configContent)); err != nil {
		return err
	}

	if err := backtest.LoadStrategy(selected, strategyConfig); err != nil {
		return err
	}

	if err := backtest.SetDataSource(source); err != nil {
		return err
	}

	if err := backtest.SetDataPath(dataPath); err != nil {
		return err
	}

	if err := backtest.SetResultsFolder(output); err != nil {
		return err
	}

	var bar *progressbar.ProgressBar

	onStep := optional.Some(engine.OnStepCallback(func(current, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "backtesting")
		}

		_ = bar.Set(current)
	}))

	results, err := backtest.Run(onStep)
	if err != nil {
		return err
	}

	for _, result := range results {
		metrics := result.Metrics
		fmt.Printf("\nStrategy: %s\n", result.StrategyName)
		fmt.Printf("  Final equity:      %.2f\n", metrics.FinalEquity)
		fmt.Printf("  Total return:      %.2f%%\n", metrics.TotalReturn*100)
		fmt.Printf("  Annualized return: %.2f%%\n", metrics.AnnualizedReturn*100)
		fmt.Printf("  Max drawdown:      %.2f%%\n", metrics.MaxDrawdown*100)
		fmt.Printf("  Volatility:        %.2f%%\n", metrics.Volatility*100)
		fmt.Printf("  Sharpe ratio:      %.2f\n", metrics.SharpeRatio)
		fmt.Printf("  Trades:            %d (%d wins, %d losses, %d partial)\n",
			metrics.TradeCount, metrics.WinningTrades, metrics.LosingTrades, metrics.PartialFills)
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run a deterministic strategy backtest over a bar data file",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the engine YAML configuration",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bar data file (parquet or csv)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "strategy",
				Aliases:  []string{"s"},
				Usage:    "Strategy to run: ema_crossover or pair_ratio",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "strategy-config",
				Usage: "Optional path to the strategy YAML configuration",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Results folder for metrics and parquet exports",
				Value:   "results",
			},
		},
		Action: backtestAction,
		Commands: []*cli.Command{
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the engine configuration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					schema, err := engine_v1.NewBacktestEngineV1().GetConfigSchema()
					if err != nil {
						return err
					}

					fmt.Println(schema)

					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
