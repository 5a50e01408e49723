package engine

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/sinly-lab/sinly-quant/internal/logger"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"go.uber.org/zap"
)

// BacktestState persists the append-only fill and snapshot history of a run
// in an in-memory DuckDB database. Keeping the history in SQL makes the
// post-run aggregates cheap and the parquet export a single COPY statement.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewBacktestState opens an in-memory database for run history.
func NewBacktestState(log *logger.Logger) (*BacktestState, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to open state database", err)
	}

	return &BacktestState{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the history tables. Safe to call repeatedly.
func (s *BacktestState) Initialize() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS fills (
			id VARCHAR PRIMARY KEY,
			time TIMESTAMP NOT NULL,
			symbol VARCHAR NOT NULL,
			quantity DOUBLE NOT NULL,
			price DOUBLE NOT NULL,
			cost DOUBLE NOT NULL,
			partial BOOLEAN NOT NULL,
			reason VARCHAR NOT NULL,
			strategy VARCHAR NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			time TIMESTAMP NOT NULL,
			cash DOUBLE NOT NULL,
			equity DOUBLE NOT NULL,
			realized_pnl DOUBLE NOT NULL,
			position_count INTEGER NOT NULL,
			stale BOOLEAN NOT NULL,
			partial_fill BOOLEAN NOT NULL
		)`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return errors.Wrap(errors.ErrCodeBacktestInitFailed, "failed to create state tables", err)
		}
	}

	return nil
}

// RecordFill appends one fill to the history.
func (s *BacktestState) RecordFill(fill types.Fill, strategyName string) error {
	query, args, err := s.sq.
		Insert("fills").
		Columns("id", "time", "symbol", "quantity", "price", "cost", "partial", "reason", "strategy").
		Values(fill.ID, fill.Time, fill.Symbol, fill.Quantity, fill.Price, fill.Cost, fill.Partial, fill.Reason, strategyName).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build fill insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to record fill", err)
	}

	return nil
}

// RecordSnapshot appends one end-of-step snapshot to the history.
func (s *BacktestState) RecordSnapshot(snapshot types.Snapshot) error {
	query, args, err := s.sq.
		Insert("snapshots").
		Columns("time", "cash", "equity", "realized_pnl", "position_count", "stale", "partial_fill").
		Values(snapshot.Time, snapshot.Cash, snapshot.Equity, snapshot.RealizedPnL,
			len(snapshot.Positions), len(snapshot.StaleSymbols) > 0, snapshot.PartialFill).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot insert", err)
	}

	if _, err := s.db.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to record snapshot", err)
	}

	return nil
}

// GetAllFills returns every recorded fill in execution order.
func (s *BacktestState) GetAllFills() ([]types.Fill, error) {
	query, args, err := s.sq.
		Select("id", "time", "symbol", "quantity", "price", "cost", "partial", "reason").
		From("fills").
		OrderBy("time ASC", "symbol ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build fill query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query fills", err)
	}
	defer rows.Close()

	var fills []types.Fill

	for rows.Next() {
		var fill types.Fill
		var fillTime time.Time

		if err := rows.Scan(&fill.ID, &fillTime, &fill.Symbol, &fill.Quantity,
			&fill.Price, &fill.Cost, &fill.Partial, &fill.Reason); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan fill", err)
		}

		fill.Time = fillTime.UTC()
		fills = append(fills, fill)
	}

	return fills, rows.Err()
}

// TradeCount returns the number of recorded fills.
func (s *BacktestState) TradeCount() (int, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM fills").Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count fills", err)
	}

	return count, nil
}

// Write exports the fill and snapshot history as parquet files in the given
// folder and returns their paths.
func (s *BacktestState) Write(folder string) (string, string, error) {
	fillsPath := filepath.Join(folder, "fills.parquet")
	snapshotsPath := filepath.Join(folder, "snapshots.parquet")

	exports := map[string]string{
		"fills":     fillsPath,
		"snapshots": snapshotsPath,
	}

	for table, path := range exports {
		statement := fmt.Sprintf("COPY (SELECT * FROM %s ORDER BY time ASC) TO '%s' (FORMAT PARQUET)", table, path)
		if _, err := s.db.Exec(statement); err != nil {
			return "", "", errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to export %s", table)
		}

		s.logger.Debug("exported run history", zap.String("table", table), zap.String("path", path))
	}

	return fillsPath, snapshotsPath, nil
}

// Cleanup discards all recorded history so the state can host another run.
func (s *BacktestState) Cleanup() error {
	for _, table := range []string{"fills", "snapshots"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to clean %s", table)
		}
	}

	return nil
}

// Close releases the underlying database.
func (s *BacktestState) Close() error {
	return s.db.Close()
}
