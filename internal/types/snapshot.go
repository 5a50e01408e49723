package types

import (
	"time"
)

// Snapshot captures the full ledger state at the end of one simulated step.
// Snapshots are append-only and strictly ordered by time; the ordered
// sequence is the sole input to the metrics aggregator.
type Snapshot struct {
	Time time.Time `yaml:"time" json:"time"`
	// Cash is the ledger cash balance after all fills at this step.
	Cash float64 `yaml:"cash" json:"cash"`
	// Equity is cash plus the mark-to-market value of all open positions.
	Equity float64 `yaml:"equity" json:"equity"`
	// RealizedPnL is the cumulative realized profit and loss so far.
	RealizedPnL float64 `yaml:"realized_pnl" json:"realized_pnl"`
	// Positions is a copy of the open positions at this step.
	Positions map[string]Position `yaml:"positions" json:"positions"`
	// StaleSymbols lists held instruments that had no bar at this step and
	// were marked at their last known close instead.
	StaleSymbols []string `yaml:"stale_symbols,omitempty" json:"stale_symbols,omitempty"`
	// PartialFill is true when at least one order at this step was clipped.
	PartialFill bool `yaml:"partial_fill" json:"partial_fill"`
}

// HasDataQualityFlag reports whether the step relied on stale marks.
func (s *Snapshot) HasDataQualityFlag() bool {
	return len(s.StaleSymbols) > 0
}
