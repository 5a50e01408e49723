// Package indicator provides incremental technical indicators used by the
// built-in strategies. Indicators consume one bar (or value) at a time and
// never see data past the bar they were last updated with, which keeps
// strategy computations causal by construction.
package indicator

// Type identifies an indicator implementation.
type Type string

const (
	TypeEMA         Type = "ema"
	TypeSMA         Type = "sma"
	TypeSwingLevels Type = "swing_levels"
)

// Indicator is the minimal surface shared by all indicators.
type Indicator interface {
	// Name returns the indicator type.
	Name() Type
	// Initialized reports whether enough data has been seen to produce values.
	Initialized() bool
	// Reset clears all accumulated state.
	Reset()
}
