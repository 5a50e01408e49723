// Package strategy defines the contract between the backtest engine and
// signal-generating trading logic. A strategy only ever sees a History view
// truncated at the bar being processed, which makes look-ahead impossible by
// construction rather than by convention.
package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/internal/version"
)

// History is a causally restricted, read-only view of market data. All
// accessors return bars with timestamps at or before the bar currently being
// processed. Strategies must not mutate the returned slices.
type History interface {
	// Symbols returns all instruments present in the view so far.
	Symbols() []string
	// Bars returns the full series for a symbol up to and including the
	// current step, in ascending time order.
	Bars(symbol string) []types.Bar
	// Last returns the most recent bar for a symbol, if any.
	Last(symbol string) (types.Bar, bool)
	// Len returns the number of bars seen for a symbol.
	Len(symbol string) int
}

// Strategy converts causally available history into position signals.
// Implementations are invoked once per bar in strict time order and must be
// deterministic: no wall clock, no unseeded randomness.
type Strategy interface {
	// Name returns a human-readable strategy name used in result paths.
	Name() string
	// ApiVersion returns the strategy API version the implementation was
	// built against, checked for compatibility at load time.
	ApiVersion() string
	// Initialize configures the strategy from a YAML document.
	Initialize(config string) error
	// OnBar processes one bar and optionally emits a target-position signal.
	// The signal's timestamp must not exceed the bar's timestamp.
	OnBar(history History, bar types.Bar) (optional.Option[types.Signal], error)
}

// Func adapts a plain function to the Strategy interface for callers that
// have no configuration or per-run state of their own.
type Func func(history History, bar types.Bar) (optional.Option[types.Signal], error)

type funcStrategy struct {
	name string
	fn   Func
}

// NewFuncStrategy wraps fn as a named Strategy.
func NewFuncStrategy(name string, fn Func) Strategy {
	return &funcStrategy{
		name: name,
		fn:   fn,
	}
}

func (f *funcStrategy) Name() string {
	return f.name
}

func (f *funcStrategy) ApiVersion() string {
	return version.StrategyApiVersion
}

func (f *funcStrategy) Initialize(config string) error {
	return nil
}

func (f *funcStrategy) OnBar(history History, bar types.Bar) (optional.Option[types.Signal], error) {
	return f.fn(history, bar)
}
