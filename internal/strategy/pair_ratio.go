package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/indicator"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/internal/version"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PairRatioConfig configures the pair ratio strategy.
type PairRatioConfig struct {
	// BaseSymbol is the instrument that is traded.
	BaseSymbol string `yaml:"base_symbol"`
	// HedgeSymbol is the instrument the base is measured against.
	HedgeSymbol string `yaml:"hedge_symbol"`
	// SwingLeft and SwingRight size the pivot detection window on the
	// ratio series.
	SwingLeft  int `yaml:"swing_left"`
	SwingRight int `yaml:"swing_right"`
	// Weight is the equity fraction targeted on a breakout.
	Weight float64 `yaml:"weight"`
}

// PairRatio trades the base instrument on breakouts of the base/hedge price
// ratio. The ratio series is fed into a swing-level detector; a close above
// the last confirmed pivot high targets the configured weight in the base,
// a close below the last pivot low goes flat. Only bars of the base symbol
// trigger evaluation; the hedge leg contributes its latest causally
// available close.
type PairRatio struct {
	config PairRatioConfig
	swing  *indicator.SwingLevels
	long   bool
}

// NewPairRatio creates a pair ratio strategy. BaseSymbol and HedgeSymbol
// have no defaults and must be configured.
func NewPairRatio() Strategy {
	return &PairRatio{
		config: PairRatioConfig{
			SwingLeft:  15,
			SwingRight: 3,
			Weight:     1.0,
		},
	}
}

// Name implements Strategy.
func (s *PairRatio) Name() string {
	return "pair_ratio"
}

// ApiVersion implements Strategy.
func (s *PairRatio) ApiVersion() string {
	return version.StrategyApiVersion
}

// Initialize implements Strategy.
func (s *PairRatio) Initialize(config string) error {
	if config != "" {
		if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse pair ratio config", err)
		}
	}

	if s.config.BaseSymbol == "" || s.config.HedgeSymbol == "" {
		return errors.New(errors.ErrCodeStrategyConfigError, "pair ratio requires base_symbol and hedge_symbol")
	}

	if s.config.BaseSymbol == s.config.HedgeSymbol {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "base and hedge symbol are both %q", s.config.BaseSymbol)
	}

	if s.config.Weight <= 0 || s.config.Weight > 1 {
		return errors.Newf(errors.ErrCodeStrategyConfigError, "weight must be in (0, 1], got %f", s.config.Weight)
	}

	swing, err := indicator.NewSwingLevels(s.config.SwingLeft, s.config.SwingRight)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid swing window", err)
	}

	s.swing = swing
	s.long = false

	return nil
}

// OnBar implements Strategy.
func (s *PairRatio) OnBar(history History, bar types.Bar) (optional.Option[types.Signal], error) {
	none := optional.None[types.Signal]()

	if s.swing == nil {
		return none, errors.New(errors.ErrCodeStrategyNotLoaded, "pair ratio strategy not initialized")
	}

	if bar.Symbol != s.config.BaseSymbol {
		return none, nil
	}

	hedge, ok := history.Last(s.config.HedgeSymbol)
	if !ok || hedge.Close == 0 {
		return none, nil
	}

	ratio := bar.Close / hedge.Close

	// The swing detector consumes a synthetic ratio bar; high and low use
	// the same per-leg ratio so pivots come from closes only.
	s.swing.Update(types.Bar{
		Symbol: s.config.BaseSymbol + "/" + s.config.HedgeSymbol,
		Time:   bar.Time,
		Open:   ratio,
		High:   ratio,
		Low:    ratio,
		Close:  ratio,
		Volume: bar.Volume,
	})

	if !s.swing.Initialized() {
		return none, nil
	}

	if !s.long && s.swing.LastPivotHigh.IsSome() && ratio > s.swing.LastPivotHigh.Unwrap() {
		s.long = true

		return optional.Some(types.Signal{
			Time:   bar.Time,
			Symbol: s.config.BaseSymbol,
			Target: s.config.Weight,
			Kind:   types.TargetKindWeight,
			Reason: "ratio_breakout_high",
		}), nil
	}

	if s.long && s.swing.LastPivotLow.IsSome() && ratio < s.swing.LastPivotLow.Unwrap() {
		s.long = false

		return optional.Some(types.Signal{
			Time:   bar.Time,
			Symbol: s.config.BaseSymbol,
			Target: 0,
			Kind:   types.TargetKindWeight,
			Reason: "ratio_breakdown_low",
		}), nil
	}

	return none, nil
}
