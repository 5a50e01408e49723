package strategy

import (
	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/indicator"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/internal/version"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EMACrossoverConfig configures the EMA crossover strategy.
type EMACrossoverConfig struct {
	// FastPeriod is the period of the fast EMA.
	FastPeriod int `yaml:"fast_period"`
	// SlowPeriod is the period of the slow EMA.
	SlowPeriod int `yaml:"slow_period"`
	// Weight is the equity fraction targeted when a golden cross fires.
	Weight float64 `yaml:"weight"`
}

type emaPair struct {
	fast     *indicator.EMA
	slow     *indicator.EMA
	prevFast float64
	prevSlow float64
	hasPrev  bool
}

// EMACrossover goes long a full target weight when the fast EMA crosses
// above the slow EMA and flat when it crosses back below. Each symbol seen
// in the data gets its own indicator state.
type EMACrossover struct {
	config EMACrossoverConfig
	state  map[string]*emaPair
}

// NewEMACrossover creates an EMA crossover strategy with default periods
// 10/20 and full-weight allocation.
func NewEMACrossover() Strategy {
	return &EMACrossover{
		config: EMACrossoverConfig{
			FastPeriod: 10,
			SlowPeriod: 20,
			Weight:     1.0,
		},
		state: make(map[string]*emaPair),
	}
}

// Name implements Strategy.
func (s *EMACrossover) Name() string {
	return "ema_crossover"
}

// ApiVersion implements Strategy.
func (s *EMACrossover) ApiVersion() string {
	return version.StrategyApiVersion
}

// Initialize implements Strategy. An empty config keeps the defaults.
func (s *EMACrossover) Initialize(config string) error {
	if config != "" {
		if err := yaml.Unmarshal([]byte(config), &s.config); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse ema crossover config", err)
		}
	}

	if s.config.FastPeriod <= 0 || s.config.SlowPeriod <= 0 {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"ema periods must be positive, got fast=%d slow=%d", s.config.FastPeriod, s.config.SlowPeriod)
	}

	if s.config.FastPeriod >= s.config.SlowPeriod {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"fast period %d must be shorter than slow period %d", s.config.FastPeriod, s.config.SlowPeriod)
	}

	if s.config.Weight <= 0 || s.config.Weight > 1 {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"weight must be in (0, 1], got %f", s.config.Weight)
	}

	s.state = make(map[string]*emaPair)

	return nil
}

// OnBar implements Strategy.
func (s *EMACrossover) OnBar(history History, bar types.Bar) (optional.Option[types.Signal], error) {
	pair, ok := s.state[bar.Symbol]
	if !ok {
		fast, err := indicator.NewEMA(s.config.FastPeriod)
		if err != nil {
			return optional.None[types.Signal](), err
		}

		slow, err := indicator.NewEMA(s.config.SlowPeriod)
		if err != nil {
			return optional.None[types.Signal](), err
		}

		pair = &emaPair{fast: fast, slow: slow}
		s.state[bar.Symbol] = pair
	}

	pair.fast.Update(bar.Close)
	pair.slow.Update(bar.Close)

	if !pair.fast.Initialized() || !pair.slow.Initialized() {
		return optional.None[types.Signal](), nil
	}

	currentFast := pair.fast.Value()
	currentSlow := pair.slow.Value()

	result := optional.None[types.Signal]()

	if pair.hasPrev {
		// Golden cross: fast crosses above slow.
		if pair.prevFast <= pair.prevSlow && currentFast > currentSlow {
			result = optional.Some(types.Signal{
				Time:   bar.Time,
				Symbol: bar.Symbol,
				Target: s.config.Weight,
				Kind:   types.TargetKindWeight,
				Reason: "golden_cross",
			})
		}

		// Death cross: fast crosses below slow.
		if pair.prevFast >= pair.prevSlow && currentFast < currentSlow {
			result = optional.Some(types.Signal{
				Time:   bar.Time,
				Symbol: bar.Symbol,
				Target: 0,
				Kind:   types.TargetKindWeight,
				Reason: "death_cross",
			})
		}
	}

	pair.prevFast = currentFast
	pair.prevSlow = currentSlow
	pair.hasPrev = true

	return result, nil
}
