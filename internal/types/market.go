package types

import (
	"time"

	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// Bar is a single OHLCV observation for one instrument.
type Bar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// Validate checks a single bar for structural sanity.
func (b Bar) Validate() error {
	if b.Symbol == "" {
		return errors.New(errors.ErrCodeMalformedBar, "bar has empty symbol")
	}

	if b.Time.IsZero() {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar for %s has zero timestamp", b.Symbol)
	}

	if b.Open <= 0 || b.High <= 0 || b.Low <= 0 || b.Close <= 0 {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar for %s at %s has non-positive price", b.Symbol, b.Time)
	}

	if b.High < b.Low {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar for %s at %s has high below low", b.Symbol, b.Time)
	}

	if b.Volume < 0 {
		return errors.Newf(errors.ErrCodeMalformedBar, "bar for %s at %s has negative volume", b.Symbol, b.Time)
	}

	return nil
}

// ValidateSeries checks that bars belonging to the same symbol are strictly
// increasing in time. The input is expected in overall chronological order
// across symbols, the way a data source yields it.
func ValidateSeries(bars []Bar) error {
	lastSeen := make(map[string]time.Time)

	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return err
		}

		if prev, ok := lastSeen[bar.Symbol]; ok && !bar.Time.After(prev) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"series %s is not strictly increasing: %s follows %s", bar.Symbol, bar.Time, prev)
		}

		lastSeen[bar.Symbol] = bar.Time
	}

	return nil
}
