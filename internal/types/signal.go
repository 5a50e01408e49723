package types

import (
	"time"

	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// TargetKind describes how a signal's target value is interpreted.
type TargetKind string

const (
	// TargetKindWeight interprets Target as a fraction of current equity.
	// A target of 1 allocates the full account to the instrument.
	TargetKindWeight TargetKind = "weight"
	// TargetKindQuantity interprets Target as an absolute signed quantity.
	TargetKindQuantity TargetKind = "quantity"
)

// Signal is a desired position computed from causally available history.
// The engine rejects signals stamped after the bar that produced them.
type Signal struct {
	// Time is the timestamp of the bar the signal was derived from.
	Time time.Time
	// Symbol is the instrument the signal targets.
	Symbol string
	// Target is the desired position, interpreted according to Kind.
	// Negative values request a short position.
	Target float64
	// Kind selects between weight and quantity targets.
	Kind TargetKind
	// Reason is a free-form tag describing why the signal fired.
	Reason string
}

// Validate checks the signal for structural sanity.
func (s Signal) Validate() error {
	if s.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidSignal, "signal has empty symbol")
	}

	if s.Time.IsZero() {
		return errors.Newf(errors.ErrCodeInvalidSignal, "signal for %s has zero timestamp", s.Symbol)
	}

	if s.Kind != TargetKindWeight && s.Kind != TargetKindQuantity {
		return errors.Newf(errors.ErrCodeInvalidSignal, "signal for %s has unknown target kind %q", s.Symbol, s.Kind)
	}

	return nil
}
