package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

const (
	FillReasonStrategy    string = "strategy"
	FillReasonClipped     string = "clipped_insufficient_cash"
	FillReasonNextBarExec string = "next_bar_execution"
)

// Fill is a simulated executed trade. Fills are immutable once recorded;
// the ledger and the audit store are the only consumers.
type Fill struct {
	ID     string    `yaml:"id" json:"id" validate:"required,uuid"`
	Time   time.Time `yaml:"time" json:"time" validate:"required"`
	Symbol string    `yaml:"symbol" json:"symbol" validate:"required"`
	// Quantity is signed: positive buys, negative sells.
	Quantity float64 `yaml:"quantity" json:"quantity"`
	Price    float64 `yaml:"price" json:"price" validate:"required,gt=0"`
	// Cost is the transaction cost charged on top of quantity*price.
	Cost float64 `yaml:"cost" json:"cost" validate:"gte=0"`
	// Partial is true when the requested order was clipped to the maximum
	// affordable size because margin trading is disabled.
	Partial bool   `yaml:"partial" json:"partial"`
	Reason  string `yaml:"reason" json:"reason"`
}

// Validate validates the Fill struct.
func (f *Fill) Validate() error {
	validate := validator.New()
	if err := validate.Struct(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFill, "invalid fill", err)
	}

	if f.Quantity == 0 {
		return errors.Newf(errors.ErrCodeInvalidFill, "fill %s has zero quantity", f.ID)
	}

	return nil
}

// Notional returns the absolute traded value excluding cost.
func (f *Fill) Notional() float64 {
	notional := f.Quantity * f.Price
	if notional < 0 {
		return -notional
	}

	return notional
}
