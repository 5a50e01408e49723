package indicator

import (
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// Registry holds named indicator instances so strategies can share
// configured indicators by type.
type Registry interface {
	Register(indicator Indicator) error
	Get(name Type) (Indicator, error)
	// ResetAll resets every registered indicator, used between runs.
	ResetAll()
}

type registry struct {
	indicators map[Type]Indicator
}

// NewRegistry creates an empty indicator registry.
func NewRegistry() Registry {
	return &registry{
		indicators: make(map[Type]Indicator),
	}
}

func (r *registry) Register(indicator Indicator) error {
	name := indicator.Name()
	if _, exists := r.indicators[name]; exists {
		return errors.Newf(errors.ErrCodeInvalidParameter, "indicator %s already registered", name)
	}

	r.indicators[name] = indicator

	return nil
}

func (r *registry) Get(name Type) (Indicator, error) {
	indicator, ok := r.indicators[name]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "indicator %s not found", name)
	}

	return indicator, nil
}

func (r *registry) ResetAll() {
	for _, indicator := range r.indicators {
		indicator.Reset()
	}
}
