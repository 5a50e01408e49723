package datasource

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/types"
	"github.com/sinly-lab/sinly-quant/pkg/errors"
)

// InMemoryDataSource serves bars from a slice. Used by tests and by callers
// that already hold their data in memory.
type InMemoryDataSource struct {
	bars []types.Bar
}

// NewInMemoryDataSource creates a data source over the given bars. The bars
// are copied and sorted by time, symbol order breaking ties.
func NewInMemoryDataSource(bars []types.Bar) *InMemoryDataSource {
	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Time.Equal(sorted[j].Time) {
			return sorted[i].Symbol < sorted[j].Symbol
		}

		return sorted[i].Time.Before(sorted[j].Time)
	})

	return &InMemoryDataSource{bars: sorted}
}

// Initialize implements DataSource. It is a no-op for in-memory data.
func (d *InMemoryDataSource) Initialize(path string) error {
	return nil
}

func (d *InMemoryDataSource) inRange(bar types.Bar, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && bar.Time.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && bar.Time.After(end.Unwrap()) {
		return false
	}

	return true
}

// ReadAll implements DataSource.
func (d *InMemoryDataSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range d.bars {
			if !d.inRange(bar, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// ReadLastData implements DataSource.
func (d *InMemoryDataSource) ReadLastData(symbol string) (types.Bar, error) {
	for i := len(d.bars) - 1; i >= 0; i-- {
		if d.bars[i].Symbol == symbol {
			return d.bars[i], nil
		}
	}

	return types.Bar{}, errors.Newf(errors.ErrCodeNoDataFound, "no data for symbol %s", symbol)
}

// Count implements DataSource.
func (d *InMemoryDataSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, bar := range d.bars {
		if d.inRange(bar, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements DataSource.
func (d *InMemoryDataSource) Close() error {
	return nil
}
