package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/sinly-lab/sinly-quant/internal/types"
)

// DataSource supplies the frozen market data a backtest run consumes.
// Implementations must yield bars in ascending time order, with strictly
// increasing timestamps per symbol; the engine re-validates this before the
// simulation loop starts and aborts on violation.
type DataSource interface {
	// Initialize initializes the data source with the given data path.
	Initialize(path string) error
	// ReadAll reads all the data from the data source and yields it to the
	// caller in ascending time order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// ReadLastData reads the most recent bar for a specific symbol.
	ReadLastData(symbol string) (types.Bar, error)
	// Count returns the number of bars in the data source.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close closes the data source and releases any resources.
	Close() error
}
