package engine

import (
	"sort"

	"github.com/sinly-lab/sinly-quant/internal/types"
)

// historyView exposes the bar history visible to a strategy at the current
// simulation step. The full per-symbol series are preloaded once; the view
// advances a visibility cutoff per symbol as the loop consumes bars, so a
// strategy can never observe data past the bar it is being called with.
type historyView struct {
	bySymbol map[string][]types.Bar
	visible  map[string]int
}

func newHistoryView(bars []types.Bar) *historyView {
	view := &historyView{
		bySymbol: make(map[string][]types.Bar),
		visible:  make(map[string]int),
	}

	for _, bar := range bars {
		view.bySymbol[bar.Symbol] = append(view.bySymbol[bar.Symbol], bar)
	}

	return view
}

// advance makes one more bar of the symbol's series visible.
func (h *historyView) advance(symbol string) {
	if h.visible[symbol] < len(h.bySymbol[symbol]) {
		h.visible[symbol]++
	}
}

// Symbols returns the symbols with at least one visible bar, sorted.
func (h *historyView) Symbols() []string {
	symbols := make([]string, 0, len(h.visible))

	for symbol, count := range h.visible {
		if count > 0 {
			symbols = append(symbols, symbol)
		}
	}

	sort.Strings(symbols)

	return symbols
}

// Bars returns the visible series for a symbol, oldest first. The slice is
// capped at the cutoff so appends by the caller cannot reach future bars.
func (h *historyView) Bars(symbol string) []types.Bar {
	cutoff := h.visible[symbol]

	return h.bySymbol[symbol][:cutoff:cutoff]
}

// Last returns the most recent visible bar for a symbol.
func (h *historyView) Last(symbol string) (types.Bar, bool) {
	cutoff := h.visible[symbol]
	if cutoff == 0 {
		return types.Bar{}, false
	}

	return h.bySymbol[symbol][cutoff-1], true
}

// Len returns the number of visible bars for a symbol.
func (h *historyView) Len(symbol string) int {
	return h.visible[symbol]
}
