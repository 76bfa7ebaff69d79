// Package market supplies preloaded price history to the screener and the
// backtest engine. All data is held in memory before a run starts so the
// simulation loop never touches I/O.
package market

import (
	"sort"
	"time"

	"github.com/sauravdhanuka/vcp-screener/internal/types"
	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// PriceProvider hands out daily bar series per symbol, in ascending date
// order.
type PriceProvider interface {
	// Load returns the full bar history for one symbol.
	Load(symbol string) ([]types.Bar, error)
	// LoadAll returns histories for every symbol in the universe. Symbols
	// with no data are omitted from the map rather than failing the batch.
	LoadAll(universe []string) (map[string][]types.Bar, error)
}

// Snapshot is an in-memory PriceProvider over a fixed set of series.
type Snapshot struct {
	data map[string][]types.Bar
}

// NewSnapshot wraps preloaded series in a provider. Each series is sorted
// by date so callers can rely on ascending order.
func NewSnapshot(data map[string][]types.Bar) *Snapshot {
	for symbol, bars := range data {
		sorted := make([]types.Bar, len(bars))
		copy(sorted, bars)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].Date.Before(sorted[j].Date)
		})
		data[symbol] = sorted
	}

	return &Snapshot{data: data}
}

func (s *Snapshot) Load(symbol string) ([]types.Bar, error) {
	bars, ok := s.data[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeSymbolNotFound, "no price data for %s", symbol)
	}

	return bars, nil
}

func (s *Snapshot) LoadAll(universe []string) (map[string][]types.Bar, error) {
	result := make(map[string][]types.Bar, len(universe))

	for _, symbol := range universe {
		if bars, ok := s.data[symbol]; ok {
			result[symbol] = bars
		}
	}

	return result, nil
}

// Symbols returns the symbols present in the snapshot, sorted.
func (s *Snapshot) Symbols() []string {
	symbols := make([]string, 0, len(s.data))
	for symbol := range s.data {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// AsOf returns the prefix of bars dated at or before the cut date. The
// input slice is never mutated.
func AsOf(bars []types.Bar, cut time.Time) []types.Bar {
	n := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(cut)
	})

	return bars[:n:n]
}
