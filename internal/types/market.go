package types

import "time"

// Bar is a single daily OHLCV observation for one symbol.
type Bar struct {
	Date   time.Time `csv:"date" yaml:"date"`
	Open   float64   `csv:"open" yaml:"open"`
	High   float64   `csv:"high" yaml:"high"`
	Low    float64   `csv:"low" yaml:"low"`
	Close  float64   `csv:"close" yaml:"close"`
	Volume float64   `csv:"volume" yaml:"volume"`
}

// MarketRegime labels the broad market state derived from a benchmark index.
type MarketRegime string

const (
	RegimeBullish  MarketRegime = "BULLISH"
	RegimeCautious MarketRegime = "CAUTIOUS"
	RegimeBearish  MarketRegime = "BEARISH"
	RegimeUnknown  MarketRegime = "UNKNOWN"
)

// Closes extracts the close column from a series of bars.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}

	return out
}

// Volumes extracts the volume column from a series of bars.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}

	return out
}
