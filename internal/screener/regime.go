package screener

import (
	"github.com/sauravdhanuka/vcp-screener/internal/indicator"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

const (
	regimeShortSMA = 50
	regimeLongSMA  = 200
)

// RegimeReport carries the regime label plus the index readings behind it.
type RegimeReport struct {
	Regime     types.MarketRegime `yaml:"regime" json:"regime"`
	IndexClose float64            `yaml:"index_close" json:"index_close"`
	SMA50      float64            `yaml:"index_sma50" json:"index_sma50"`
	SMA200     float64            `yaml:"index_sma200" json:"index_sma200"`
	Above50    bool               `yaml:"above_50sma" json:"above_50sma"`
	Above200   bool               `yaml:"above_200sma" json:"above_200sma"`
}

// DetectRegime classifies the market off a benchmark index series. BULLISH
// needs the close above both SMAs with the 50 above the 200, CAUTIOUS only
// needs the close above the 200, everything else is BEARISH. Fewer than 200
// bars yields UNKNOWN.
func DetectRegime(indexBars []types.Bar) RegimeReport {
	if len(indexBars) < regimeLongSMA {
		return RegimeReport{Regime: types.RegimeUnknown}
	}

	closes := types.Closes(indexBars)
	current := closes[len(closes)-1]

	sma50, _ := indicator.LastSMA(closes, regimeShortSMA)
	sma200, _ := indicator.LastSMA(closes, regimeLongSMA)

	above50 := current > sma50
	above200 := current > sma200

	regime := types.RegimeBearish
	switch {
	case above50 && above200 && sma50 > sma200:
		regime = types.RegimeBullish
	case above200:
		regime = types.RegimeCautious
	}

	return RegimeReport{
		Regime:     regime,
		IndexClose: current,
		SMA50:      sma50,
		SMA200:     sma200,
		Above50:    above50,
		Above200:   above200,
	}
}
