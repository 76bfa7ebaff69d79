// Package trend implements the eight-condition trend template gate applied
// to every symbol before pattern detection.
package trend

import (
	"math"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/indicator"
)

// Condition names, keyed the way results are reported.
const (
	CondPriceAboveMidLongSMA  = "1_price_above_mid_long_sma"
	CondMidSMAAboveLongSMA    = "2_mid_sma_above_long_sma"
	CondLongSMATrendingUp     = "3_long_sma_trending_up"
	CondShortSMAAboveMidLong  = "4_short_sma_above_mid_long"
	CondPriceAboveShortSMA    = "5_price_above_short_sma"
	CondPriceAbove52WLow      = "6_price_30pct_above_52w_low"
	CondPriceNear52WHigh      = "7_price_within_25pct_of_52w_high"
	CondRSPercentileThreshold = "8_rs_percentile_above_70"
)

const week52Bars = 252

// Result reports the trend template evaluation for one symbol. When history
// is too short, Passes is false, Reason is set and Conditions is empty.
type Result struct {
	Passes     bool
	Reason     string
	Conditions map[string]bool
}

// Check evaluates all eight trend template conditions against a close-price
// series and an externally computed RS percentile. All eight must hold.
func Check(closes []float64, rsPercentile float64, cfg config.Config) Result {
	minData := cfg.SMALong
	if week52Bars > minData {
		minData = week52Bars
	}

	if len(closes) < minData {
		return Result{
			Passes:     false,
			Reason:     "insufficient data",
			Conditions: map[string]bool{},
		}
	}

	currentPrice := closes[len(closes)-1]

	smaShort, _ := indicator.LastSMA(closes, cfg.SMAShort)
	smaMid, _ := indicator.LastSMA(closes, cfg.SMAMid)
	smaLongSeries, _ := indicator.SMA(closes, cfg.SMALong)
	smaLong := smaLongSeries[len(smaLongSeries)-1]

	week52High := math.Inf(-1)
	week52Low := math.Inf(1)

	for _, c := range closes[len(closes)-week52Bars:] {
		week52High = math.Max(week52High, c)
		week52Low = math.Min(week52Low, c)
	}

	conditions := map[string]bool{
		CondPriceAboveMidLongSMA:  currentPrice > smaMid && currentPrice > smaLong,
		CondMidSMAAboveLongSMA:    smaMid > smaLong,
		CondLongSMATrendingUp:     longSMATrendingUp(smaLongSeries, cfg.SMALongTrendDays),
		CondShortSMAAboveMidLong:  smaShort > smaMid && smaShort > smaLong,
		CondPriceAboveShortSMA:    currentPrice > smaShort,
		CondPriceAbove52WLow:      currentPrice >= week52Low*(1+cfg.MinAbove52WLowPct/100),
		CondPriceNear52WHigh:      currentPrice >= week52High*(1-cfg.MaxBelow52WHighPct/100),
		CondRSPercentileThreshold: rsPercentile >= cfg.MinRSPercentile,
	}

	passes := true
	for _, ok := range conditions {
		passes = passes && ok
	}

	return Result{
		Passes:     passes,
		Conditions: conditions,
	}
}

// longSMATrendingUp reports whether the long SMA is higher now than it was
// trendDays defined observations ago.
func longSMATrendingUp(smaSeries []float64, trendDays int) bool {
	defined := make([]float64, 0, len(smaSeries))

	for _, v := range smaSeries {
		if !math.IsNaN(v) {
			defined = append(defined, v)
		}
	}

	if len(defined) < trendDays {
		return false
	}

	return defined[len(defined)-1] > defined[len(defined)-trendDays]
}
