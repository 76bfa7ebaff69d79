// Package pattern detects volatility contraction bases in a single symbol's
// price series and scores their quality.
package pattern

import (
	"fmt"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

const (
	minDetectionBars = 50
	minBaseBars      = 20
	minPostPeakBars  = 5
)

// Detection is the structured outcome of running the detector over one
// symbol. When Found is false, Reason explains the rejection and the metric
// fields are zero.
type Detection struct {
	Found  bool
	Reason string

	Contractions     []types.Contraction
	NumContractions  int
	PivotPrice       float64
	BaseDepthPct     float64
	BaseDurationDays int
	TightnessRatio   float64
	VolumeDryUpPct   float64
	BaseStartIdx     int
}

func rejected(reason string) Detection {
	return Detection{Found: false, Reason: reason}
}

// Detect runs base detection, swing extraction, contraction pairing and the
// tightening walk over a bar series. The series must be in ascending date
// order.
func Detect(bars []types.Bar, cfg config.Config) Detection {
	if len(bars) < minDetectionBars {
		return rejected("insufficient data")
	}

	baseStart, ok := findBaseStart(bars, cfg.MinBaseCorrectionPct)
	if !ok {
		return rejected("no base formation found")
	}

	base := bars[baseStart:]
	if len(base) < minBaseBars {
		return rejected("base too short")
	}

	swingHighs := findSwingHighs(base, cfg.SwingOrder)
	swingLows := findSwingLows(base, cfg.SwingOrder)

	if len(swingHighs) < 2 || len(swingLows) < 2 {
		return rejected("not enough swing points")
	}

	contractions := pairContractions(base, swingHighs, swingLows)
	if len(contractions) < cfg.MinContractions {
		return rejected(fmt.Sprintf("only %d contractions found", len(contractions)))
	}

	kept := tighteningWalk(contractions, cfg.MinContractions)
	if len(kept) < cfg.MinContractions {
		return rejected("contractions not tightening")
	}

	if len(kept) > cfg.MaxContractions {
		kept = kept[:cfg.MaxContractions]
	}

	first := kept[0]
	last := kept[len(kept)-1]

	volDryUp := 0.0
	if first.AvgVolume > 0 {
		volDryUp = (1 - last.AvgVolume/first.AvgVolume) * 100
	}

	tightness := 1.0
	if first.RangePct > 0 {
		tightness = last.RangePct / first.RangePct
	}

	baseHigh := base[0].High
	baseLow := base[0].Low

	for _, b := range base[1:] {
		if b.High > baseHigh {
			baseHigh = b.High
		}

		if b.Low < baseLow {
			baseLow = b.Low
		}
	}

	return Detection{
		Found:            true,
		Contractions:     kept,
		NumContractions:  len(kept),
		PivotPrice:       last.HighValue,
		BaseDepthPct:     (baseHigh - baseLow) / baseHigh * 100,
		BaseDurationDays: len(base),
		TightnessRatio:   tightness,
		VolumeDryUpPct:   volDryUp,
		BaseStartIdx:     baseStart,
	}
}

// findBaseStart locates the series-wide maximum high and confirms the lowest
// close at or after it represents a decline of at least minCorrectionPct.
func findBaseStart(bars []types.Bar, minCorrectionPct float64) (int, bool) {
	peakIdx := 0
	for i, b := range bars {
		if b.High > bars[peakIdx].High {
			peakIdx = i
		}
	}

	postPeak := bars[peakIdx:]
	if len(postPeak) < minPostPeakBars {
		return 0, false
	}

	trough := postPeak[0].Close
	for _, b := range postPeak[1:] {
		if b.Close < trough {
			trough = b.Close
		}
	}

	peakHigh := bars[peakIdx].High
	correctionPct := (peakHigh - trough) / peakHigh * 100

	if correctionPct >= minCorrectionPct {
		return peakIdx, true
	}

	return 0, false
}

// findSwingHighs returns indices of bars whose high is the maximum within
// a window of order bars on each side. Comparisons clip at the series
// boundaries, so edge bars can qualify.
func findSwingHighs(bars []types.Bar, order int) []int {
	indices := make([]int, 0)

	for i := range bars {
		lo := i - order
		if lo < 0 {
			lo = 0
		}

		hi := i + order
		if hi > len(bars)-1 {
			hi = len(bars) - 1
		}

		isSwing := true
		for j := lo; j <= hi; j++ {
			if bars[j].High > bars[i].High {
				isSwing = false
				break
			}
		}

		if isSwing {
			indices = append(indices, i)
		}
	}

	return indices
}

// findSwingLows mirrors findSwingHighs for local minima of the low series.
func findSwingLows(bars []types.Bar, order int) []int {
	indices := make([]int, 0)

	for i := range bars {
		lo := i - order
		if lo < 0 {
			lo = 0
		}

		hi := i + order
		if hi > len(bars)-1 {
			hi = len(bars) - 1
		}

		isSwing := true
		for j := lo; j <= hi; j++ {
			if bars[j].Low < bars[i].Low {
				isSwing = false
				break
			}
		}

		if isSwing {
			indices = append(indices, i)
		}
	}

	return indices
}

// pairContractions matches each swing high with the nearest swing low at or
// after it and measures the range and mean volume over the span. Swing highs
// with no subsequent swing low are skipped.
func pairContractions(bars []types.Bar, swingHighs, swingLows []int) []types.Contraction {
	contractions := make([]types.Contraction, 0, len(swingHighs))

	for _, shIdx := range swingHighs {
		slIdx := -1
		for _, candidate := range swingLows {
			if candidate >= shIdx {
				slIdx = candidate
				break
			}
		}

		if slIdx < 0 {
			continue
		}

		shVal := bars[shIdx].High
		slVal := bars[slIdx].Low

		volSum := 0.0
		for i := shIdx; i <= slIdx; i++ {
			volSum += bars[i].Volume
		}

		contractions = append(contractions, types.Contraction{
			HighDate:  bars[shIdx].Date,
			HighValue: shVal,
			LowDate:   bars[slIdx].Date,
			LowValue:  slVal,
			RangePct:  (shVal - slVal) / shVal * 100,
			AvgVolume: volSum / float64(slIdx-shIdx+1),
		})
	}

	return contractions
}

// tighteningWalk keeps contractions whose range shrinks relative to the
// previous kept one. On a violation, the walk stops if the minimum count is
// already met; otherwise the violating entry is kept so the minimum can
// still be reached.
func tighteningWalk(contractions []types.Contraction, minCount int) []types.Contraction {
	kept := []types.Contraction{contractions[0]}

	for i := 1; i < len(contractions); i++ {
		if contractions[i].RangePct < kept[len(kept)-1].RangePct {
			kept = append(kept, contractions[i])
			continue
		}

		if len(kept) >= minCount {
			break
		}

		kept = append(kept, contractions[i])
	}

	return kept
}
