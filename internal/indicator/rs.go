package indicator

import (
	"math"
	"sort"

	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// Lookback windows for the relative strength blend, in trading days.
const (
	rsWindow3M  = 63
	rsWindow6M  = 126
	rsWindow9M  = 189
	rsWindow12M = 252
)

// RSWeights holds the blend weights for the four relative strength lookback
// windows. They should sum to 1.0; this is not enforced.
type RSWeights struct {
	ThreeMonth  float64
	SixMonth    float64
	NineMonth   float64
	TwelveMonth float64
}

// RSRaw computes the weighted multi-horizon return for a single symbol.
// Windows with insufficient history contribute 0. Returns an
// InsufficientDataError when the whole series is shorter than minDays.
func RSRaw(closes []float64, weights RSWeights, minDays int) (float64, error) {
	if len(closes) < minDays {
		return math.NaN(), errors.NewInsufficientDataErrorf(
			minDays, len(closes), "",
			"relative strength needs %d trading days, have %d", minDays, len(closes),
		)
	}

	current := closes[len(closes)-1]

	windowReturn := func(days int) float64 {
		if len(closes) < days {
			return 0
		}

		base := closes[len(closes)-days]
		if base == 0 {
			return 0
		}

		return (current/base - 1) * 100
	}

	raw := weights.ThreeMonth*windowReturn(rsWindow3M) +
		weights.SixMonth*windowReturn(rsWindow6M) +
		weights.NineMonth*windowReturn(rsWindow9M) +
		weights.TwelveMonth*windowReturn(rsWindow12M)

	return raw, nil
}

// RSPercentiles converts raw relative strength scores to 0-100 rank
// percentiles across the supplied universe. A symbol's percentile is its
// average percentage ranking among the valid scores; NaN scores rank 0.
func RSPercentiles(rawScores map[string]float64) map[string]float64 {
	valid := make([]float64, 0, len(rawScores))

	for _, score := range rawScores {
		if !math.IsNaN(score) {
			valid = append(valid, score)
		}
	}

	sort.Float64s(valid)

	percentiles := make(map[string]float64, len(rawScores))

	for symbol, score := range rawScores {
		if math.IsNaN(score) {
			percentiles[symbol] = 0
			continue
		}

		percentiles[symbol] = percentileOfScore(valid, score)
	}

	return percentiles
}

// percentileOfScore computes the average-rank percentile of score within the
// sorted slice values: ties receive the mean of their matching rank
// positions rather than an interpolated value.
func percentileOfScore(sortedValues []float64, score float64) float64 {
	n := len(sortedValues)
	if n == 0 {
		return 0
	}

	// left = count strictly below, right = count at or below.
	left := sort.SearchFloat64s(sortedValues, score)
	right := sort.Search(n, func(i int) bool { return sortedValues[i] > score })

	tie := 0
	if right > left {
		tie = 1
	}

	return float64(left+right+tie) * 50.0 / float64(n)
}
