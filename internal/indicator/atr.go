package indicator

import (
	"math"

	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// ATR computes the average true range over the given period as a rolling
// mean of the true range. The first period-1 slots are NaN. The first bar's
// true range falls back to high-low since no prior close exists.
func ATR(high, low, close []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	if len(high) != len(low) || len(high) != len(close) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"series lengths differ: high %d, low %d, close %d", len(high), len(low), len(close))
	}

	tr := make([]float64, len(high))
	for i := range tr {
		tr[i] = high[i] - low[i]

		if i > 0 {
			tr[i] = math.Max(tr[i], math.Max(
				math.Abs(high[i]-close[i-1]),
				math.Abs(low[i]-close[i-1]),
			))
		}
	}

	return SMA(tr, period)
}
