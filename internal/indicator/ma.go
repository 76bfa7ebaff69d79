// Package indicator implements the technical indicators used by the
// screening pipeline: simple moving averages, relative strength, average
// volume and average true range. All functions operate on in-memory series
// ordered oldest first and only ever look backwards.
package indicator

import (
	"math"

	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// SMA computes the simple moving average of values over the given period.
// The first period-1 slots of the result are NaN; every window covers only
// past and current observations.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	result := make([]float64, len(values))
	for i := range result {
		result[i] = math.NaN()
	}

	if len(values) < period {
		return result, nil
	}

	var sum float64
	for i, v := range values {
		sum += v

		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			result[i] = sum / float64(period)
		}
	}

	return result, nil
}

// LastSMA returns the final value of the SMA series, or NaN when the series
// is shorter than the period.
func LastSMA(values []float64, period int) (float64, error) {
	series, err := SMA(values, period)
	if err != nil {
		return math.NaN(), err
	}

	if len(series) == 0 {
		return math.NaN(), nil
	}

	return series[len(series)-1], nil
}
