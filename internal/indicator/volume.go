package indicator

// DefaultVolumePeriod is the lookback used for average volume checks.
const DefaultVolumePeriod = 50

// AverageVolume computes the mean volume over the last period observations.
// Short series degrade to the mean of whatever exists; an empty series
// yields 0. This deliberately never fails, unlike RSRaw.
func AverageVolume(volumes []float64, period int) float64 {
	if len(volumes) == 0 {
		return 0
	}

	start := 0
	if len(volumes) > period {
		start = len(volumes) - period
	}

	window := volumes[start:]

	var sum float64
	for _, v := range window {
		sum += v
	}

	return sum / float64(len(window))
}

// VolumeRatio returns the ratio of short-term to long-term average volume,
// 1.0 when history is shorter than the long window or the long average is 0.
func VolumeRatio(volumes []float64, short, long int) float64 {
	if len(volumes) < long {
		return 1.0
	}

	shortAvg := AverageVolume(volumes, short)
	longAvg := AverageVolume(volumes, long)

	if longAvg == 0 {
		return 1.0
	}

	return shortAvg / longAvg
}
