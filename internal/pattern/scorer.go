package pattern

// Score maps a detection's measurements to a 0-100 quality score through
// fixed bucket tables. An undetected pattern scores 0.
//
// Components:
//
//	contraction count  max 30
//	tightness ratio    max 25 (lower is better)
//	volume dry-up      max 20 (higher is better)
//	base duration      max 15 (40-120 days ideal)
//	base depth         max 10 (15-35% ideal)
func Score(det Detection) float64 {
	if !det.Found {
		return 0.0
	}

	score := 0.0

	switch {
	case det.NumContractions >= 4:
		score += 30
	case det.NumContractions == 3:
		score += 25
	case det.NumContractions == 2:
		score += 10
	}

	switch {
	case det.TightnessRatio <= 0.3:
		score += 25
	case det.TightnessRatio <= 0.5:
		score += 20
	case det.TightnessRatio <= 0.7:
		score += 12
	default:
		score += 5
	}

	switch {
	case det.VolumeDryUpPct >= 50:
		score += 20
	case det.VolumeDryUpPct >= 30:
		score += 15
	case det.VolumeDryUpPct >= 10:
		score += 8
	default:
		score += 3
	}

	switch {
	case det.BaseDurationDays >= 40 && det.BaseDurationDays <= 120:
		score += 15
	case det.BaseDurationDays >= 25 && det.BaseDurationDays <= 180:
		score += 10
	default:
		score += 5
	}

	switch {
	case det.BaseDepthPct >= 15 && det.BaseDepthPct <= 35:
		score += 10
	case det.BaseDepthPct >= 10 && det.BaseDepthPct <= 50:
		score += 6
	default:
		score += 2
	}

	if score > 100 {
		score = 100
	}

	return score
}
