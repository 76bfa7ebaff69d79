package types

import "time"

// Contraction is one swing-high-to-swing-low leg inside a base.
type Contraction struct {
	HighDate  time.Time `yaml:"high_date" json:"high_date"`
	HighValue float64   `yaml:"high_value" json:"high_value"`
	LowDate   time.Time `yaml:"low_date" json:"low_date"`
	LowValue  float64   `yaml:"low_value" json:"low_value"`
	// RangePct is (high-low)/high*100 for this leg.
	RangePct float64 `yaml:"range_pct" json:"range_pct"`
	// AvgVolume is the mean volume over the high-to-low span.
	AvgVolume float64 `yaml:"avg_volume" json:"avg_volume"`
}

// Candidate is the screening pipeline's result for one symbol as of one date.
type Candidate struct {
	Symbol           string        `yaml:"symbol" json:"symbol"`
	Close            float64       `yaml:"close" json:"close"`
	VCPScore         float64       `yaml:"vcp_score" json:"vcp_score"`
	RSPercentile     float64       `yaml:"rs_percentile" json:"rs_percentile"`
	PivotPrice       float64       `yaml:"pivot_price" json:"pivot_price"`
	BaseDepthPct     float64       `yaml:"base_depth_pct" json:"base_depth_pct"`
	NumContractions  int           `yaml:"num_contractions" json:"num_contractions"`
	TightnessRatio   float64       `yaml:"tightness_ratio" json:"tightness_ratio"`
	VolumeDryUpPct   float64       `yaml:"volume_dry_up_pct" json:"volume_dry_up_pct"`
	BaseDurationDays int           `yaml:"base_duration_days" json:"base_duration_days"`
	AvgVolume        float64       `yaml:"avg_volume" json:"avg_volume"`
	Contractions     []Contraction `yaml:"contractions" json:"contractions"`
	// Rank is 1-based within the screening run it came from.
	Rank         int          `yaml:"rank" json:"rank"`
	MarketRegime MarketRegime `yaml:"market_regime" json:"market_regime"`
}

// WatchlistEntry is a candidate waiting for breakout confirmation.
type WatchlistEntry struct {
	Candidate Candidate `yaml:"candidate" json:"candidate"`
	AddedDate time.Time `yaml:"added_date" json:"added_date"`
	// DaysOnWatch counts trading days since the entry was added.
	DaysOnWatch int `yaml:"days_on_watch" json:"days_on_watch"`
}
