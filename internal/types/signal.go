package types

// BuySignalType classifies how actionable a screened candidate is right now.
type BuySignalType string

const (
	// BuySignalBuy means the breakout is confirmed: close above pivot on
	// sufficient volume.
	BuySignalBuy BuySignalType = "BUY"
	// BuySignalWatchVolume means price closed above pivot but volume has not
	// confirmed yet.
	BuySignalWatchVolume BuySignalType = "WATCH_VOLUME"
	// BuySignalNearPivot means price is within 3% below the pivot.
	BuySignalNearPivot BuySignalType = "NEAR_PIVOT"
	// BuySignalForming means the pattern is still developing.
	BuySignalForming BuySignalType = "FORMING"
)

// SellAlertType flags a sell condition on an open position. Flags are raised
// independently; a position can carry several at once.
type SellAlertType string

const (
	SellAlertStopLossHit    SellAlertType = "STOP_LOSS_HIT"
	SellAlertTrailingStop   SellAlertType = "TRAILING_STOP_HIT"
	SellAlertHighVolDecline SellAlertType = "HIGH_VOL_DECLINE"
	SellAlertExhaustionGap  SellAlertType = "EXHAUSTION_GAP"
	SellAlertProtectGain    SellAlertType = "PROTECT_20PCT_GAIN"
)

// BuySignal is a screened candidate annotated with an actionable
// classification and a sized entry recommendation.
type BuySignal struct {
	Symbol             string        `yaml:"symbol" json:"symbol"`
	Signal             BuySignalType `yaml:"signal" json:"signal"`
	Reason             string        `yaml:"reason" json:"reason"`
	Close              float64       `yaml:"close" json:"close"`
	Pivot              float64       `yaml:"pivot" json:"pivot"`
	VCPScore           float64       `yaml:"vcp_score" json:"vcp_score"`
	RSPercentile       float64       `yaml:"rs_percentile" json:"rs_percentile"`
	DistanceToPivotPct float64       `yaml:"distance_to_pivot_pct" json:"distance_to_pivot_pct"`
	AbovePivot         bool          `yaml:"above_pivot" json:"above_pivot"`
	VolumeRatio        float64       `yaml:"volume_ratio" json:"volume_ratio"`
	EntryPrice         float64       `yaml:"entry_price" json:"entry_price"`
	StopPrice          float64       `yaml:"stop_price" json:"stop_price"`
	Shares             int           `yaml:"shares" json:"shares"`
	Cost               float64       `yaml:"cost" json:"cost"`
	MarketRegime       MarketRegime  `yaml:"market_regime" json:"market_regime"`
}

// SellAlert describes the sell conditions currently raised on one open position.
type SellAlert struct {
	Symbol        string          `yaml:"symbol" json:"symbol"`
	EntryPrice    float64         `yaml:"entry_price" json:"entry_price"`
	CurrentPrice  float64         `yaml:"current_price" json:"current_price"`
	GainPct       float64         `yaml:"gain_pct" json:"gain_pct"`
	StopLoss      float64         `yaml:"stop_loss" json:"stop_loss"`
	EffectiveStop float64         `yaml:"effective_stop" json:"effective_stop"`
	Alerts        []SellAlertType `yaml:"alerts" json:"alerts"`
}

// Holding is an open position marked to the latest available close.
type Holding struct {
	Symbol       string  `yaml:"symbol" json:"symbol"`
	EntryPrice   float64 `yaml:"entry_price" json:"entry_price"`
	Shares       int     `yaml:"shares" json:"shares"`
	CurrentPrice float64 `yaml:"current_price" json:"current_price"`
	Cost         float64 `yaml:"cost" json:"cost"`
	MarketValue  float64 `yaml:"market_value" json:"market_value"`
	PnL          float64 `yaml:"pnl" json:"pnl"`
	PnLPct       float64 `yaml:"pnl_pct" json:"pnl_pct"`
}
