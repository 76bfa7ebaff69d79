package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Exit reasons recorded on closed trades.
const (
	ExitReasonStopLoss      string = "stop_loss"
	ExitReasonTrailingStop  string = "trailing_stop"
	ExitReasonManual        string = "manual"
	ExitReasonEndOfBacktest string = "end_of_backtest"
)

// Position is an open holding. The trailing stop is unset until a gain
// trigger fires and is never lowered afterwards.
type Position struct {
	Symbol       string                   `yaml:"symbol" json:"symbol"`
	EntryDate    time.Time                `yaml:"entry_date" json:"entry_date"`
	EntryPrice   float64                  `yaml:"entry_price" json:"entry_price"`
	Shares       int                      `yaml:"shares" json:"shares"`
	StopLoss     float64                  `yaml:"stop_loss" json:"stop_loss"`
	TrailingStop optional.Option[float64] `yaml:"trailing_stop" json:"trailing_stop"`
	// HighestPrice is the highest close observed since entry.
	HighestPrice float64 `yaml:"highest_price" json:"highest_price"`
}

// Cost returns the capital committed to the position at entry.
func (p *Position) Cost() float64 {
	return p.EntryPrice * float64(p.Shares)
}

// Trade is a closed position with frozen P&L.
type Trade struct {
	Symbol     string    `yaml:"symbol" json:"symbol"`
	EntryDate  time.Time `yaml:"entry_date" json:"entry_date"`
	EntryPrice float64   `yaml:"entry_price" json:"entry_price"`
	Shares     int       `yaml:"shares" json:"shares"`
	ExitDate   time.Time `yaml:"exit_date" json:"exit_date"`
	ExitPrice  float64   `yaml:"exit_price" json:"exit_price"`
	ExitReason string    `yaml:"exit_reason" json:"exit_reason"`
	PnL        float64   `yaml:"pnl" json:"pnl"`
	PnLPct     float64   `yaml:"pnl_pct" json:"pnl_pct"`
	HoldDays   int       `yaml:"hold_days" json:"hold_days"`
}

// EquitySample is one entry of a backtest's daily equity curve.
type EquitySample struct {
	Date        time.Time `yaml:"date" json:"date"`
	Equity      float64   `yaml:"equity" json:"equity"`
	DrawdownPct float64   `yaml:"drawdown_pct" json:"drawdown_pct"`
}
