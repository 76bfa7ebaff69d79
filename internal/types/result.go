package types

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// BacktestResult aggregates the outcome of one backtest run. Derived once at
// the end of a run and immutable afterwards.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`

	StartDate      time.Time `yaml:"start_date" json:"start_date"`
	EndDate        time.Time `yaml:"end_date" json:"end_date"`
	InitialCapital float64   `yaml:"initial_capital" json:"initial_capital"`
	FinalCapital   float64   `yaml:"final_capital" json:"final_capital"`

	TotalReturnPct float64 `yaml:"total_return_pct" json:"total_return_pct"`
	CAGRPct        float64 `yaml:"cagr_pct" json:"cagr_pct"`
	MaxDrawdownPct float64 `yaml:"max_drawdown_pct" json:"max_drawdown_pct"`
	SharpeRatio    float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`

	TotalTrades int     `yaml:"total_trades" json:"total_trades"`
	WinRatePct  float64 `yaml:"win_rate_pct" json:"win_rate_pct"`
	// ProfitFactor is +Inf when the run has no losing trades.
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`
	AvgGainPct   float64 `yaml:"avg_gain_pct" json:"avg_gain_pct"`
	AvgLossPct   float64 `yaml:"avg_loss_pct" json:"avg_loss_pct"`
	AvgHoldDays  float64 `yaml:"avg_hold_days" json:"avg_hold_days"`

	Trades      []Trade        `yaml:"trades" json:"trades"`
	EquityCurve []EquitySample `yaml:"equity_curve" json:"equity_curve"`
}

// RoundTo rounds a float to the given number of decimal places for reporting.
// Non-finite values pass through untouched (profit factor can be +Inf).
func RoundTo(value float64, places int32) float64 {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return value
	}

	result, _ := decimal.NewFromFloat(value).Round(places).Float64()

	return result
}
