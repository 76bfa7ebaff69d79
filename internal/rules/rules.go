// Package rules holds the position sizing and protective stop rules shared
// by the backtest engine and the live portfolio layer.
package rules

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

// PositionSize returns the share count for a new position so the distance
// to the stop risks riskPerTradePct of the account. Returns 0 when the stop
// sits at or above the entry.
func PositionSize(entryPrice, stopPrice, accountSize, riskPerTradePct float64) int {
	riskPerShare := entryPrice - stopPrice
	if riskPerShare <= 0 {
		return 0
	}

	riskAmount := accountSize * riskPerTradePct / 100

	shares := int(math.Floor(riskAmount / riskPerShare))
	if shares < 0 {
		return 0
	}

	return shares
}

// SizeWithCash applies the risk-based size, then clamps the position so its
// cost fits inside the available cash. Returns 0 when no affordable size
// exists.
func SizeWithCash(entryPrice, stopPrice, cash, riskPerTradePct float64) int {
	shares := PositionSize(entryPrice, stopPrice, cash, riskPerTradePct)
	if shares <= 0 {
		return 0
	}

	if float64(shares)*entryPrice > cash {
		shares = int(math.Floor(cash / entryPrice))
	}

	if shares <= 0 {
		return 0
	}

	return shares
}

// StopPrice returns the fixed protective stop for an entry price.
func StopPrice(entryPrice float64, cfg config.Config) float64 {
	return entryPrice * (1 - cfg.StopLossPct/100)
}

// UpdateTrailingStop recomputes a position's trailing stop from the current
// price. The highest price since entry is tracked first; once the unrealized
// gain crosses the trailing trigger the stop trails the highest price, and
// past the breakeven trigger it moves to the entry price. The trailing stop
// is never lowered.
func UpdateTrailingStop(pos *types.Position, currentPrice float64, cfg config.Config) {
	if currentPrice > pos.HighestPrice {
		pos.HighestPrice = currentPrice
	}

	gainPct := (currentPrice/pos.EntryPrice - 1) * 100

	switch {
	case gainPct >= cfg.TrailingTriggerPct:
		newTrail := pos.HighestPrice * (1 - cfg.TrailingStopPct/100)
		if pos.TrailingStop.IsNone() || newTrail > pos.TrailingStop.Unwrap() {
			pos.TrailingStop = optional.Some(newTrail)
		}

	case gainPct >= cfg.BreakevenTriggerPct:
		if pos.TrailingStop.IsNone() || pos.EntryPrice > pos.TrailingStop.Unwrap() {
			pos.TrailingStop = optional.Some(pos.EntryPrice)
		}
	}
}

// EffectiveStop returns the binding protective price for a position, the
// exit reason it maps to, and whether the trailing stop is the binding
// constraint.
func EffectiveStop(pos *types.Position) (float64, string) {
	stop := pos.StopLoss
	reason := types.ExitReasonStopLoss

	if pos.TrailingStop.IsSome() {
		if trail := pos.TrailingStop.Unwrap(); trail >= stop {
			stop = trail
			reason = types.ExitReasonTrailingStop
		}
	}

	return stop, reason
}
