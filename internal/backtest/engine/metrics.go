package engine

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

const tradingDaysPerYear = 252

// computeMetrics derives the performance report from the closed trades and
// the equity curve.
func (e *Engine) computeMetrics(start, end time.Time) *types.BacktestResult {
	finalEquity := e.cash
	if len(e.equityCurve) > 0 {
		finalEquity = e.equityCurve[len(e.equityCurve)-1].Equity
	}

	result := &types.BacktestResult{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		StartDate:      start,
		EndDate:        end,
		InitialCapital: e.cfg.AccountSize,
		FinalCapital:   types.RoundTo(finalEquity, 2),
		TotalReturnPct: types.RoundTo((finalEquity/e.cfg.AccountSize-1)*100, 2),
		CAGRPct:        types.RoundTo(cagr(finalEquity, e.cfg.AccountSize, start, end), 2),
		MaxDrawdownPct: types.RoundTo(maxDrawdown(e.equityCurve), 2),
		SharpeRatio:    types.RoundTo(sharpe(e.equityCurve), 2),
		Trades:         e.closedTrades,
		EquityCurve:    e.equityCurve,
	}

	trades := e.closedTrades
	result.TotalTrades = len(trades)

	if len(trades) == 0 {
		return result
	}

	var (
		gains, losses     float64
		gainPcts, lossPct []float64
		holdSum           float64
		winCount          int
	)

	for _, t := range trades {
		holdSum += float64(t.HoldDays)

		if t.PnL > 0 {
			winCount++
			gains += t.PnL
			gainPcts = append(gainPcts, t.PnLPct)
		} else {
			losses += math.Abs(t.PnL)
			lossPct = append(lossPct, t.PnLPct)
		}
	}

	result.WinRatePct = types.RoundTo(float64(winCount)/float64(len(trades))*100, 1)
	result.AvgHoldDays = types.RoundTo(holdSum/float64(len(trades)), 1)
	result.AvgGainPct = types.RoundTo(mean(gainPcts), 2)
	result.AvgLossPct = types.RoundTo(mean(lossPct), 2)

	if losses > 0 {
		result.ProfitFactor = types.RoundTo(gains/losses, 2)
	} else {
		result.ProfitFactor = math.Inf(1)
	}

	return result
}

func cagr(finalEquity, initialCapital float64, start, end time.Time) float64 {
	years := end.Sub(start).Hours() / 24 / 365.25
	if years <= 0 {
		return 0
	}

	return (math.Pow(finalEquity/initialCapital, 1/years) - 1) * 100
}

func maxDrawdown(curve []types.EquitySample) float64 {
	maxDD := 0.0
	for _, sample := range curve {
		if sample.DrawdownPct > maxDD {
			maxDD = sample.DrawdownPct
		}
	}

	return maxDD
}

// sharpe annualizes the ratio of mean to sample standard deviation of daily
// equity changes. Fewer than two samples, or a flat curve, yields 0.
func sharpe(curve []types.EquitySample) float64 {
	if len(curve) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}

		returns = append(returns, curve[i].Equity/prev-1)
	}

	if len(returns) < 2 {
		return 0
	}

	m := mean(returns)

	variance := 0.0
	for _, r := range returns {
		variance += (r - m) * (r - m)
	}
	variance /= float64(len(returns) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return 0
	}

	return m / std * math.Sqrt(tradingDaysPerYear)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
