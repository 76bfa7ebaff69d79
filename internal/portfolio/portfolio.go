// Package portfolio turns screening output into actionable buy signals and
// watches open positions for sell conditions.
package portfolio

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/indicator"
	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/rules"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

const (
	// nearPivotMaxDistancePct is how close under the pivot a candidate must
	// be to rate a NEAR_PIVOT signal.
	nearPivotMaxDistancePct = 3.0

	declineAlertPct    = -4.0
	declineVolumeMult  = 1.5
	exhaustionGapMult  = 1.02
	protectGainTrigger = 20.0

	minSignalBars = 50
)

var signalOrder = map[types.BuySignalType]int{
	types.BuySignalBuy:         0,
	types.BuySignalWatchVolume: 1,
	types.BuySignalNearPivot:   2,
	types.BuySignalForming:     3,
}

type Manager struct {
	cfg config.Config
	log *logger.Logger
}

func NewManager(cfg config.Config, log *logger.Logger) *Manager {
	return &Manager{cfg: cfg, log: log}
}

// ClassifyBuySignals grades each candidate by how actionable it is today and
// attaches a sized entry recommendation. Signals sort BUY first, then by
// score.
func (m *Manager) ClassifyBuySignals(candidates []types.Candidate, data map[string][]types.Bar) []types.BuySignal {
	signals := make([]types.BuySignal, 0, len(candidates))

	for _, c := range candidates {
		if c.PivotPrice <= 0 {
			continue
		}

		bars := data[c.Symbol]
		if len(bars) < minSignalBars {
			continue
		}

		last := bars[len(bars)-1]

		avgVolume := indicator.AverageVolume(types.Volumes(bars), indicator.DefaultVolumePeriod)

		volRatio := 0.0
		if avgVolume > 0 {
			volRatio = last.Volume / avgVolume
		}

		distancePct := (c.PivotPrice - last.Close) / c.PivotPrice * 100
		abovePivot := last.Close > c.PivotPrice

		entry := last.Close
		if !abovePivot {
			entry = c.PivotPrice
		}

		stop := rules.StopPrice(entry, m.cfg)
		shares := rules.PositionSize(entry, stop, m.cfg.AccountSize, m.cfg.RiskPerTradePct)

		signal := types.BuySignal{
			Symbol:             c.Symbol,
			Close:              last.Close,
			Pivot:              c.PivotPrice,
			VCPScore:           c.VCPScore,
			RSPercentile:       c.RSPercentile,
			DistanceToPivotPct: types.RoundTo(distancePct, 1),
			AbovePivot:         abovePivot,
			VolumeRatio:        types.RoundTo(volRatio, 2),
			EntryPrice:         types.RoundTo(entry, 2),
			StopPrice:          types.RoundTo(stop, 2),
			Shares:             shares,
			Cost:               types.RoundTo(float64(shares)*entry, 0),
			MarketRegime:       c.MarketRegime,
		}

		switch {
		case abovePivot && volRatio >= m.cfg.BreakoutVolumeMult:
			signal.Signal = types.BuySignalBuy
			signal.Reason = fmt.Sprintf("breakout confirmed: closed above pivot %.2f on %.1fx volume",
				c.PivotPrice, volRatio)

		case abovePivot:
			signal.Signal = types.BuySignalWatchVolume
			signal.Reason = fmt.Sprintf("above pivot but volume only %.1fx, need %.1fx",
				volRatio, m.cfg.BreakoutVolumeMult)

		case distancePct <= nearPivotMaxDistancePct:
			signal.Signal = types.BuySignalNearPivot
			signal.Reason = fmt.Sprintf("%.1f%% below pivot, add to watchlist", distancePct)

		default:
			signal.Signal = types.BuySignalForming
			signal.Reason = fmt.Sprintf("%.1f%% below pivot, still forming", distancePct)
		}

		signals = append(signals, signal)
	}

	sort.Slice(signals, func(i, j int) bool {
		if signalOrder[signals[i].Signal] != signalOrder[signals[j].Signal] {
			return signalOrder[signals[i].Signal] < signalOrder[signals[j].Signal]
		}

		if signals[i].VCPScore != signals[j].VCPScore {
			return signals[i].VCPScore > signals[j].VCPScore
		}

		return signals[i].Symbol < signals[j].Symbol
	})

	m.log.Info("buy signals classified",
		zap.Int("candidates", len(candidates)),
		zap.Int("signals", len(signals)))

	return signals
}

// CheckSellAlerts inspects every open position against its latest bars and
// returns the positions with at least one raised flag. Flags are independent:
// one position can carry several.
func (m *Manager) CheckSellAlerts(positions []*types.Position, data map[string][]types.Bar) []types.SellAlert {
	alerts := make([]types.SellAlert, 0)

	for _, pos := range positions {
		bars := data[pos.Symbol]
		if len(bars) == 0 {
			continue
		}

		last := bars[len(bars)-1]
		effectiveStop, _ := rules.EffectiveStop(pos)

		alert := types.SellAlert{
			Symbol:        pos.Symbol,
			EntryPrice:    pos.EntryPrice,
			CurrentPrice:  last.Close,
			GainPct:       types.RoundTo((last.Close/pos.EntryPrice-1)*100, 2),
			StopLoss:      pos.StopLoss,
			EffectiveStop: effectiveStop,
		}

		if last.Close <= pos.StopLoss {
			alert.Alerts = append(alert.Alerts, types.SellAlertStopLossHit)
		}

		if pos.TrailingStop.IsSome() && last.Close <= pos.TrailingStop.Unwrap() {
			alert.Alerts = append(alert.Alerts, types.SellAlertTrailingStop)
		}

		if len(bars) >= 2 {
			prev := bars[len(bars)-2]

			changePct := (last.Close/prev.Close - 1) * 100
			avgVolume := indicator.AverageVolume(types.Volumes(bars), indicator.DefaultVolumePeriod)

			if changePct <= declineAlertPct && last.Volume > avgVolume*declineVolumeMult {
				alert.Alerts = append(alert.Alerts, types.SellAlertHighVolDecline)
			}

			gapUp := last.Open > prev.Close*exhaustionGapMult
			closedNearLow := (last.High - last.Close) > (last.Close-last.Low)*2

			if gapUp && closedNearLow {
				alert.Alerts = append(alert.Alerts, types.SellAlertExhaustionGap)
			}
		}

		highestGainPct := (pos.HighestPrice/pos.EntryPrice - 1) * 100
		if highestGainPct >= protectGainTrigger && last.Close <= pos.EntryPrice {
			alert.Alerts = append(alert.Alerts, types.SellAlertProtectGain)
		}

		if len(alert.Alerts) > 0 {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}

// UpdateTrailingStops recomputes every position's trailing stop from its
// latest close.
func (m *Manager) UpdateTrailingStops(positions []*types.Position, data map[string][]types.Bar) {
	for _, pos := range positions {
		bars := data[pos.Symbol]
		if len(bars) == 0 {
			continue
		}

		rules.UpdateTrailingStop(pos, bars[len(bars)-1].Close, m.cfg)
	}
}

// Holdings marks each open position to its latest close. A symbol with no
// bars is marked at its entry price.
func (m *Manager) Holdings(positions []*types.Position, data map[string][]types.Bar) []types.Holding {
	holdings := make([]types.Holding, 0, len(positions))

	for _, pos := range positions {
		current := pos.EntryPrice
		if bars := data[pos.Symbol]; len(bars) > 0 {
			current = bars[len(bars)-1].Close
		}

		pnl := decimal.NewFromFloat(current).
			Sub(decimal.NewFromFloat(pos.EntryPrice)).
			Mul(decimal.NewFromInt(int64(pos.Shares))).
			InexactFloat64()

		holdings = append(holdings, types.Holding{
			Symbol:       pos.Symbol,
			EntryPrice:   pos.EntryPrice,
			Shares:       pos.Shares,
			CurrentPrice: current,
			Cost:         pos.Cost(),
			MarketValue:  current * float64(pos.Shares),
			PnL:          pnl,
			PnLPct:       types.RoundTo((current/pos.EntryPrice-1)*100, 2),
		})
	}

	return holdings
}
