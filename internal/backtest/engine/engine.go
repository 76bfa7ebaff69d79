// Package engine implements the event-driven backtest loop: stop checks,
// breakout entries, watchlist maintenance, periodic re-screening and equity
// marking, in that fixed order per trading day.
package engine

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/market"
	"github.com/sauravdhanuka/vcp-screener/internal/rules"
	"github.com/sauravdhanuka/vcp-screener/internal/screener"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// OnProcessDayCallback reports progress after each simulated day.
type OnProcessDayCallback func(current, total int, date time.Time, equity float64)

// Engine owns all mutable state of one backtest run. Instances must not be
// shared across concurrent runs.
type Engine struct {
	cfg config.Config
	log *logger.Logger
	scr *screener.Screener

	data      map[string][]types.Bar
	indexBars []types.Bar
	endDate   time.Time

	cash         float64
	positions    []*types.Position
	watchlist    []*types.WatchlistEntry
	closedTrades []types.Trade
	equityCurve  []types.EquitySample
	peakEquity   float64
}

func NewEngine(cfg config.Config, log *logger.Logger) *Engine {
	return &Engine{
		cfg: cfg,
		log: log,
		scr: screener.NewScreener(cfg, log),
	}
}

// Run simulates the date range over preloaded data. indexBars feed the
// market regime tag on screening results and may be nil. screenIntervalDays
// is the calendar-day re-screen cadence.
func (e *Engine) Run(
	data map[string][]types.Bar,
	indexBars []types.Bar,
	start, end time.Time,
	screenIntervalDays int,
	onDay optional.Option[OnProcessDayCallback],
) (*types.BacktestResult, error) {
	if end.Before(start) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "end %s before start %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	if screenIntervalDays <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "screen interval must be positive")
	}

	e.reset(data, indexBars)
	e.endDate = end

	tradingDays := e.tradingDays(start, end)
	if len(tradingDays) == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoTradingDays, "no trading days in range")
	}

	e.log.Info("backtest starting",
		zap.Time("start", start),
		zap.Time("end", end),
		zap.Int("trading_days", len(tradingDays)),
		zap.Int("symbols", len(data)))

	var lastScreen optional.Option[time.Time]

	for i, day := range tradingDays {
		e.checkStops(day)

		if e.cfg.BreakoutConfirmation {
			e.checkBreakouts(day)
		}

		e.expireWatchlist()

		if shouldScreen(lastScreen, day, screenIntervalDays) {
			e.screenAndAct(day)
			lastScreen = optional.Some(day)
		}

		equity := e.markEquity(day)

		if onDay.IsSome() {
			onDay.Unwrap()(i+1, len(tradingDays), day, equity)
		}
	}

	e.forceClose(tradingDays[len(tradingDays)-1])

	result := e.computeMetrics(start, end)

	e.log.Info("backtest finished",
		zap.String("id", result.ID),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("total_return_pct", result.TotalReturnPct))

	return result, nil
}

func (e *Engine) reset(data map[string][]types.Bar, indexBars []types.Bar) {
	e.data = data
	e.indexBars = indexBars
	e.cash = e.cfg.AccountSize
	e.positions = nil
	e.watchlist = nil
	e.closedTrades = nil
	e.equityCurve = nil
	e.peakEquity = e.cfg.AccountSize
}

// tradingDays is the sorted union of all bar dates inside the range.
func (e *Engine) tradingDays(start, end time.Time) []time.Time {
	seen := make(map[time.Time]struct{})

	for _, bars := range e.data {
		for _, bar := range bars {
			if !bar.Date.Before(start) && !bar.Date.After(end) {
				seen[bar.Date] = struct{}{}
			}
		}
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	return days
}

func shouldScreen(lastScreen optional.Option[time.Time], day time.Time, intervalDays int) bool {
	if lastScreen.IsNone() {
		return true
	}

	return day.Sub(lastScreen.Unwrap()) >= time.Duration(intervalDays)*24*time.Hour
}

// barOn returns the bar of a symbol for an exact date.
func (e *Engine) barOn(symbol string, day time.Time) (types.Bar, bool) {
	bars, ok := e.data[symbol]
	if !ok {
		return types.Bar{}, false
	}

	idx := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Date.Before(day)
	})

	if idx < len(bars) && bars[idx].Date.Equal(day) {
		return bars[idx], true
	}

	return types.Bar{}, false
}

// lastCloseAt returns the most recent close at or before a date.
func (e *Engine) lastCloseAt(symbol string, day time.Time) (float64, bool) {
	bars, ok := e.data[symbol]
	if !ok {
		return 0, false
	}

	cut := market.AsOf(bars, day)
	if len(cut) == 0 {
		return 0, false
	}

	return cut[len(cut)-1].Close, true
}

// checkStops updates trailing stops from today's close and exits any
// position whose low touched its effective stop, filling at the stop.
func (e *Engine) checkStops(day time.Time) {
	type pendingExit struct {
		pos    *types.Position
		price  float64
		reason string
	}

	var exits []pendingExit

	for _, pos := range e.positions {
		bar, ok := e.barOn(pos.Symbol, day)
		if !ok {
			continue
		}

		rules.UpdateTrailingStop(pos, bar.Close, e.cfg)

		stop, reason := rules.EffectiveStop(pos)
		if bar.Low <= stop {
			exits = append(exits, pendingExit{pos: pos, price: stop, reason: reason})
		}
	}

	for _, exit := range exits {
		e.closePosition(exit.pos, exit.price, exit.reason, day)
	}
}

// checkBreakouts scans the watchlist for confirmed breakouts: a close above
// the pivot on volume at or above the configured multiple of the base's
// average. Confirmed entries fill at today's close, best score first, under
// the position cap.
func (e *Engine) checkBreakouts(day time.Time) {
	if len(e.positions) >= e.cfg.MaxPositions {
		return
	}

	held := e.heldSymbols()

	type confirmed struct {
		entry *types.WatchlistEntry
		price float64
	}

	var triggered []confirmed

	for _, entry := range e.watchlist {
		symbol := entry.Candidate.Symbol
		if _, ok := held[symbol]; ok {
			continue
		}

		bar, ok := e.barOn(symbol, day)
		if !ok {
			continue
		}

		pivot := entry.Candidate.PivotPrice
		minVolume := entry.Candidate.AvgVolume * e.cfg.BreakoutVolumeMult

		if bar.Close > pivot && bar.Volume >= minVolume {
			triggered = append(triggered, confirmed{entry: entry, price: bar.Close})

			if len(e.positions)+len(triggered) >= e.cfg.MaxPositions {
				break
			}
		}
	}

	sort.SliceStable(triggered, func(i, j int) bool {
		return triggered[i].entry.Candidate.VCPScore > triggered[j].entry.Candidate.VCPScore
	})

	for _, t := range triggered {
		if len(e.positions) >= e.cfg.MaxPositions {
			break
		}

		e.enterPosition(t.entry.Candidate, t.price, day)
		e.removeFromWatchlist(t.entry.Candidate.Symbol)
	}
}

// expireWatchlist ages every entry by one trading day and drops the stale
// ones.
func (e *Engine) expireWatchlist() {
	kept := e.watchlist[:0]

	for _, entry := range e.watchlist {
		entry.DaysOnWatch++

		if entry.DaysOnWatch <= e.cfg.WatchlistExpiryDays {
			kept = append(kept, entry)
		}
	}

	e.watchlist = kept
}

// screenAndAct re-runs the screening pipeline as of the current day. In
// breakout-confirmation mode new candidates go on the watchlist; in direct
// mode open slots are filled at the next trading day's open.
func (e *Engine) screenAndAct(day time.Time) {
	candidates := e.scr.Screen(e.data, e.indexBars, day)

	if e.cfg.BreakoutConfirmation {
		e.addToWatchlist(candidates, day)
		return
	}

	e.enterDirect(candidates, day)
}

func (e *Engine) addToWatchlist(candidates []types.Candidate, day time.Time) {
	watched := make(map[string]struct{}, len(e.watchlist))
	for _, entry := range e.watchlist {
		watched[entry.Candidate.Symbol] = struct{}{}
	}

	held := e.heldSymbols()

	for _, candidate := range candidates {
		if _, ok := watched[candidate.Symbol]; ok {
			continue
		}

		if _, ok := held[candidate.Symbol]; ok {
			continue
		}

		e.watchlist = append(e.watchlist, &types.WatchlistEntry{
			Candidate: candidate,
			AddedDate: day,
		})
	}
}

// enterDirect buys screening results without breakout confirmation, at the
// next trading day's open. When a symbol has no further bar inside the run's
// date range the candidate's last close is used instead.
func (e *Engine) enterDirect(candidates []types.Candidate, day time.Time) {
	held := e.heldSymbols()

	for _, candidate := range candidates {
		if len(e.positions) >= e.cfg.MaxPositions {
			break
		}

		if _, ok := held[candidate.Symbol]; ok {
			continue
		}

		entryPrice := candidate.Close
		entryDate := day

		if next, ok := e.nextBarAfter(candidate.Symbol, day); ok {
			entryPrice = next.Open
			entryDate = next.Date
		}

		if e.enterPosition(candidate, entryPrice, entryDate) {
			held[candidate.Symbol] = struct{}{}
		}
	}
}

// nextBarAfter finds the first bar strictly after a date, never past the
// run's end. Bars beyond the range belong to days the simulation never sees.
func (e *Engine) nextBarAfter(symbol string, day time.Time) (types.Bar, bool) {
	bars, ok := e.data[symbol]
	if !ok {
		return types.Bar{}, false
	}

	idx := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(day)
	})

	if idx < len(bars) && !bars[idx].Date.After(e.endDate) {
		return bars[idx], true
	}

	return types.Bar{}, false
}

// enterPosition sizes and opens a position, deducting its cost from cash.
// Returns false when sizing rejects the trade.
func (e *Engine) enterPosition(candidate types.Candidate, entryPrice float64, entryDate time.Time) bool {
	stopPrice := rules.StopPrice(entryPrice, e.cfg)

	shares := rules.SizeWithCash(entryPrice, stopPrice, e.cash, e.cfg.RiskPerTradePct)
	if shares <= 0 {
		return false
	}

	pos := &types.Position{
		Symbol:       candidate.Symbol,
		EntryDate:    entryDate,
		EntryPrice:   entryPrice,
		Shares:       shares,
		StopLoss:     stopPrice,
		TrailingStop: optional.None[float64](),
		HighestPrice: entryPrice,
	}

	e.cash -= pos.Cost()
	e.positions = append(e.positions, pos)

	e.log.Debug("entered position",
		zap.String("symbol", pos.Symbol),
		zap.Time("date", entryDate),
		zap.Float64("price", entryPrice),
		zap.Int("shares", shares))

	return true
}

func (e *Engine) closePosition(pos *types.Position, exitPrice float64, reason string, exitDate time.Time) {
	entry := decimal.NewFromFloat(pos.EntryPrice)
	exit := decimal.NewFromFloat(exitPrice)
	shares := decimal.NewFromInt(int64(pos.Shares))

	pnl := exit.Sub(entry).Mul(shares).InexactFloat64()
	pnlPct := (exitPrice/pos.EntryPrice - 1) * 100
	holdDays := int(exitDate.Sub(pos.EntryDate).Hours() / 24)

	e.cash += exitPrice * float64(pos.Shares)

	for i, p := range e.positions {
		if p == pos {
			e.positions = append(e.positions[:i], e.positions[i+1:]...)
			break
		}
	}

	e.closedTrades = append(e.closedTrades, types.Trade{
		Symbol:     pos.Symbol,
		EntryDate:  pos.EntryDate,
		EntryPrice: pos.EntryPrice,
		Shares:     pos.Shares,
		ExitDate:   exitDate,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		PnL:        pnl,
		PnLPct:     pnlPct,
		HoldDays:   holdDays,
	})

	e.log.Debug("closed position",
		zap.String("symbol", pos.Symbol),
		zap.String("reason", reason),
		zap.Float64("pnl", pnl))
}

// markEquity values the book at today's prices and records the equity
// sample with its drawdown from the running peak.
func (e *Engine) markEquity(day time.Time) float64 {
	equity := e.cash

	for _, pos := range e.positions {
		if close, ok := e.lastCloseAt(pos.Symbol, day); ok {
			equity += close * float64(pos.Shares)
		}
	}

	if equity > e.peakEquity {
		e.peakEquity = equity
	}

	drawdown := (e.peakEquity - equity) / e.peakEquity * 100

	e.equityCurve = append(e.equityCurve, types.EquitySample{
		Date:        day,
		Equity:      equity,
		DrawdownPct: drawdown,
	})

	return equity
}

// forceClose exits every remaining position at its last available close.
func (e *Engine) forceClose(finalDay time.Time) {
	for _, pos := range append([]*types.Position(nil), e.positions...) {
		if close, ok := e.lastCloseAt(pos.Symbol, finalDay); ok {
			e.closePosition(pos, close, types.ExitReasonEndOfBacktest, finalDay)
		}
	}
}

func (e *Engine) heldSymbols() map[string]struct{} {
	held := make(map[string]struct{}, len(e.positions))
	for _, pos := range e.positions {
		held[pos.Symbol] = struct{}{}
	}

	return held
}

func (e *Engine) removeFromWatchlist(symbol string) {
	for i, entry := range e.watchlist {
		if entry.Candidate.Symbol == symbol {
			e.watchlist = append(e.watchlist[:i], e.watchlist[i+1:]...)
			return
		}
	}
}
