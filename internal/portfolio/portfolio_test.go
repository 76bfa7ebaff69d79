package portfolio

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

type PortfolioTestSuite struct {
	suite.Suite

	mgr *Manager
}

func TestPortfolioSuite(t *testing.T) {
	suite.Run(t, new(PortfolioTestSuite))
}

func (suite *PortfolioTestSuite) SetupTest() {
	suite.mgr = NewManager(config.DefaultConfig(), logger.NewNopLogger())
}

// barsClosingAt builds 60 flat bars at 95 on 500k volume and replaces the
// final bar.
func barsClosingAt(last types.Bar) []types.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	bars := make([]types.Bar, 60)
	for i := range bars {
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   95,
			High:   95,
			Low:    95,
			Close:  95,
			Volume: 500_000,
		}
	}

	last.Date = bars[len(bars)-1].Date
	bars[len(bars)-1] = last

	return bars
}

func candidate(symbol string, pivot, score float64) types.Candidate {
	return types.Candidate{Symbol: symbol, PivotPrice: pivot, VCPScore: score}
}

func openPosition(symbol string, entry, highest float64) *types.Position {
	return &types.Position{
		Symbol:       symbol,
		EntryDate:    time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice:   entry,
		Shares:       50,
		StopLoss:     entry * 0.9,
		HighestPrice: highest,
	}
}

func (suite *PortfolioTestSuite) TestClassifyBuySignalGrades() {
	data := map[string][]types.Bar{
		"CONF": barsClosingAt(types.Bar{Open: 101, High: 103, Low: 100, Close: 102, Volume: 700_000}),
		"THIN": barsClosingAt(types.Bar{Open: 101, High: 103, Low: 100, Close: 102, Volume: 500_000}),
		"NEAR": barsClosingAt(types.Bar{Open: 97, High: 98, Low: 96, Close: 98, Volume: 500_000}),
		"FORM": barsClosingAt(types.Bar{Open: 90, High: 91, Low: 89, Close: 90, Volume: 500_000}),
	}

	candidates := []types.Candidate{
		candidate("FORM", 100, 40),
		candidate("NEAR", 100, 50),
		candidate("THIN", 100, 60),
		candidate("CONF", 100, 70),
	}

	signals := suite.mgr.ClassifyBuySignals(candidates, data)
	suite.Require().Len(signals, 4)

	// BUY sorts first, FORMING last.
	suite.Equal("CONF", signals[0].Symbol)
	suite.Equal(types.BuySignalBuy, signals[0].Signal)
	suite.Equal(types.BuySignalWatchVolume, signals[1].Signal)
	suite.Equal(types.BuySignalNearPivot, signals[2].Signal)
	suite.Equal(types.BuySignalForming, signals[3].Signal)

	buy := signals[0]
	suite.True(buy.AbovePivot)
	// Average volume includes the surge bar: (49*500k + 700k) / 50.
	suite.InDelta(1.39, buy.VolumeRatio, 0.01)
	suite.InDelta(102.0, buy.EntryPrice, 1e-9)
	suite.InDelta(91.8, buy.StopPrice, 1e-9)
	suite.Equal(245, buy.Shares)
	suite.InDelta(24990.0, buy.Cost, 1e-9)

	// Below the pivot the recommendation is priced at the pivot itself.
	near := signals[2]
	suite.False(near.AbovePivot)
	suite.InDelta(2.0, near.DistanceToPivotPct, 1e-9)
	suite.InDelta(100.0, near.EntryPrice, 1e-9)
	suite.Equal(250, near.Shares)
}

func (suite *PortfolioTestSuite) TestClassifyBuySignalSkipsUnusable() {
	data := map[string][]types.Bar{
		"NOPIVOT": barsClosingAt(types.Bar{Close: 102, Volume: 500_000}),
		"SHORT":   barsClosingAt(types.Bar{Close: 102, Volume: 500_000})[:10],
	}

	candidates := []types.Candidate{
		candidate("NOPIVOT", 0, 70),
		candidate("SHORT", 100, 70),
		candidate("MISSING", 100, 70),
	}

	suite.Empty(suite.mgr.ClassifyBuySignals(candidates, data))
}

func (suite *PortfolioTestSuite) TestSellAlertStopLoss() {
	pos := openPosition("AAA", 100, 100)
	data := map[string][]types.Bar{
		"AAA": barsClosingAt(types.Bar{Open: 92, High: 93, Low: 88, Close: 89, Volume: 500_000}),
	}

	alerts := suite.mgr.CheckSellAlerts([]*types.Position{pos}, data)
	suite.Require().Len(alerts, 1)
	suite.Contains(alerts[0].Alerts, types.SellAlertStopLossHit)
	suite.NotContains(alerts[0].Alerts, types.SellAlertTrailingStop)
	suite.InDelta(90.0, alerts[0].EffectiveStop, 1e-9)
}

func (suite *PortfolioTestSuite) TestSellAlertTrailingStop() {
	pos := openPosition("AAA", 100, 130)
	pos.TrailingStop = optional.Some(110.0)

	data := map[string][]types.Bar{
		"AAA": barsClosingAt(types.Bar{Open: 109, High: 110, Low: 107, Close: 108, Volume: 500_000}),
	}

	alerts := suite.mgr.CheckSellAlerts([]*types.Position{pos}, data)
	suite.Require().Len(alerts, 1)
	suite.Equal([]types.SellAlertType{types.SellAlertTrailingStop}, alerts[0].Alerts)
	suite.InDelta(110.0, alerts[0].EffectiveStop, 1e-9)
}

func (suite *PortfolioTestSuite) TestSellAlertHighVolumeDecline() {
	pos := openPosition("AAA", 90, 95)

	bars := barsClosingAt(types.Bar{Open: 95, High: 95, Low: 90, Close: 90, Volume: 900_000})
	data := map[string][]types.Bar{"AAA": bars}

	// -5.3% day on volume well above 1.5x the 50-day average.
	alerts := suite.mgr.CheckSellAlerts([]*types.Position{pos}, data)
	suite.Require().Len(alerts, 1)
	suite.Equal([]types.SellAlertType{types.SellAlertHighVolDecline}, alerts[0].Alerts)
}

func (suite *PortfolioTestSuite) TestSellAlertExhaustionGap() {
	pos := openPosition("AAA", 90, 98)

	// Gap up over 2% that closes near the low of the day.
	bars := barsClosingAt(types.Bar{Open: 98, High: 110, Low: 101, Close: 102, Volume: 500_000})
	data := map[string][]types.Bar{"AAA": bars}

	alerts := suite.mgr.CheckSellAlerts([]*types.Position{pos}, data)
	suite.Require().Len(alerts, 1)
	suite.Equal([]types.SellAlertType{types.SellAlertExhaustionGap}, alerts[0].Alerts)
}

func (suite *PortfolioTestSuite) TestSellAlertProtectsLargeGain() {
	pos := openPosition("AAA", 95, 120)

	bars := barsClosingAt(types.Bar{Open: 96, High: 96, Low: 94, Close: 95, Volume: 500_000})
	data := map[string][]types.Bar{"AAA": bars}

	alerts := suite.mgr.CheckSellAlerts([]*types.Position{pos}, data)
	suite.Require().Len(alerts, 1)
	suite.Equal([]types.SellAlertType{types.SellAlertProtectGain}, alerts[0].Alerts)
}

func (suite *PortfolioTestSuite) TestSellAlertQuietPositionStaysSilent() {
	pos := openPosition("AAA", 90, 96)

	data := map[string][]types.Bar{
		"AAA": barsClosingAt(types.Bar{Open: 95, High: 96, Low: 94, Close: 95, Volume: 500_000}),
	}

	suite.Empty(suite.mgr.CheckSellAlerts([]*types.Position{pos}, data))
}

func (suite *PortfolioTestSuite) TestUpdateTrailingStops() {
	pos := openPosition("AAA", 100, 100)

	data := map[string][]types.Bar{
		"AAA": barsClosingAt(types.Bar{Open: 139, High: 141, Low: 138, Close: 140, Volume: 500_000}),
	}

	suite.mgr.UpdateTrailingStops([]*types.Position{pos}, data)

	suite.Require().True(pos.TrailingStop.IsSome())
	suite.InDelta(140*0.88, pos.TrailingStop.Unwrap(), 1e-9)
	suite.InDelta(140.0, pos.HighestPrice, 1e-9)
}

func (suite *PortfolioTestSuite) TestHoldingsMarkToMarket() {
	pos := openPosition("AAA", 100, 110)
	missing := openPosition("GONE", 80, 80)

	data := map[string][]types.Bar{
		"AAA": barsClosingAt(types.Bar{Open: 109, High: 111, Low: 108, Close: 110, Volume: 500_000}),
	}

	holdings := suite.mgr.Holdings([]*types.Position{pos, missing}, data)
	suite.Require().Len(holdings, 2)

	suite.InDelta(5000.0, holdings[0].Cost, 1e-9)
	suite.InDelta(5500.0, holdings[0].MarketValue, 1e-9)
	suite.InDelta(500.0, holdings[0].PnL, 1e-9)
	suite.InDelta(10.0, holdings[0].PnLPct, 1e-9)

	// No bars for the symbol: marked at entry, flat P&L.
	suite.InDelta(80.0, holdings[1].CurrentPrice, 1e-9)
	suite.InDelta(0.0, holdings[1].PnL, 1e-9)
}
