package rules

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

type RulesTestSuite struct {
	suite.Suite

	cfg config.Config
}

func TestRulesSuite(t *testing.T) {
	suite.Run(t, new(RulesTestSuite))
}

func (suite *RulesTestSuite) SetupTest() {
	suite.cfg = config.DefaultConfig()
}

func (suite *RulesTestSuite) TestPositionSize() {
	// 100k account, 2.5% risk = 2500; entry 100, stop 90 risks 10/share.
	suite.Equal(250, PositionSize(100, 90, 100_000, 2.5))

	// Tighter stop doubles the size.
	suite.Equal(500, PositionSize(100, 95, 100_000, 2.5))

	// Wider per-share risk shrinks it.
	suite.Equal(125, PositionSize(200, 180, 100_000, 2.5))

	// Stop at or above entry rejects the trade.
	suite.Equal(0, PositionSize(100, 100, 100_000, 2.5))
	suite.Equal(0, PositionSize(100, 105, 100_000, 2.5))
}

func (suite *RulesTestSuite) TestSizeWithCashClampsToAffordable() {
	// Risk-based size is 125 shares but 10k cash only buys 100.
	suite.Equal(100, SizeWithCash(100, 98, 10_000, 2.5))
}

func (suite *RulesTestSuite) TestSizeWithCashRejectsUnaffordable() {
	suite.Equal(0, SizeWithCash(500, 450, 400, 2.5))
}

func (suite *RulesTestSuite) TestStopPrice() {
	suite.InDelta(90.0, StopPrice(100, suite.cfg), 1e-9)
}

func (suite *RulesTestSuite) TestTrailingStopBelowBreakevenTriggerStaysUnset() {
	pos := &types.Position{EntryPrice: 100, HighestPrice: 100, StopLoss: 90}

	UpdateTrailingStop(pos, 110, suite.cfg)
	suite.True(pos.TrailingStop.IsNone())
	suite.Equal(110.0, pos.HighestPrice)
}

func (suite *RulesTestSuite) TestTrailingStopMovesToBreakeven() {
	pos := &types.Position{EntryPrice: 100, HighestPrice: 100, StopLoss: 90}

	UpdateTrailingStop(pos, 116, suite.cfg)
	suite.True(pos.TrailingStop.IsSome())
	suite.InDelta(100.0, pos.TrailingStop.Unwrap(), 1e-9)
}

func (suite *RulesTestSuite) TestTrailingStopTrailsHighestPrice() {
	pos := &types.Position{EntryPrice: 100, HighestPrice: 100, StopLoss: 90}

	UpdateTrailingStop(pos, 140, suite.cfg)
	suite.True(pos.TrailingStop.IsSome())
	// 40% gain trails 12% off the 140 high.
	suite.InDelta(140*0.88, pos.TrailingStop.Unwrap(), 1e-9)
}

func (suite *RulesTestSuite) TestTrailingStopNeverLowered() {
	pos := &types.Position{
		EntryPrice:   100,
		HighestPrice: 150,
		StopLoss:     90,
		TrailingStop: optional.Some(150 * 0.88),
	}

	// Price falls back but stays above the trigger window; the stop holds.
	UpdateTrailingStop(pos, 120, suite.cfg)
	suite.InDelta(150*0.88, pos.TrailingStop.Unwrap(), 1e-9)
	suite.Equal(150.0, pos.HighestPrice)
}

func (suite *RulesTestSuite) TestBreakevenDoesNotLowerExistingTrail() {
	pos := &types.Position{
		EntryPrice:   100,
		HighestPrice: 118,
		StopLoss:     90,
		TrailingStop: optional.Some(105.0),
	}

	UpdateTrailingStop(pos, 117, suite.cfg)
	suite.InDelta(105.0, pos.TrailingStop.Unwrap(), 1e-9)
}

func (suite *RulesTestSuite) TestEffectiveStopFixedOnly() {
	pos := &types.Position{EntryPrice: 100, StopLoss: 90}

	stop, reason := EffectiveStop(pos)
	suite.InDelta(90.0, stop, 1e-9)
	suite.Equal(types.ExitReasonStopLoss, reason)
}

func (suite *RulesTestSuite) TestEffectiveStopTrailingBinds() {
	pos := &types.Position{
		EntryPrice:   100,
		StopLoss:     90,
		TrailingStop: optional.Some(120.0),
	}

	stop, reason := EffectiveStop(pos)
	suite.InDelta(120.0, stop, 1e-9)
	suite.Equal(types.ExitReasonTrailingStop, reason)
}

func (suite *RulesTestSuite) TestEffectiveStopTrailingBelowFixed() {
	pos := &types.Position{
		EntryPrice:   100,
		StopLoss:     90,
		TrailingStop: optional.Some(85.0),
	}

	stop, reason := EffectiveStop(pos)
	suite.InDelta(90.0, stop, 1e-9)
	suite.Equal(types.ExitReasonStopLoss, reason)
}
