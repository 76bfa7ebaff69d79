package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

func defaultWeights() RSWeights {
	return RSWeights{
		ThreeMonth:  0.50,
		SixMonth:    0.25,
		NineMonth:   0.15,
		TwelveMonth: 0.10,
	}
}

type RSTestSuite struct {
	suite.Suite
}

func TestRSSuite(t *testing.T) {
	suite.Run(t, new(RSTestSuite))
}

func (suite *RSTestSuite) TestRSRawInsufficientHistory() {
	closes := make([]float64, 120)
	for i := range closes {
		closes[i] = 100
	}

	raw, err := RSRaw(closes, defaultWeights(), 200)
	suite.Error(err)
	suite.True(errors.IsInsufficientDataError(err))
	suite.True(math.IsNaN(raw))
}

func (suite *RSTestSuite) TestRSRawFlatSeriesIsZero() {
	closes := make([]float64, 260)
	for i := range closes {
		closes[i] = 100
	}

	raw, err := RSRaw(closes, defaultWeights(), 200)
	suite.NoError(err)
	suite.InDelta(0.0, raw, 1e-9)
}

func (suite *RSTestSuite) TestRSRawWeightedBlend() {
	// 252 bars at 100, then 10 bars at 110: every lookback window starts at
	// 100, so each window return is 10% and the blend equals 10%.
	closes := make([]float64, 262)
	for i := range closes {
		if i < 252 {
			closes[i] = 100
		} else {
			closes[i] = 110
		}
	}

	raw, err := RSRaw(closes, defaultWeights(), 200)
	suite.NoError(err)
	suite.InDelta(10.0, raw, 1e-9)
}

func (suite *RSTestSuite) TestRSRawShortWindowsContributeZero() {
	// 210 bars: the 252-day window has no history and must contribute 0.
	closes := make([]float64, 210)
	for i := range closes {
		closes[i] = 100
	}

	closes[len(closes)-1] = 120 // +20% against every available window

	raw, err := RSRaw(closes, RSWeights{ThreeMonth: 0, SixMonth: 0, NineMonth: 0, TwelveMonth: 1.0}, 200)
	suite.NoError(err)
	suite.InDelta(0.0, raw, 1e-9)
}

func (suite *RSTestSuite) TestRSPercentilesOrdering() {
	raw := map[string]float64{"A": 50, "B": 100, "C": 25, "D": 75}

	pct := RSPercentiles(raw)
	suite.Greater(pct["B"], pct["D"])
	suite.Greater(pct["D"], pct["A"])
	suite.Greater(pct["A"], pct["C"])
	suite.GreaterOrEqual(pct["C"], 0.0)
	suite.LessOrEqual(pct["C"], 100.0)
	suite.InDelta(100.0, pct["B"], 1e-9)
}

func (suite *RSTestSuite) TestRSPercentilesTiesShareRank() {
	raw := map[string]float64{"A": 10, "B": 10, "C": 20}

	pct := RSPercentiles(raw)
	suite.Equal(pct["A"], pct["B"])
	suite.Greater(pct["C"], pct["A"])
}

func (suite *RSTestSuite) TestRSPercentilesNaNRanksZero() {
	raw := map[string]float64{"A": math.NaN(), "B": -5}

	pct := RSPercentiles(raw)
	suite.Equal(0.0, pct["A"])
	suite.Greater(pct["B"], 0.0)
}

func (suite *RSTestSuite) TestRSPercentilesEmpty() {
	suite.Empty(RSPercentiles(map[string]float64{}))
}
