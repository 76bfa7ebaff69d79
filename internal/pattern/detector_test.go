package pattern

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

type DetectorTestSuite struct {
	suite.Suite

	cfg config.Config
}

func TestDetectorSuite(t *testing.T) {
	suite.Run(t, new(DetectorTestSuite))
}

func (suite *DetectorTestSuite) SetupTest() {
	suite.cfg = config.DefaultConfig()
}

func dojiBars(values []float64, volumes []float64) []types.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(values))

	for i, v := range values {
		bars[i] = types.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   v,
			High:   v,
			Low:    v,
			Close:  v,
			Volume: volumes[i],
		}
	}

	return bars
}

// contractingBase builds a series with a 30-bar ramp into a peak at 100
// followed by three successively tighter pullbacks of 20%, 12% and 6%.
// Volume steps down across the base so the dry-up metric is exercised too.
func contractingBase() []types.Bar {
	values := make([]float64, 0, 66)
	volumes := make([]float64, 0, 66)

	// Ramp: closes 70..99 ahead of the peak.
	for i := 0; i < 30; i++ {
		values = append(values, 70+float64(i))
		volumes = append(volumes, 900_000)
	}

	base := []float64{
		100, // peak, first swing high
		97, 94, 91, 88, 84,
		80, // first swing low, 20% off the peak
		82, 84, 86, 88, 89,
		90, // second swing high
		88, 86, 84, 82, 80.5,
		79.2, // second swing low, 12% range
		80.5, 81.5, 82.5, 83.5, 84.3,
		85, // third swing high, the pivot
		84, 83, 82, 81, 80.3,
		79.9, // third swing low, 6% range
		81, 82, 83, 84, 84.5,
	}

	for i, v := range base {
		values = append(values, v)

		switch {
		case i < 12:
			volumes = append(volumes, 1_000_000)
		case i < 24:
			volumes = append(volumes, 700_000)
		default:
			volumes = append(volumes, 400_000)
		}
	}

	return dojiBars(values, volumes)
}

func (suite *DetectorTestSuite) TestInsufficientData() {
	values := make([]float64, 30)
	volumes := make([]float64, 30)
	for i := range values {
		values[i] = 100
		volumes[i] = 1
	}

	det := Detect(dojiBars(values, volumes), suite.cfg)
	suite.False(det.Found)
	suite.Equal("insufficient data", det.Reason)
}

func (suite *DetectorTestSuite) TestNoBaseFormation() {
	// Gentle 5% drift off the high never reaches the 10% correction floor.
	values := make([]float64, 60)
	volumes := make([]float64, 60)

	for i := 0; i < 30; i++ {
		values[i] = 70 + float64(i)
		volumes[i] = 1
	}

	for i := 30; i < 60; i++ {
		values[i] = 99 - float64(i-30)*0.1
		volumes[i] = 1
	}

	det := Detect(dojiBars(values, volumes), suite.cfg)
	suite.False(det.Found)
	suite.Equal("no base formation found", det.Reason)
}

func (suite *DetectorTestSuite) TestBaseTooShort() {
	// Peak near the end of the series leaves a 10-bar base.
	values := make([]float64, 60)
	volumes := make([]float64, 60)

	for i := 0; i < 51; i++ {
		values[i] = 50 + float64(i)
		volumes[i] = 1
	}

	for i := 51; i < 60; i++ {
		values[i] = 100 - float64(i-50)*2
		volumes[i] = 1
	}

	det := Detect(dojiBars(values, volumes), suite.cfg)
	suite.False(det.Found)
	suite.Equal("base too short", det.Reason)
}

func (suite *DetectorTestSuite) TestMonotoneDeclineHasTooFewSwings() {
	values := make([]float64, 70)
	volumes := make([]float64, 70)

	for i := 0; i < 40; i++ {
		values[i] = 60 + float64(i)
		volumes[i] = 1
	}

	for i := 40; i < 70; i++ {
		values[i] = 99.5 - float64(i-40)*0.5
		volumes[i] = 1
	}

	det := Detect(dojiBars(values, volumes), suite.cfg)
	suite.False(det.Found)
	suite.Equal("not enough swing points", det.Reason)
}

func (suite *DetectorTestSuite) TestThreeTighteningContractions() {
	det := Detect(contractingBase(), suite.cfg)
	suite.True(det.Found, "reason: %s", det.Reason)
	suite.Equal(3, det.NumContractions)
	suite.Len(det.Contractions, 3)

	suite.InDelta(20.0, det.Contractions[0].RangePct, 1e-9)
	suite.InDelta(12.0, det.Contractions[1].RangePct, 1e-9)
	suite.InDelta(6.0, det.Contractions[2].RangePct, 1e-9)

	// Pivot is the high of the last kept contraction.
	suite.InDelta(85.0, det.PivotPrice, 1e-9)
	suite.InDelta(0.3, det.TightnessRatio, 1e-9)
	suite.Equal(30, det.BaseStartIdx)
	suite.Equal(36, det.BaseDurationDays)

	// Base spans 100 down to 79.2.
	suite.InDelta(20.8, det.BaseDepthPct, 1e-9)

	// Last contraction runs entirely on 400k volume against a 1M start.
	suite.InDelta(60.0, det.VolumeDryUpPct, 1e-9)
}

func (suite *DetectorTestSuite) TestTighteningWalkStopsAfterMinimumMet() {
	contractions := []types.Contraction{
		{RangePct: 20},
		{RangePct: 12},
		{RangePct: 15},
		{RangePct: 5},
	}

	kept := tighteningWalk(contractions, 2)
	suite.Len(kept, 2)
	suite.InDelta(12.0, kept[1].RangePct, 1e-9)
}

func (suite *DetectorTestSuite) TestTighteningWalkToleratesViolationBelowMinimum() {
	contractions := []types.Contraction{
		{RangePct: 10},
		{RangePct: 12},
		{RangePct: 8},
	}

	kept := tighteningWalk(contractions, 2)
	suite.Len(kept, 3)
}
