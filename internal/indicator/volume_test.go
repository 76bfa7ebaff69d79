package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type VolumeTestSuite struct {
	suite.Suite
}

func TestVolumeSuite(t *testing.T) {
	suite.Run(t, new(VolumeTestSuite))
}

func (suite *VolumeTestSuite) TestAverageVolumeFullWindow() {
	volumes := make([]float64, 60)
	for i := range volumes {
		volumes[i] = float64(i)
	}

	// Last 50 observations are 10..59, mean 34.5.
	suite.InDelta(34.5, AverageVolume(volumes, 50), 1e-9)
}

func (suite *VolumeTestSuite) TestAverageVolumeDegradesOnShortHistory() {
	suite.InDelta(20.0, AverageVolume([]float64{10, 20, 30}, 50), 1e-9)
}

func (suite *VolumeTestSuite) TestAverageVolumeEmpty() {
	suite.Equal(0.0, AverageVolume(nil, 50))
}

func (suite *VolumeTestSuite) TestVolumeRatio() {
	volumes := make([]float64, 50)
	for i := range volumes {
		volumes[i] = 100
	}

	// Spike the last 10 days to 200: short avg 200, long avg 120.
	for i := 40; i < 50; i++ {
		volumes[i] = 200
	}

	suite.InDelta(200.0/120.0, VolumeRatio(volumes, 10, 50), 1e-9)
}

func (suite *VolumeTestSuite) TestVolumeRatioShortHistoryIsOne() {
	suite.Equal(1.0, VolumeRatio([]float64{1, 2, 3}, 10, 50))
}

func (suite *VolumeTestSuite) TestVolumeRatioZeroLongAverage() {
	volumes := make([]float64, 50)
	suite.Equal(1.0, VolumeRatio(volumes, 10, 50))
}
