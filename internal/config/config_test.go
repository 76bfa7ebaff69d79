package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfigIsValid() {
	cfg := DefaultConfig()
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestDefaultValues() {
	cfg := DefaultConfig()
	suite.Equal(200, cfg.MinTradingDays)
	suite.Equal(20, cfg.SMAShort)
	suite.Equal(50, cfg.SMAMid)
	suite.Equal(100, cfg.SMALong)
	suite.Equal(2.5, cfg.RiskPerTradePct)
	suite.Equal(10.0, cfg.StopLossPct)
	suite.Equal(1.3, cfg.BreakoutVolumeMult)
	suite.Equal(5, cfg.MaxPositions)
	suite.Equal(50, cfg.TopN)
	suite.True(cfg.BreakoutConfirmation)
	suite.InDelta(1.0, cfg.RSWeight3M+cfg.RSWeight6M+cfg.RSWeight9M+cfg.RSWeight12M, 1e-9)
}

func (suite *ConfigTestSuite) TestParseOverridesDefaults() {
	content := []byte("min_price: 25\ntop_n: 10\nbreakout_confirmation: false\n")

	cfg, err := Parse(content)
	suite.NoError(err)
	suite.Equal(25.0, cfg.MinPrice)
	suite.Equal(10, cfg.TopN)
	suite.False(cfg.BreakoutConfirmation)
	// Untouched fields keep their defaults
	suite.Equal(100_000.0, cfg.MinAvgVolume)
}

func (suite *ConfigTestSuite) TestParseRejectsInvalidYAML() {
	_, err := Parse([]byte("min_price: [not a number"))
	suite.Error(err)
}

func (suite *ConfigTestSuite) TestValidateRejectsBadValues() {
	cfg := DefaultConfig()
	cfg.MaxPositions = 0
	suite.Error(cfg.Validate())

	cfg = DefaultConfig()
	cfg.StopLossPct = 150
	suite.Error(cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxContractions = 1 // below MinContractions
	suite.Error(cfg.Validate())
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	cfg := DefaultConfig()
	schema, err := cfg.GenerateSchemaJSON()
	suite.NoError(err)
	suite.NotEmpty(schema)

	var result map[string]interface{}
	suite.NoError(json.Unmarshal([]byte(schema), &result))
	suite.Equal("vcp-screener-config", result["title"])
}
