// Package config holds the full parameter surface for a screening or
// backtest run. A Config is read once per run and never mutated afterwards,
// so concurrent runs and parameter sweeps can each carry their own value.
package config

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

type Config struct {
	// Pre-filter
	MinPrice       float64 `yaml:"min_price" json:"min_price" validate:"gte=0" jsonschema:"title=Minimum Price,description=Reject symbols whose last close is below this"`
	MaxPrice       float64 `yaml:"max_price" json:"max_price" validate:"gte=0" jsonschema:"title=Maximum Price,description=Reject symbols whose last close is above this; 0 disables the cap"`
	MinAvgVolume   float64 `yaml:"min_avg_volume" json:"min_avg_volume" validate:"gte=0" jsonschema:"title=Minimum Average Volume"`
	MinTradingDays int     `yaml:"min_trading_days" json:"min_trading_days" validate:"gt=0" jsonschema:"title=Minimum Trading Days,description=History required before a symbol is screened"`

	// Relative strength weights over the 63/126/189/252 day windows.
	// Should sum to 1.0; not enforced.
	RSWeight3M  float64 `yaml:"rs_weight_3m" json:"rs_weight_3m" validate:"gte=0"`
	RSWeight6M  float64 `yaml:"rs_weight_6m" json:"rs_weight_6m" validate:"gte=0"`
	RSWeight9M  float64 `yaml:"rs_weight_9m" json:"rs_weight_9m" validate:"gte=0"`
	RSWeight12M float64 `yaml:"rs_weight_12m" json:"rs_weight_12m" validate:"gte=0"`

	// Trend template
	SMAShort           int     `yaml:"sma_short" json:"sma_short" validate:"gt=0"`
	SMAMid             int     `yaml:"sma_mid" json:"sma_mid" validate:"gt=0"`
	SMALong            int     `yaml:"sma_long" json:"sma_long" validate:"gt=0"`
	SMALongTrendDays   int     `yaml:"sma_long_trend_days" json:"sma_long_trend_days" validate:"gt=0"`
	MinAbove52WLowPct  float64 `yaml:"min_above_52w_low_pct" json:"min_above_52w_low_pct" validate:"gte=0"`
	MaxBelow52WHighPct float64 `yaml:"max_below_52w_high_pct" json:"max_below_52w_high_pct" validate:"gte=0"`
	MinRSPercentile    float64 `yaml:"min_rs_percentile" json:"min_rs_percentile" validate:"gte=0,lte=100"`

	// Pattern detection
	SwingOrder           int     `yaml:"swing_order" json:"swing_order" validate:"gt=0"`
	MinBaseCorrectionPct float64 `yaml:"min_base_correction_pct" json:"min_base_correction_pct" validate:"gt=0"`
	MinContractions      int     `yaml:"min_contractions" json:"min_contractions" validate:"gt=0"`
	MaxContractions      int     `yaml:"max_contractions" json:"max_contractions" validate:"gt=0,gtefield=MinContractions"`

	// Breakout confirmation
	BreakoutConfirmation bool    `yaml:"breakout_confirmation" json:"breakout_confirmation"`
	BreakoutVolumeMult   float64 `yaml:"breakout_volume_mult" json:"breakout_volume_mult" validate:"gt=0"`
	WatchlistExpiryDays  int     `yaml:"watchlist_expiry_days" json:"watchlist_expiry_days" validate:"gt=0"`

	// Portfolio
	AccountSize         float64 `yaml:"account_size" json:"account_size" validate:"gt=0"`
	RiskPerTradePct     float64 `yaml:"risk_per_trade_pct" json:"risk_per_trade_pct" validate:"gt=0"`
	MaxPositions        int     `yaml:"max_positions" json:"max_positions" validate:"gt=0"`
	StopLossPct         float64 `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gt=0,lt=100"`
	BreakevenTriggerPct float64 `yaml:"breakeven_trigger_pct" json:"breakeven_trigger_pct" validate:"gte=0"`
	TrailingTriggerPct  float64 `yaml:"trailing_trigger_pct" json:"trailing_trigger_pct" validate:"gte=0"`
	TrailingStopPct     float64 `yaml:"trailing_stop_pct" json:"trailing_stop_pct" validate:"gt=0,lt=100"`

	// Screening output
	TopN int `yaml:"top_n" json:"top_n" validate:"gt=0"`
}

// DefaultConfig returns the tuned parameter set: fast SMAs, a wide trail and
// breakout confirmation, sized for a 100k account.
func DefaultConfig() Config {
	return Config{
		MinPrice:       50.0,
		MaxPrice:       0, // 0 = no cap
		MinAvgVolume:   100_000,
		MinTradingDays: 200,

		RSWeight3M:  0.50,
		RSWeight6M:  0.25,
		RSWeight9M:  0.15,
		RSWeight12M: 0.10,

		SMAShort:           20,
		SMAMid:             50,
		SMALong:            100,
		SMALongTrendDays:   22,
		MinAbove52WLowPct:  30.0,
		MaxBelow52WHighPct: 25.0,
		MinRSPercentile:    70.0,

		SwingOrder:           5,
		MinBaseCorrectionPct: 10.0,
		MinContractions:      2,
		MaxContractions:      6,

		BreakoutConfirmation: true,
		BreakoutVolumeMult:   1.3,
		WatchlistExpiryDays:  20,

		AccountSize:         100_000,
		RiskPerTradePct:     2.5,
		MaxPositions:        5,
		StopLossPct:         10.0,
		BreakevenTriggerPct: 15.0,
		TrailingTriggerPct:  30.0,
		TrailingStopPct:     12.0,

		TopN: 50,
	}
}

// Parse unmarshals a YAML document over the defaults and validates the
// resulting configuration.
func Parse(content []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its field constraints.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(c)
	schema.Title = "vcp-screener-config"
	schema.Description = "Configuration schema for the VCP screener and backtester"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the Config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema := c.GenerateSchema()

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
