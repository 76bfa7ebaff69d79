// Package sink persists screening runs and backtest results to disk.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// ResultSink receives finished screening runs and backtest results.
type ResultSink interface {
	SaveScreening(runDate time.Time, candidates []types.Candidate) error
	SaveBacktest(result *types.BacktestResult) error
}

// ScreeningReport is the on-disk shape of one screening run.
type ScreeningReport struct {
	RunDate    string            `yaml:"run_date"`
	Count      int               `yaml:"count"`
	Candidates []types.Candidate `yaml:"candidates"`
}

// YAMLSink writes each run as YAML under a base directory. Backtests also
// get their trade log as a CSV next to the YAML report.
type YAMLSink struct {
	baseDir string
	log     *logger.Logger
}

func NewYAMLSink(baseDir string, log *logger.Logger) (*YAMLSink, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResultWriteFailed, err,
			"creating results directory %s", baseDir)
	}

	return &YAMLSink{baseDir: baseDir, log: log}, nil
}

// SaveScreening writes screening_<date>.yaml. A rerun for the same date
// overwrites the earlier file.
func (s *YAMLSink) SaveScreening(runDate time.Time, candidates []types.Candidate) error {
	report := ScreeningReport{
		RunDate:    runDate.Format("2006-01-02"),
		Count:      len(candidates),
		Candidates: candidates,
	}

	path := filepath.Join(s.baseDir, fmt.Sprintf("screening_%s.yaml", report.RunDate))

	if err := s.writeYAML(path, report); err != nil {
		return err
	}

	s.log.Info("screening saved",
		zap.String("path", path),
		zap.Int("candidates", len(candidates)))

	return nil
}

// SaveBacktest writes backtest_<id>.yaml plus backtest_<id>_trades.csv.
func (s *YAMLSink) SaveBacktest(result *types.BacktestResult) error {
	base := fmt.Sprintf("backtest_%s", result.ID)

	yamlPath := filepath.Join(s.baseDir, base+".yaml")
	if err := s.writeYAML(yamlPath, result); err != nil {
		return err
	}

	csvPath := filepath.Join(s.baseDir, base+"_trades.csv")
	if err := s.writeTradesCSV(csvPath, result.Trades); err != nil {
		return err
	}

	s.log.Info("backtest saved",
		zap.String("path", yamlPath),
		zap.Int("trades", len(result.Trades)))

	return nil
}

func (s *YAMLSink) writeYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "marshaling %s", path)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "writing %s", path)
	}

	return nil
}

// csvTrade flattens a closed trade into one CSV row.
type csvTrade struct {
	Symbol     string  `csv:"symbol"`
	EntryDate  string  `csv:"entry_date"`
	EntryPrice float64 `csv:"entry_price"`
	Shares     int     `csv:"shares"`
	ExitDate   string  `csv:"exit_date"`
	ExitPrice  float64 `csv:"exit_price"`
	ExitReason string  `csv:"exit_reason"`
	PnL        float64 `csv:"pnl"`
	PnLPct     float64 `csv:"pnl_pct"`
	HoldDays   int     `csv:"hold_days"`
}

func (s *YAMLSink) writeTradesCSV(path string, trades []types.Trade) error {
	rows := make([]csvTrade, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, csvTrade{
			Symbol:     t.Symbol,
			EntryDate:  t.EntryDate.Format("2006-01-02"),
			EntryPrice: t.EntryPrice,
			Shares:     t.Shares,
			ExitDate:   t.ExitDate.Format("2006-01-02"),
			ExitPrice:  t.ExitPrice,
			ExitReason: t.ExitReason,
			PnL:        t.PnL,
			PnLPct:     t.PnLPct,
			HoldDays:   t.HoldDays,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "creating %s", path)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return errors.Wrapf(errors.ErrCodeResultWriteFailed, err, "writing %s", path)
	}

	return nil
}
