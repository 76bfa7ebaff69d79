package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/sauravdhanuka/vcp-screener/internal/backtest/engine"
	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/market"
	"github.com/sauravdhanuka/vcp-screener/internal/portfolio"
	"github.com/sauravdhanuka/vcp-screener/internal/screener"
	"github.com/sauravdhanuka/vcp-screener/internal/sink"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

const dateLayout = "2006-01-02"

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return config.Parse(content)
}

// loadUniverse reads every CSV under dir and splits off the index series
// when an index symbol is configured.
func loadUniverse(dir, indexSymbol string) (map[string][]types.Bar, []types.Bar, error) {
	snapshot, err := market.LoadCSVDir(dir)
	if err != nil {
		return nil, nil, err
	}

	symbols := snapshot.Symbols()

	universe := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if symbol != indexSymbol {
			universe = append(universe, symbol)
		}
	}

	data, err := snapshot.LoadAll(universe)
	if err != nil {
		return nil, nil, err
	}

	var indexBars []types.Bar
	if indexSymbol != "" {
		indexBars, err = snapshot.Load(indexSymbol)
		if err != nil {
			return nil, nil, fmt.Errorf("index symbol %s not in data dir: %w", indexSymbol, err)
		}
	}

	return data, indexBars, nil
}

func screenAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	lg, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	data, indexBars, err := loadUniverse(cmd.String("data"), cmd.String("index"))
	if err != nil {
		return err
	}

	asOf := cmd.Timestamp("as-of")

	candidates := screener.NewScreener(cfg, lg).Screen(data, indexBars, asOf)

	resultSink, err := sink.NewYAMLSink(cmd.String("out"), lg)
	if err != nil {
		return err
	}

	if err := resultSink.SaveScreening(asOf, candidates); err != nil {
		return err
	}

	if len(candidates) == 0 {
		fmt.Println("No candidates found.")
		return nil
	}

	fmt.Printf("Top %d candidates as of %s (market: %s):\n",
		len(candidates), asOf.Format(dateLayout), candidates[0].MarketRegime)

	for _, c := range candidates {
		fmt.Printf("%3d. %-12s close %10.2f  pivot %10.2f  vcp %5.1f  rs %5.1f  contractions %d\n",
			c.Rank, c.Symbol, c.Close, c.PivotPrice, c.VCPScore, c.RSPercentile, c.NumContractions)
	}

	if cmd.Bool("signals") {
		signals := portfolio.NewManager(cfg, lg).ClassifyBuySignals(candidates, data)

		fmt.Println("\nBuy signals:")
		for _, s := range signals {
			fmt.Printf("%-12s %-13s %s\n", s.Symbol, s.Signal, s.Reason)
		}
	}

	return nil
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	lg, err := logger.NewLogger()
	if err != nil {
		return err
	}
	defer lg.Sync()

	data, indexBars, err := loadUniverse(cmd.String("data"), cmd.String("index"))
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	onDay := engine.OnProcessDayCallback(func(current, total int, day time.Time, equity float64) {
		if bar == nil {
			bar = progressbar.Default(int64(total))
			bar.Describe("Backtesting")
		}
		bar.Add(1)
	})

	result, err := engine.NewEngine(cfg, lg).Run(
		data,
		indexBars,
		cmd.Timestamp("start"),
		cmd.Timestamp("end"),
		int(cmd.Int("interval")),
		optional.Some(onDay),
	)
	if err != nil {
		return err
	}

	resultSink, err := sink.NewYAMLSink(cmd.String("out"), lg)
	if err != nil {
		return err
	}

	if err := resultSink.SaveBacktest(result); err != nil {
		return err
	}

	fmt.Printf("\nBacktest %s (%s to %s)\n", result.ID,
		result.StartDate.Format(dateLayout), result.EndDate.Format(dateLayout))
	fmt.Printf("Final capital:   %.2f (return %.2f%%, CAGR %.2f%%)\n",
		result.FinalCapital, result.TotalReturnPct, result.CAGRPct)
	fmt.Printf("Trades:          %d (win rate %.1f%%, avg hold %.1f days)\n",
		result.TotalTrades, result.WinRatePct, result.AvgHoldDays)
	fmt.Printf("Max drawdown:    %.2f%%\n", result.MaxDrawdownPct)
	fmt.Printf("Sharpe:          %.2f\n", result.SharpeRatio)
	fmt.Printf("Profit factor:   %.2f\n", result.ProfitFactor)

	return nil
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.DefaultConfig()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML config file. Defaults apply when omitted.",
	}

	dataFlag := &cli.StringFlag{
		Name:    "data",
		Aliases: []string{"d"},
		Usage:   "Directory of per-symbol OHLCV CSV files",
		Value:   "data",
	}

	indexFlag := &cli.StringFlag{
		Name:  "index",
		Usage: "Symbol of the market index CSV used for the regime filter",
	}

	outFlag := &cli.StringFlag{
		Name:    "out",
		Aliases: []string{"o"},
		Usage:   "Directory for result files",
		Value:   "results",
	}

	cmd := &cli.Command{
		Name:  "vcp",
		Usage: "Volatility contraction pattern screener and backtester",
		Commands: []*cli.Command{
			{
				Name:  "screen",
				Usage: "Screen the universe for actionable contraction setups",
				Flags: []cli.Flag{
					configFlag,
					dataFlag,
					indexFlag,
					outFlag,
					&cli.TimestampFlag{
						Name:  "as-of",
						Usage: "Evaluate the universe as of this `YYYY-MM-DD`",
						Value: time.Now().UTC(),
						Config: cli.TimestampConfig{
							Layouts: []string{dateLayout},
						},
					},
					&cli.BoolFlag{
						Name:  "signals",
						Usage: "Also classify candidates into buy signals",
					},
				},
				Action: screenAction,
			},
			{
				Name:  "backtest",
				Usage: "Replay the screening strategy over a date range",
				Flags: []cli.Flag{
					configFlag,
					dataFlag,
					indexFlag,
					outFlag,
					&cli.TimestampFlag{
						Name:     "start",
						Aliases:  []string{"s"},
						Usage:    "Backtest start date in `YYYY-MM-DD` format",
						Required: true,
						Config: cli.TimestampConfig{
							Layouts: []string{dateLayout},
						},
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "Backtest end date in `YYYY-MM-DD` format. Defaults to today.",
						Value:   time.Now().UTC(),
						Config: cli.TimestampConfig{
							Layouts: []string{dateLayout},
						},
					},
					&cli.IntFlag{
						Name:  "interval",
						Usage: "Calendar days between screening runs",
						Value: 5,
					},
				},
				Action: backtestAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the config file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
