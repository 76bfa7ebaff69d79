// Package screener runs the point-in-time candidate pipeline: pre-filter,
// relative strength ranking, trend gate, pattern detection and scoring.
package screener

import (
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sauravdhanuka/vcp-screener/internal/config"
	"github.com/sauravdhanuka/vcp-screener/internal/indicator"
	"github.com/sauravdhanuka/vcp-screener/internal/logger"
	"github.com/sauravdhanuka/vcp-screener/internal/market"
	"github.com/sauravdhanuka/vcp-screener/internal/pattern"
	"github.com/sauravdhanuka/vcp-screener/internal/trend"
	"github.com/sauravdhanuka/vcp-screener/internal/types"
)

type Screener struct {
	cfg     config.Config
	log     *logger.Logger
	workers int
}

func NewScreener(cfg config.Config, log *logger.Logger) *Screener {
	return &Screener{
		cfg:     cfg,
		log:     log,
		workers: runtime.NumCPU(),
	}
}

// survivor is a symbol past the pre-filter, with its as-of slice and raw RS.
type survivor struct {
	symbol string
	bars   []types.Bar
	rsRaw  float64
}

// Screen evaluates the whole universe as of a date. Only bars dated at or
// before asOf are visible to any stage. indexBars feed the market regime
// tag and may be nil. The result is sorted by (vcp score desc, rs
// percentile desc, symbol asc), truncated to the configured top-N and
// carries 1-based ranks.
func (s *Screener) Screen(data map[string][]types.Bar, indexBars []types.Bar, asOf time.Time) []types.Candidate {
	symbols := make([]string, 0, len(data))
	for symbol := range data {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	survivors := s.preFilter(symbols, data, asOf)

	rsRaw := make(map[string]float64, len(survivors))
	for _, sv := range survivors {
		rsRaw[sv.symbol] = sv.rsRaw
	}

	rsPct := indicator.RSPercentiles(rsRaw)

	candidates := s.evaluate(survivors, rsPct)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].VCPScore != candidates[j].VCPScore {
			return candidates[i].VCPScore > candidates[j].VCPScore
		}

		if candidates[i].RSPercentile != candidates[j].RSPercentile {
			return candidates[i].RSPercentile > candidates[j].RSPercentile
		}

		return candidates[i].Symbol < candidates[j].Symbol
	})

	if len(candidates) > s.cfg.TopN {
		candidates = candidates[:s.cfg.TopN]
	}

	regime := DetectRegime(market.AsOf(indexBars, asOf)).Regime
	for i := range candidates {
		candidates[i].Rank = i + 1
		candidates[i].MarketRegime = regime
	}

	s.log.Info("screening complete",
		zap.Time("as_of", asOf),
		zap.Int("universe", len(symbols)),
		zap.Int("survivors", len(survivors)),
		zap.Int("candidates", len(candidates)),
		zap.String("regime", string(regime)))

	return candidates
}

// preFilter cuts each series to the as-of date, applies the history, price
// band and liquidity checks, and computes the raw RS score for survivors.
// The per-symbol work fans out across the worker pool.
func (s *Screener) preFilter(symbols []string, data map[string][]types.Bar, asOf time.Time) []survivor {
	var (
		mu        sync.Mutex
		survivors []survivor
	)

	s.fanOut(len(symbols), func(i int) {
		symbol := symbols[i]

		bars := market.AsOf(data[symbol], asOf)
		if len(bars) < s.cfg.MinTradingDays {
			return
		}

		lastClose := bars[len(bars)-1].Close
		if lastClose < s.cfg.MinPrice {
			return
		}

		if s.cfg.MaxPrice > 0 && lastClose > s.cfg.MaxPrice {
			return
		}

		volumes := types.Volumes(bars)
		if indicator.AverageVolume(volumes, indicator.DefaultVolumePeriod) < s.cfg.MinAvgVolume {
			return
		}

		raw, err := indicator.RSRaw(types.Closes(bars), s.rsWeights(), s.cfg.MinTradingDays)
		if err != nil {
			raw = math.NaN()
		}

		mu.Lock()
		survivors = append(survivors, survivor{symbol: symbol, bars: bars, rsRaw: raw})
		mu.Unlock()
	})

	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].symbol < survivors[j].symbol
	})

	return survivors
}

// evaluate applies the trend gate, the detector and the scorer to each
// survivor in parallel.
func (s *Screener) evaluate(survivors []survivor, rsPct map[string]float64) []types.Candidate {
	var (
		mu         sync.Mutex
		candidates []types.Candidate
	)

	s.fanOut(len(survivors), func(i int) {
		sv := survivors[i]
		pct := rsPct[sv.symbol]

		closes := types.Closes(sv.bars)
		if !trend.Check(closes, pct, s.cfg).Passes {
			return
		}

		det := pattern.Detect(sv.bars, s.cfg)
		if !det.Found {
			return
		}

		candidate := types.Candidate{
			Symbol:           sv.symbol,
			Close:            closes[len(closes)-1],
			VCPScore:         types.RoundTo(pattern.Score(det), 1),
			RSPercentile:     types.RoundTo(pct, 1),
			PivotPrice:       det.PivotPrice,
			BaseDepthPct:     types.RoundTo(det.BaseDepthPct, 1),
			NumContractions:  det.NumContractions,
			TightnessRatio:   types.RoundTo(det.TightnessRatio, 2),
			VolumeDryUpPct:   types.RoundTo(det.VolumeDryUpPct, 1),
			BaseDurationDays: det.BaseDurationDays,
			AvgVolume:        indicator.AverageVolume(types.Volumes(sv.bars), indicator.DefaultVolumePeriod),
			Contractions:     det.Contractions,
		}

		mu.Lock()
		candidates = append(candidates, candidate)
		mu.Unlock()
	})

	return candidates
}

// fanOut runs fn for indices 0..n-1 across the worker pool and waits for
// completion.
func (s *Screener) fanOut(n int, fn func(i int)) {
	workers := s.workers
	if workers > n {
		workers = n
	}

	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}

		return
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range jobs {
				fn(i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}

	close(jobs)
	wg.Wait()
}

func (s *Screener) rsWeights() indicator.RSWeights {
	return indicator.RSWeights{
		ThreeMonth:  s.cfg.RSWeight3M,
		SixMonth:    s.cfg.RSWeight6M,
		NineMonth:   s.cfg.RSWeight9M,
		TwelveMonth: s.cfg.RSWeight12M,
	}
}
