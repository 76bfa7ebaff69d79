package market

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/sauravdhanuka/vcp-screener/internal/types"
	"github.com/sauravdhanuka/vcp-screener/pkg/errors"
)

// csvDate parses the date column, accepting plain dates and RFC3339
// timestamps.
type csvDate struct {
	time.Time
}

func (d *csvDate) UnmarshalCSV(value string) error {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			d.Time = t
			return nil
		}
	}

	return errors.Newf(errors.ErrCodeMarketDataParseFailed, "unparseable date %q", value)
}

func (d csvDate) MarshalCSV() (string, error) {
	return d.Format("2006-01-02"), nil
}

type csvBar struct {
	Date   csvDate `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// LoadCSV reads one symbol's daily bars from a CSV file with a
// date,open,high,low,close,volume header.
func LoadCSV(path string) ([]types.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataLoadFailed, err, "failed to open %s", path)
	}
	defer f.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse %s", path)
	}

	bars := make([]types.Bar, len(rows))
	for i, r := range rows {
		bars[i] = types.Bar{
			Date:   r.Date.Time,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
	}

	return bars, nil
}

// LoadCSVDir builds a snapshot from a directory of <SYMBOL>.csv files.
func LoadCSVDir(dir string) (*Snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataLoadFailed, err, "failed to read %s", dir)
	}

	data := make(map[string][]types.Bar)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		symbol := strings.TrimSuffix(entry.Name(), ".csv")

		bars, err := LoadCSV(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		data[symbol] = bars
	}

	if len(data) == 0 {
		return nil, errors.Newf(errors.ErrCodeNoDataFound, "no csv files under %s", dir)
	}

	return NewSnapshot(data), nil
}
