package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"daytrade_go/internal/domain"
)

// LoadCandlesCSV reads daily bars from a CSV file with the header
// date,open,high,low,close,volume (date as 2006-01-02). Rows must be
// oldest first.
func LoadCandlesCSV(path, symbol string) ([]domain.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCandles(f, symbol)
}

// ReadCandles parses the CSV body. Exposed separately so tests and
// other feeds can supply any reader.
func ReadCandles(r io.Reader, symbol string) ([]domain.Candle, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if len(header) < 6 {
		return nil, fmt.Errorf("csv header has %d columns, want 6", len(header))
	}

	var bars []domain.Candle
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}

		ts, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad date %q", line, rec[0])
		}
		var fields [4]float64
		for i := 0; i < 4; i++ {
			fields[i], err = strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: bad %s %q", line, header[i+1], rec[i+1])
			}
		}
		volume, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad volume %q", line, rec[5])
		}

		bars = append(bars, domain.Candle{
			Symbol: symbol,
			Open:   fields[0],
			High:   fields[1],
			Low:    fields[2],
			Close:  fields[3],
			Volume: volume,
			Ts:     ts,
		})
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}
