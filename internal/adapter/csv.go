package adapter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"QuantKit/internal/container"
	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
)

// CSVBars reads daily bars from a CSV file with a
// date,open,high,low,close,volume header. Dates are YYYY-MM-DD. Any
// malformed row fails the whole fetch.
type CSVBars struct {
	reg  *schema.Registry
	path string
}

func NewCSVBars(reg *schema.Registry, path string) *CSVBars {
	return &CSVBars{reg: reg, path: path}
}

func (a *CSVBars) SchemaName() string { return schema.DailyOHLCV }

func (a *CSVBars) Fetch(_ context.Context) (*container.Container, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, wrap("csv", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, wrap("csv", fmt.Errorf("read header: %w", err))
	}
	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	for _, want := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := col[want]; !ok {
			return nil, wrap("csv", fmt.Errorf("missing column %q in %s", want, a.path))
		}
	}

	var bars []models.Bar
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrap("csv", fmt.Errorf("line %d: %w", line, err))
		}

		date, err := time.Parse("2006-01-02", rec[col["date"]])
		if err != nil {
			return nil, wrap("csv", fmt.Errorf("line %d: bad date %q: %w", line, rec[col["date"]], err))
		}
		bar := models.Bar{Bucket: date.UTC()}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &bar.Open},
			{"high", &bar.High},
			{"low", &bar.Low},
			{"close", &bar.Close},
			{"volume", &bar.Volume},
		} {
			v, err := strconv.ParseFloat(rec[col[f.name]], 64)
			if err != nil {
				return nil, wrap("csv", fmt.Errorf("line %d: bad %s %q: %w", line, f.name, rec[col[f.name]], err))
			}
			*f.dst = v
		}
		bars = append(bars, bar)
	}

	c, err := barsContainer(a.reg, schema.Daily, bars)
	if err != nil {
		return nil, wrap("csv", err)
	}
	return c, nil
}
