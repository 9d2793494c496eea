// Package adapter binds external data sources to schema-validated
// containers. Every adapter either returns a fully validated container or
// fails; there is no row-level partial success. Blocking I/O lives here,
// outside the analytical core.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"QuantKit/internal/container"
	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
)

// ErrAdapter is the sentinel every adapter failure matches.
var ErrAdapter = errors.New("adapter: fetch failed")

// Error wraps the underlying cause of a failed fetch with its source.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string { return fmt.Sprintf("adapter %s: %v", e.Source, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Is matches the ErrAdapter sentinel.
func (e *Error) Is(target error) bool { return target == ErrAdapter }

// wrap builds the adapter error for source unless err is nil.
func wrap(source string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Source: source, Err: err}
}

// Adapter is the capability contract data sources implement. Fetch
// returns a freshly validated container bound to SchemaName, or fails;
// it never mutates existing containers. Retry policy belongs to the
// caller.
type Adapter interface {
	SchemaName() string
	Fetch(ctx context.Context) (*container.Container, error)
}

// repairBars deterministically prepares raw rows for construction: sort
// by bucket ascending, and on duplicate timestamps keep the row that
// arrived last.
func repairBars(bars []models.Bar) []models.Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Bucket.Before(bars[j].Bucket) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Bucket.Equal(b.Bucket) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

// barsContainer builds an OHLCV container at the given resolution.
func barsContainer(reg *schema.Registry, resolution schema.Resolution, bars []models.Bar) (*container.Container, error) {
	if err := schema.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	name := schema.DailyOHLCV
	if resolution == schema.Intraday {
		name = schema.IntradayOHLCV
	}
	s, err := reg.Resolve(name)
	if err != nil {
		return nil, err
	}

	bars = repairBars(bars)
	n := len(bars)
	ts := make([]time.Time, n)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range bars {
		bucket := b.Bucket
		if resolution == schema.Daily {
			bucket = bucket.UTC().Truncate(24 * time.Hour)
		}
		ts[i] = bucket
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		volume[i] = b.Volume
	}

	return container.New(s, ts, map[string]container.Column{
		"open":   container.Float64Column(open),
		"high":   container.Float64Column(high),
		"low":    container.Float64Column(low),
		"close":  container.Float64Column(closes),
		"volume": container.Float64Column(volume),
	})
}

// repairTicks sorts trades by timestamp and drops exact-timestamp
// duplicates, keeping the last arrival.
func repairTicks(ticks []models.Tick) []models.Tick {
	sort.SliceStable(ticks, func(i, j int) bool { return ticks[i].Timestamp.Before(ticks[j].Timestamp) })
	out := ticks[:0]
	for _, t := range ticks {
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(t.Timestamp) {
			out[n-1] = t
			continue
		}
		out = append(out, t)
	}
	return out
}

// ticksContainer builds a tick_trades container.
func ticksContainer(reg *schema.Registry, ticks []models.Tick) (*container.Container, error) {
	if err := schema.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	s, err := reg.Resolve(schema.TickTrades)
	if err != nil {
		return nil, err
	}

	ticks = repairTicks(ticks)
	n := len(ticks)
	ts := make([]time.Time, n)
	price := make([]float64, n)
	volume := make([]float64, n)
	side := make([]int64, n)
	for i, t := range ticks {
		ts[i] = t.Timestamp
		price[i] = t.Price
		volume[i] = t.Volume
		side[i] = t.Side
	}

	return container.New(s, ts, map[string]container.Column{
		"price":          container.Float64Column(price),
		"volume":         container.Float64Column(volume),
		schema.SideField: container.Int64Column(side),
	})
}
