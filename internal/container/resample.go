package container

import (
	"errors"
	"fmt"
	"time"

	"QuantKit/internal/schema"
)

var ErrIllegalResample = errors.New("container: illegal resample")

// AggRule selects how a field is aggregated into a resample bucket.
// "Last" is last-by-timestamp; row timestamps are unique so there is no
// tie to break beyond insertion order. "Mean" over an int64 field uses
// integer division and truncates toward zero.
type AggRule string

const (
	AggFirst AggRule = "first"
	AggLast  AggRule = "last"
	AggMin   AggRule = "min"
	AggMax   AggRule = "max"
	AggSum   AggRule = "sum"
	AggMean  AggRule = "mean"
	AggCount AggRule = "count"
)

// TickPriceRules aggregates a tick price series into bars of the same
// field layout: closing price, summed volume, last trade side.
func TickPriceRules() map[string]AggRule {
	return map[string]AggRule{
		"price":          AggLast,
		"volume":         AggSum,
		schema.SideField: AggLast,
	}
}

// OHLCVRules aggregates OHLCV bars into coarser OHLCV bars.
func OHLCVRules() map[string]AggRule {
	return map[string]AggRule{
		"open":   AggFirst,
		"high":   AggMax,
		"low":    AggMin,
		"close":  AggLast,
		"volume": AggSum,
	}
}

// bucketStart aligns ts to its resample bucket: minute-aligned for
// intraday, UTC-midnight-aligned for daily.
func bucketStart(ts time.Time, target schema.Resolution) time.Time {
	switch target {
	case schema.Intraday:
		return ts.Truncate(time.Minute)
	default:
		return ts.UTC().Truncate(24 * time.Hour)
	}
}

// Resample groups rows into resolution-aligned buckets and applies the
// per-field aggregation rules. Only finer-to-coarser targets are legal;
// resampling to the container's own resolution returns a row-identical
// copy. The result conforms to a schema derived from the source with the
// target resolution.
func (c *Container) Resample(target schema.Resolution, rules map[string]AggRule) (*Container, error) {
	cur := c.schema.Resolution()
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown resolution %q", ErrIllegalResample, target)
	}
	if target == cur {
		if c.Len() == 0 {
			return Empty(c.schema), nil
		}
		return c.Slice(c.ts[0], c.ts[c.Len()-1]), nil
	}
	if !cur.FinerThan(target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalResample, cur, target)
	}

	for _, f := range c.schema.Fields() {
		rule, ok := rules[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: no aggregation rule for field %q", ErrIllegalResample, f.Name)
		}
		if err := checkRule(rule, f.Type); err != nil {
			return nil, fmt.Errorf("%w: field %q: %v", ErrIllegalResample, f.Name, err)
		}
	}

	derived, err := c.schema.WithResolution(target)
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return Empty(derived), nil
	}

	// Rows are already timestamp-ordered, so buckets arrive in order.
	var (
		bucketTS []time.Time
		starts   []int // index of first row per bucket
	)
	for i, ts := range c.ts {
		b := bucketStart(ts, target)
		if len(bucketTS) == 0 || !b.Equal(bucketTS[len(bucketTS)-1]) {
			bucketTS = append(bucketTS, b)
			starts = append(starts, i)
		}
	}
	starts = append(starts, c.Len())

	out := map[string]Column{}
	for _, f := range c.schema.Fields() {
		rule := rules[f.Name]
		if f.Type == schema.Int64 {
			src, _ := c.Int64s(f.Name)
			agg := make([]int64, len(bucketTS))
			for b := range bucketTS {
				agg[b] = aggregateInt64(src[starts[b]:starts[b+1]], rule)
			}
			out[f.Name] = Int64Column(agg)
		} else {
			src, _ := c.Float64s(f.Name)
			agg := make([]float64, len(bucketTS))
			for b := range bucketTS {
				agg[b] = aggregateFloat64(src[starts[b]:starts[b+1]], rule)
			}
			out[f.Name] = Float64Column(agg)
		}
	}

	return New(derived, bucketTS, out)
}

func checkRule(rule AggRule, _ schema.FieldType) error {
	switch rule {
	case AggFirst, AggLast, AggMin, AggMax, AggSum, AggMean, AggCount:
		return nil
	default:
		return fmt.Errorf("unknown aggregation rule %q", rule)
	}
}

func aggregateFloat64(window []float64, rule AggRule) float64 {
	switch rule {
	case AggFirst:
		return window[0]
	case AggLast:
		return window[len(window)-1]
	case AggMin:
		m := window[0]
		for _, v := range window[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case AggMax:
		m := window[0]
		for _, v := range window[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case AggSum:
		var s float64
		for _, v := range window {
			s += v
		}
		return s
	case AggMean:
		var s float64
		for _, v := range window {
			s += v
		}
		return s / float64(len(window))
	default: // AggCount
		return float64(len(window))
	}
}

func aggregateInt64(window []int64, rule AggRule) int64 {
	switch rule {
	case AggFirst:
		return window[0]
	case AggLast:
		return window[len(window)-1]
	case AggMin:
		m := window[0]
		for _, v := range window[1:] {
			if v < m {
				m = v
			}
		}
		return m
	case AggMax:
		m := window[0]
		for _, v := range window[1:] {
			if v > m {
				m = v
			}
		}
		return m
	case AggSum:
		var s int64
		for _, v := range window {
			s += v
		}
		return s
	case AggMean:
		var s int64
		for _, v := range window {
			s += v
		}
		return s / int64(len(window))
	default: // AggCount
		return int64(len(window))
	}
}
