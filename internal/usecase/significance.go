package usecase

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	domrepo "QuantKit/internal/domain/repository"
	"QuantKit/internal/finmath"
	"QuantKit/internal/permtest"
	"QuantKit/internal/schema"
	"QuantKit/internal/stochastic"
	"QuantKit/pkg/cache"
)

// SignificanceUseCase runs permutation tests against supplied return
// sequences or against log returns derived from stored closes.
type SignificanceUseCase struct {
	series  *SeriesUseCase
	cache   cache.Service
	metrics domrepo.Metrics
	ttl     time.Duration
}

func NewSignificanceUseCase(series *SeriesUseCase, c cache.Service, m domrepo.Metrics, ttl time.Duration) *SignificanceUseCase {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignificanceUseCase{series: series, cache: c, metrics: m, ttl: ttl}
}

type RunTestParams struct {
	// Returns are tested as-is when non-empty. Otherwise Symbol/From/To
	// select a stored series and log returns are derived from its closes.
	Returns    []float64
	Symbol     string
	From       time.Time
	To         time.Time
	Resolution schema.Resolution
	Statistic  string
	N          int
	Mode       permtest.Mode
	Tail       permtest.Tail
	Seed       int64
}

func (uc *SignificanceUseCase) RunTest(ctx context.Context, p RunTestParams) (*permtest.Result, error) {
	stat, ok := permtest.ByName(p.Statistic)
	if !ok {
		return nil, fmt.Errorf("%w: unknown statistic %q", ErrInvalidParams, p.Statistic)
	}

	returns := p.Returns
	if len(returns) == 0 {
		if p.Symbol == "" {
			return nil, fmt.Errorf("%w: either returns or symbol required", ErrInvalidParams)
		}
		c, err := uc.series.GetSeries(ctx, GetSeriesParams{
			Symbol:     p.Symbol,
			From:       p.From,
			To:         p.To,
			Resolution: p.Resolution,
		})
		if err != nil {
			return nil, err
		}
		closes, err := c.Float64s("close")
		if err != nil {
			return nil, fmt.Errorf("extract closes: %w", err)
		}
		returns, err = finmath.LogReturns(closes, 1)
		if err != nil {
			return nil, fmt.Errorf("derive returns: %w", err)
		}
	}

	key := uc.cacheKey(p, returns)
	if payload, err := uc.cache.Get(ctx, key); err == nil {
		var res permtest.Result
		if err := json.Unmarshal([]byte(payload), &res); err == nil {
			return &res, nil
		}
		_ = uc.cache.Delete(ctx, key)
	}

	dt := stochastic.Horizon{Resolution: p.Resolution}.Dt()
	start := time.Now()
	res, err := permtest.Run(permtest.Config{
		Returns:   returns,
		Statistic: stat,
		N:         p.N,
		Mode:      p.Mode,
		Tail:      p.Tail,
		Seed:      p.Seed,
		Dt:        dt,
	})
	if err != nil {
		// Run only fails on config validation, so the caller is at fault.
		uc.metrics.RecordError("permtest")
		return nil, fmt.Errorf("%w: run test: %w", ErrInvalidParams, err)
	}
	uc.metrics.RecordTest(string(res.Mode), res.N, time.Since(start).Seconds())

	if payload, err := json.Marshal(res); err == nil {
		_ = uc.cache.Set(ctx, key, string(payload), uc.ttl)
	}
	return res, nil
}

// cacheKey fingerprints the full test input, including the return
// sequence, so distinct inputs can never collide on scalar parameters.
func (uc *SignificanceUseCase) cacheKey(p RunTestParams, returns []float64) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, r := range returns {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(r))
		h.Write(buf[:])
	}
	return fmt.Sprintf("permtest:%s:%d:%s:%s:%d:%s:%x",
		p.Statistic, p.N, p.Mode, p.Tail, p.Seed, p.Resolution, h.Sum64())
}
