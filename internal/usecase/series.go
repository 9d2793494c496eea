package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"QuantKit/internal/adapter"
	"QuantKit/internal/container"
	domrepo "QuantKit/internal/domain/repository"
	"QuantKit/internal/schema"
	"QuantKit/pkg/cache"
	"QuantKit/pkg/util"
)

// SeriesUseCase provides business logic for retrieving bar series. Fetches
// go through the cache in wire form; every payload is re-validated against
// the registry on the way out, so a stale or tampered cache entry can
// never surface as an invalid container.
type SeriesUseCase struct {
	store   domrepo.BarStore
	reg     *schema.Registry
	cache   cache.Service
	metrics domrepo.Metrics
	ttl     time.Duration
}

func NewSeriesUseCase(store domrepo.BarStore, reg *schema.Registry, c cache.Service, m domrepo.Metrics, ttl time.Duration) *SeriesUseCase {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SeriesUseCase{store: store, reg: reg, cache: c, metrics: m, ttl: ttl}
}

type GetSeriesParams struct {
	Symbol     string
	From       time.Time
	To         time.Time
	Resolution schema.Resolution
	// ResampleTo, when set, coarsens the fetched series before it is
	// returned. Must be coarser than (or equal to) Resolution.
	ResampleTo schema.Resolution
	Limit      int
}

func (uc *SeriesUseCase) GetSeries(ctx context.Context, p GetSeriesParams) (*container.Container, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("%w: from must be <= to", ErrInvalidParams)
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}
	// Canonical bucket-aligned bounds keep cache keys stable across
	// equivalent requests.
	p.From, p.To = util.AlignFromTo(p.From, p.To, string(p.Resolution))

	c, err := uc.fetch(ctx, p)
	if err != nil {
		return nil, err
	}

	if p.ResampleTo != "" && p.ResampleTo != p.Resolution {
		rc, err := c.Resample(p.ResampleTo, container.OHLCVRules())
		if err != nil {
			uc.metrics.RecordError("resample")
			return nil, fmt.Errorf("%w: resample series: %w", ErrInvalidParams, err)
		}
		uc.metrics.RecordResample(string(p.Resolution), string(p.ResampleTo))
		c = rc
	}

	if c.Len() > p.Limit {
		ts := c.Timestamps()
		c = c.Slice(ts[0], ts[p.Limit-1])
	}
	return c, nil
}

// fetch returns the cached container for the range, loading and caching
// it on a miss.
func (uc *SeriesUseCase) fetch(ctx context.Context, p GetSeriesParams) (*container.Container, error) {
	key := fmt.Sprintf("series:%s:%s:%d:%d", p.Symbol, p.Resolution, p.From.Unix(), p.To.Unix())

	if payload, err := uc.cache.Get(ctx, key); err == nil {
		if c, err := container.Decode([]byte(payload), uc.reg); err == nil {
			return c, nil
		}
		// Undecodable entry: drop it and fall through to a fresh fetch.
		_ = uc.cache.Delete(ctx, key)
	}

	src := adapter.NewClickHouseBars(uc.store, uc.reg, adapter.BarRange{
		Symbol:     p.Symbol,
		From:       p.From,
		To:         p.To,
		Resolution: p.Resolution,
	})
	start := time.Now()
	c, err := src.Fetch(ctx)
	if err != nil {
		uc.metrics.RecordError("fetch")
		return nil, fmt.Errorf("fetch series: %w", err)
	}
	uc.metrics.RecordFetch("clickhouse", p.Symbol, c.Len(), time.Since(start).Seconds())

	if payload, err := json.Marshal(c); err == nil {
		_ = uc.cache.Set(ctx, key, string(payload), uc.ttl)
	}
	return c, nil
}
