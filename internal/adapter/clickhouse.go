package adapter

import (
	"context"
	"fmt"
	"time"

	"QuantKit/internal/container"
	domrepo "QuantKit/internal/domain/repository"
	"QuantKit/internal/schema"
)

// BarRange is the source descriptor for bar-oriented adapters.
type BarRange struct {
	Symbol     string
	From       time.Time
	To         time.Time
	Resolution schema.Resolution
}

func (d BarRange) validate() error {
	if d.Symbol == "" {
		return fmt.Errorf("symbol required")
	}
	if d.From.After(d.To) {
		return fmt.Errorf("from %s after to %s", d.From.Format(time.RFC3339), d.To.Format(time.RFC3339))
	}
	if d.Resolution != schema.Daily && d.Resolution != schema.Intraday {
		return fmt.Errorf("bar adapters serve daily or intraday, got %q", d.Resolution)
	}
	return nil
}

// ClickHouseBars fetches stored bars through a BarStore into a validated
// OHLCV container.
type ClickHouseBars struct {
	store domrepo.BarStore
	reg   *schema.Registry
	desc  BarRange
}

func NewClickHouseBars(store domrepo.BarStore, reg *schema.Registry, desc BarRange) *ClickHouseBars {
	return &ClickHouseBars{store: store, reg: reg, desc: desc}
}

func (a *ClickHouseBars) SchemaName() string {
	if a.desc.Resolution == schema.Intraday {
		return schema.IntradayOHLCV
	}
	return schema.DailyOHLCV
}

func (a *ClickHouseBars) Fetch(ctx context.Context) (*container.Container, error) {
	if err := a.desc.validate(); err != nil {
		return nil, wrap("clickhouse", err)
	}
	bars, err := a.store.GetBars(ctx, a.desc.Symbol, a.desc.From, a.desc.To, a.desc.Resolution)
	if err != nil {
		return nil, wrap("clickhouse", err)
	}
	c, err := barsContainer(a.reg, a.desc.Resolution, bars)
	if err != nil {
		return nil, wrap("clickhouse", err)
	}
	return c, nil
}
