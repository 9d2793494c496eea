package usecase

import (
	"context"
	"fmt"
	"time"

	"QuantKit/internal/adapter"
	"QuantKit/internal/container"
	domrepo "QuantKit/internal/domain/repository"
	"QuantKit/internal/schema"
	pkgkafka "QuantKit/pkg/kafka"
)

// TicksUseCase replays recorded tick windows from the trade topic.
type TicksUseCase struct {
	reg     *schema.Registry
	reader  *pkgkafka.Reader
	metrics domrepo.Metrics
}

func NewTicksUseCase(reg *schema.Registry, reader *pkgkafka.Reader, m domrepo.Metrics) *TicksUseCase {
	return &TicksUseCase{reg: reg, reader: reader, metrics: m}
}

type ReplayTicksParams struct {
	Symbol string
	From   time.Time
	To     time.Time
	// ResampleTo aggregates the replayed ticks when set to a coarser
	// resolution.
	ResampleTo schema.Resolution
}

func (uc *TicksUseCase) ReplayTicks(ctx context.Context, p ReplayTicksParams) (*container.Container, error) {
	if uc.reader == nil {
		return nil, fmt.Errorf("tick replay not configured")
	}
	if p.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol required", ErrInvalidParams)
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("%w: from must be <= to", ErrInvalidParams)
	}

	src := adapter.NewKafkaTickReplay(uc.reg, uc.reader, p.Symbol, p.From, p.To)
	start := time.Now()
	c, err := src.Fetch(ctx)
	if err != nil {
		uc.metrics.RecordError("replay")
		return nil, fmt.Errorf("replay ticks: %w", err)
	}
	uc.metrics.RecordFetch("kafka", p.Symbol, c.Len(), time.Since(start).Seconds())

	if p.ResampleTo != "" && p.ResampleTo != schema.Tick {
		rc, err := c.Resample(p.ResampleTo, container.TickPriceRules())
		if err != nil {
			uc.metrics.RecordError("resample")
			return nil, fmt.Errorf("resample ticks: %w", err)
		}
		uc.metrics.RecordResample(string(schema.Tick), string(p.ResampleTo))
		c = rc
	}
	return c, nil
}
