package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"QuantKit/internal/container"
	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
	pkgkafka "QuantKit/pkg/kafka"
)

// KafkaTickReplay rebuilds a tick container from a recorded trade topic.
// It replays a closed time window, so it is a batch fetch over immutable
// history, not a live stream.
type KafkaTickReplay struct {
	reg    *schema.Registry
	reader *pkgkafka.Reader
	symbol string
	from   time.Time
	to     time.Time
}

func NewKafkaTickReplay(reg *schema.Registry, reader *pkgkafka.Reader, symbol string, from, to time.Time) *KafkaTickReplay {
	return &KafkaTickReplay{reg: reg, reader: reader, symbol: symbol, from: from, to: to}
}

func (a *KafkaTickReplay) SchemaName() string { return schema.TickTrades }

func (a *KafkaTickReplay) Fetch(ctx context.Context) (*container.Container, error) {
	if a.symbol == "" {
		return nil, wrap("kafka", fmt.Errorf("symbol required"))
	}
	values, err := a.reader.Replay(ctx, a.from, a.to)
	if err != nil {
		return nil, wrap("kafka", err)
	}

	var ticks []models.Tick
	for i, value := range values {
		var t models.Tick
		if err := json.Unmarshal(value, &t); err != nil {
			return nil, wrap("kafka", fmt.Errorf("message %d: %w", i, err))
		}
		if t.Symbol != a.symbol {
			continue
		}
		ticks = append(ticks, t)
	}

	c, err := ticksContainer(a.reg, ticks)
	if err != nil {
		return nil, wrap("kafka", err)
	}
	return c, nil
}
