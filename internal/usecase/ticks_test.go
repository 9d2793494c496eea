package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgkafka "QuantKit/pkg/kafka"
)

func TestReplayTicksNotConfigured(t *testing.T) {
	uc := NewTicksUseCase(newTestRegistry(t), nil, newSpyMetrics())
	_, err := uc.ReplayTicks(context.Background(), ReplayTicksParams{
		Symbol: "AAPL",
		From:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorContains(t, err, "not configured")
}

func TestReplayTicksValidation(t *testing.T) {
	// Connections open lazily, so a reader with unreachable brokers still
	// exercises the parameter checks.
	reader, err := pkgkafka.NewReader(
		pkgkafka.WithBrokers([]string{"localhost:0"}),
		pkgkafka.WithTopic("trades"),
	)
	require.NoError(t, err)
	uc := NewTicksUseCase(newTestRegistry(t), reader, newSpyMetrics())

	_, err = uc.ReplayTicks(context.Background(), ReplayTicksParams{})
	assert.ErrorContains(t, err, "symbol required")

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	_, err = uc.ReplayTicks(context.Background(), ReplayTicksParams{
		Symbol: "AAPL",
		From:   from,
		To:     from.AddDate(0, 0, -1),
	})
	assert.ErrorContains(t, err, "from must be <= to")
}
