package repository

import (
	"context"
	"time"

	"QuantKit/internal/domain/models"
	"QuantKit/internal/schema"
)

// BarStore provides read-only access to stored bars for adapters.
type BarStore interface {
	GetBars(ctx context.Context, symbol string, from, to time.Time, resolution schema.Resolution) ([]models.Bar, error)
	Health(ctx context.Context) error
}

// Metrics records operational counters for fetches, resamples, and test
// runs.
type Metrics interface {
	RecordFetch(source, symbol string, rows int, seconds float64)
	RecordResample(from, to string)
	RecordTest(mode string, resamples int, seconds float64)
	RecordError(kind string)
}
