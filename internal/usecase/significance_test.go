package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantKit/internal/finmath"
	"QuantKit/internal/permtest"
	"QuantKit/internal/schema"
	"QuantKit/pkg/cache"
)

func newSignificanceUseCase(t *testing.T, store *fakeBarStore, metrics *spyMetrics) *SignificanceUseCase {
	t.Helper()
	series := NewSeriesUseCase(store, newTestRegistry(t), cache.NewMemoryCache(), metrics, time.Minute)
	return NewSignificanceUseCase(series, cache.NewMemoryCache(), metrics, time.Minute)
}

func testReturns(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.0005 + 0.01*rng.NormFloat64()
	}
	return out
}

func TestRunTestDirectReturns(t *testing.T) {
	metrics := newSpyMetrics()
	uc := newSignificanceUseCase(t, &fakeBarStore{}, metrics)

	p := RunTestParams{
		Returns:   testReturns(252, 1),
		Statistic: "mean",
		N:         499,
		Seed:      42,
	}
	res, err := uc.RunTest(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 499, res.N)
	assert.GreaterOrEqual(t, res.PValue, 1.0/500)
	assert.LessOrEqual(t, res.PValue, 1.0)
	assert.Equal(t, 1, metrics.tests)

	// Identical input is served from cache, not re-run.
	again, err := uc.RunTest(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, res.PValue, again.PValue)
	assert.Equal(t, res.Null, again.Null)
	assert.Equal(t, 1, metrics.tests)

	// A different return sequence with the same scalars gets its own key.
	p.Returns = testReturns(252, 2)
	other, err := uc.RunTest(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.tests)
	assert.NotEqual(t, res.Observed, other.Observed)
}

func TestRunTestUnknownStatistic(t *testing.T) {
	uc := newSignificanceUseCase(t, &fakeBarStore{}, newSpyMetrics())
	_, err := uc.RunTest(context.Background(), RunTestParams{
		Returns:   testReturns(50, 1),
		Statistic: "kurtosis",
		N:         99,
	})
	assert.ErrorContains(t, err, "unknown statistic")
}

func TestRunTestRequiresInput(t *testing.T) {
	uc := newSignificanceUseCase(t, &fakeBarStore{}, newSpyMetrics())
	_, err := uc.RunTest(context.Background(), RunTestParams{Statistic: "mean", N: 99})
	assert.ErrorContains(t, err, "either returns or symbol")
}

func TestRunTestDerivesReturnsFromSeries(t *testing.T) {
	store := &fakeBarStore{bars: dailyBars(60)}
	uc := newSignificanceUseCase(t, store, newSpyMetrics())

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res, err := uc.RunTest(context.Background(), RunTestParams{
		Symbol:     "AAPL",
		From:       from,
		To:         from.AddDate(0, 0, 59),
		Resolution: schema.Daily,
		Statistic:  "sharpe",
		N:          199,
		Seed:       7,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)

	// The observed statistic matches one computed from the stored closes.
	closes := make([]float64, 60)
	for i, b := range dailyBars(60) {
		closes[i] = b.Close
	}
	returns, err := finmath.LogReturns(closes, 1)
	require.NoError(t, err)
	assert.Equal(t, permtest.SharpeRatio(returns), res.Observed)
}

func TestRunTestPropagatesEngineErrors(t *testing.T) {
	metrics := newSpyMetrics()
	uc := newSignificanceUseCase(t, &fakeBarStore{}, metrics)

	_, err := uc.RunTest(context.Background(), RunTestParams{
		Returns:   []float64{0.01},
		Statistic: "mean",
		N:         99,
	})
	assert.ErrorIs(t, err, permtest.ErrInsufficientData)
	assert.Equal(t, 1, metrics.errors["permtest"])
}
