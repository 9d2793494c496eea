package stochastic

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantKit/internal/schema"
)

func newReg(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, schema.RegisterBuiltins(reg))
	return reg
}

func dailyHorizon(steps int) Horizon {
	return Horizon{
		Start:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Steps:      steps,
		Resolution: schema.Daily,
	}
}

func TestGBMDeterministic(t *testing.T) {
	reg := newReg(t)
	m := GBM{Drift: 0.05, Volatility: 0.2, Start: 100}
	h := dailyHorizon(252)

	a, err := m.Generate(reg, h, 42)
	require.NoError(t, err)
	b, err := m.Generate(reg, h, 42)
	require.NoError(t, err)

	assert.Equal(t, 253, a.Len())
	pa, _ := a.Float64s("price")
	pb, _ := b.Float64s("price")
	assert.Equal(t, pa, pb)
	assert.Equal(t, 100.0, pa[0])

	c, err := m.Generate(reg, h, 43)
	require.NoError(t, err)
	pc, _ := c.Float64s("price")
	assert.NotEqual(t, pa, pc)
}

func TestGBMTimestamps(t *testing.T) {
	reg := newReg(t)
	m := GBM{Drift: 0, Volatility: 0.1, Start: 50}
	h := Horizon{
		Start:      time.Date(2024, 3, 1, 9, 30, 17, 0, time.UTC),
		Steps:      3,
		Resolution: schema.Intraday,
	}

	c, err := m.Generate(reg, h, 1)
	require.NoError(t, err)

	ts := c.Timestamps()
	require.Len(t, ts, 4)
	// Start is aligned to the minute and steps advance by one minute.
	assert.True(t, ts[0].Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, time.Minute, ts[1].Sub(ts[0]))
}

func TestGBMInvalidParameters(t *testing.T) {
	reg := newReg(t)
	h := dailyHorizon(10)

	_, err := GBM{Volatility: -0.1, Start: 100}.Generate(reg, h, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = GBM{Volatility: 0.1, Start: 0}.Generate(reg, h, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = GBM{Volatility: 0.1, Start: 100}.Generate(reg, Horizon{Start: h.Start, Steps: 0, Resolution: schema.Daily}, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = GBM{Volatility: 0.1, Start: 100}.Generate(reg, Horizon{Start: h.Start, Steps: 5, Resolution: "hourly"}, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestFitGBMRecoversParameters(t *testing.T) {
	m := GBM{Drift: 0.08, Volatility: 0.25, Start: 100}
	dt := 1.0 / 252
	rng := rand.New(rand.NewSource(7))
	returns, err := m.SampleLogReturns(rng, 100_000, dt)
	require.NoError(t, err)

	fit, err := FitGBM(returns, dt)
	require.NoError(t, err)
	assert.InDelta(t, m.Volatility, fit.Volatility, 0.01)
	assert.InDelta(t, m.Drift, fit.Drift, 0.05)
}

func TestFitGBMErrors(t *testing.T) {
	_, err := FitGBM([]float64{0.01}, 1.0/252)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = FitGBM([]float64{0.01, 0.02}, 0)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestJumpDiffusionDeterministic(t *testing.T) {
	reg := newReg(t)
	m := JumpDiffusion{
		Drift: 0.05, Volatility: 0.2, Start: 100,
		JumpRate: 20, JumpMean: -0.02, JumpStd: 0.05,
	}
	h := dailyHorizon(252)

	a, err := m.Generate(reg, h, 42)
	require.NoError(t, err)
	b, err := m.Generate(reg, h, 42)
	require.NoError(t, err)

	pa, _ := a.Float64s("price")
	pb, _ := b.Float64s("price")
	assert.Equal(t, pa, pb)

	// Zero jump intensity reduces to pure diffusion.
	noJumps := JumpDiffusion{Drift: 0.05, Volatility: 0.2, Start: 100}
	c, err := noJumps.Generate(reg, h, 42)
	require.NoError(t, err)
	pc, _ := c.Float64s("price")
	for _, p := range pc {
		assert.Greater(t, p, 0.0)
	}
}

func TestJumpDiffusionInvalidParameters(t *testing.T) {
	reg := newReg(t)
	h := dailyHorizon(10)
	_, err := JumpDiffusion{Volatility: 0.1, Start: 100, JumpRate: -1}.Generate(reg, h, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)
	_, err = JumpDiffusion{Volatility: 0.1, Start: 100, JumpStd: -1}.Generate(reg, h, 1)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestRandomWalkPositivePrices(t *testing.T) {
	reg := newReg(t)
	m := RandomWalk{Scale: 2.5, Start: 0.01}
	h := dailyHorizon(1000)

	c, err := m.Generate(reg, h, 9)
	require.NoError(t, err)
	prices, _ := c.Float64s("price")
	for i, p := range prices {
		require.Greater(t, p, 0.0, "index %d", i)
	}

	b, err := m.Generate(reg, h, 9)
	require.NoError(t, err)
	pb, _ := b.Float64s("price")
	assert.Equal(t, prices, pb)
}

func TestTickPathCarriesSide(t *testing.T) {
	reg := newReg(t)
	m := GBM{Drift: 0, Volatility: 0.3, Start: 100}
	h := Horizon{
		Start:      time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Steps:      50,
		Resolution: schema.Tick,
	}

	c, err := m.Generate(reg, h, 5)
	require.NoError(t, err)

	prices, _ := c.Float64s("price")
	sides, err := c.Int64s(schema.SideField)
	require.NoError(t, err)
	require.Len(t, sides, 51)
	assert.Equal(t, int64(1), sides[0])
	for i := 1; i < len(sides); i++ {
		want := int64(1)
		if prices[i] < prices[i-1] {
			want = -1
		}
		assert.Equal(t, want, sides[i], "index %d", i)
	}
}

func TestHorizonDt(t *testing.T) {
	assert.InDelta(t, 1.0/252, Horizon{Resolution: schema.Daily}.Dt(), 1e-12)
	assert.InDelta(t, 1.0/(252*390), Horizon{Resolution: schema.Intraday}.Dt(), 1e-12)
	assert.InDelta(t, 1.0/(252*390*60), Horizon{Resolution: schema.Tick}.Dt(), 1e-15)
}

func TestPoisson(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	assert.Equal(t, 0, Poisson(rng, 0))
	assert.Equal(t, 0, Poisson(rng, -1))

	// Sample mean approaches lam.
	const lam = 3.5
	var sum int
	const n = 200_000
	for i := 0; i < n; i++ {
		sum += Poisson(rng, lam)
	}
	assert.InDelta(t, lam, float64(sum)/n, 0.05)

	// Same seed, same draws.
	a := rand.New(rand.NewSource(3))
	b := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		assert.Equal(t, Poisson(a, lam), Poisson(b, lam))
	}
}

func TestExponential(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	const lam = 2.0
	var sum float64
	const n = 200_000
	for i := 0; i < n; i++ {
		v := Exponential(rng, lam)
		require.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1/lam, sum/n, 0.01)
}

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{0, 0.5},
		{1.96, 0.975},
		{-1.96, 0.025},
		{3, 0.99865},
		{-3, 0.00135},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, NormalCDF(tt.z), 1e-4, "z=%v", tt.z)
	}
	// Symmetry.
	for _, z := range []float64{0.3, 1.1, 2.7} {
		assert.InDelta(t, 1.0, NormalCDF(z)+NormalCDF(-z), 1e-7)
	}
}
