package stochastic

import (
	"fmt"
	"math"
	"math/rand"

	"QuantKit/internal/container"
	"QuantKit/internal/schema"
)

// GBM is geometric Brownian motion: log-price increments are independent
// normals with mean (Drift - Volatility²/2)·dt and variance Volatility²·dt.
type GBM struct {
	Drift      float64
	Volatility float64
	Start      float64 // initial price S0
}

func (m GBM) Name() string { return "gbm" }

func (m GBM) validate() error {
	if m.Volatility < 0 {
		return fmt.Errorf("%w: negative volatility %v", ErrInvalidParameters, m.Volatility)
	}
	if m.Start <= 0 {
		return fmt.Errorf("%w: start price must be positive, got %v", ErrInvalidParameters, m.Start)
	}
	return nil
}

// Generate produces a Steps+1 point price path (initial price plus one
// point per increment), deterministic per seed.
func (m GBM) Generate(reg *schema.Registry, h Horizon, seed int64) (*container.Container, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	rng := newRNG(seed)
	dt := h.Dt()
	prices := make([]float64, h.Steps+1)
	prices[0] = m.Start
	logS := math.Log(m.Start)
	for i := 1; i <= h.Steps; i++ {
		logS += m.logIncrement(rng, dt)
		prices[i] = math.Exp(logS)
	}
	return pathContainer(reg, h, prices)
}

// logIncrement draws one log-price increment.
func (m GBM) logIncrement(rng *rand.Rand, dt float64) float64 {
	return (m.Drift-0.5*m.Volatility*m.Volatility)*dt + m.Volatility*math.Sqrt(dt)*rng.NormFloat64()
}

// SampleLogReturns draws n log-return increments at step size dt. The
// permutation engine uses this for model-based resampling without paying
// for container construction per resample.
func (m GBM) SampleLogReturns(rng *rand.Rand, n int, dt float64) ([]float64, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample size must be positive, got %d", ErrInvalidParameters, n)
	}
	if dt <= 0 {
		return nil, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidParameters, dt)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = m.logIncrement(rng, dt)
	}
	return out, nil
}

// FitGBM estimates drift and volatility from observed log returns at step
// size dt, inverting the increment law: σ² = var(r)/dt and
// µ = mean(r)/dt + σ²/2. Start is set to 1; callers generating paths from
// a fit should override it.
func FitGBM(logReturns []float64, dt float64) (GBM, error) {
	if len(logReturns) < 2 {
		return GBM{}, fmt.Errorf("%w: need at least 2 returns to fit, got %d", ErrInvalidParameters, len(logReturns))
	}
	if dt <= 0 {
		return GBM{}, fmt.Errorf("%w: dt must be positive, got %v", ErrInvalidParameters, dt)
	}

	var mean float64
	for _, r := range logReturns {
		mean += r
	}
	mean /= float64(len(logReturns))

	var variance float64
	for _, r := range logReturns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(logReturns) - 1)

	sigma2 := variance / dt
	return GBM{
		Drift:      mean/dt + 0.5*sigma2,
		Volatility: math.Sqrt(sigma2),
		Start:      1,
	}, nil
}
