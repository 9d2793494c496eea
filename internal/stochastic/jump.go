package stochastic

import (
	"fmt"
	"math"

	"QuantKit/internal/container"
	"QuantKit/internal/schema"
)

// JumpDiffusion is a Merton-style process: a GBM diffusion with
// Poisson-arrival jumps superimposed on the log price. Jump sizes are
// normal with mean JumpMean and standard deviation JumpStd; arrivals
// occur at rate JumpRate per year.
type JumpDiffusion struct {
	Drift      float64
	Volatility float64
	Start      float64
	JumpRate   float64
	JumpMean   float64
	JumpStd    float64
}

func (m JumpDiffusion) Name() string { return "jump_diffusion" }

func (m JumpDiffusion) validate() error {
	if m.Volatility < 0 {
		return fmt.Errorf("%w: negative volatility %v", ErrInvalidParameters, m.Volatility)
	}
	if m.Start <= 0 {
		return fmt.Errorf("%w: start price must be positive, got %v", ErrInvalidParameters, m.Start)
	}
	if m.JumpRate < 0 {
		return fmt.Errorf("%w: negative jump rate %v", ErrInvalidParameters, m.JumpRate)
	}
	if m.JumpStd < 0 {
		return fmt.Errorf("%w: negative jump stddev %v", ErrInvalidParameters, m.JumpStd)
	}
	return nil
}

// Generate produces a Steps+1 point price path, deterministic per seed.
// Each step draws the diffusion increment first, then the Poisson jump
// count, then the jump sizes, so the draw order is fixed.
func (m JumpDiffusion) Generate(reg *schema.Registry, h Horizon, seed int64) (*container.Container, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	diffusion := GBM{Drift: m.Drift, Volatility: m.Volatility, Start: m.Start}
	rng := newRNG(seed)
	dt := h.Dt()
	lam := m.JumpRate * dt

	prices := make([]float64, h.Steps+1)
	prices[0] = m.Start
	logS := math.Log(m.Start)
	for i := 1; i <= h.Steps; i++ {
		logS += diffusion.logIncrement(rng, dt)
		jumps := Poisson(rng, lam)
		for j := 0; j < jumps; j++ {
			logS += m.JumpMean + m.JumpStd*rng.NormFloat64()
		}
		prices[i] = math.Exp(logS)
	}
	return pathContainer(reg, h, prices)
}
