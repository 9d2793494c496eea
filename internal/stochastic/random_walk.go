package stochastic

import (
	"fmt"
	"math"

	"QuantKit/internal/container"
	"QuantKit/internal/schema"
)

// RandomWalk is a symmetric ±1 walk on the log price, each step scaled by
// Scale·√dt. Walking the log keeps prices positive.
type RandomWalk struct {
	Scale float64
	Start float64
}

func (m RandomWalk) Name() string { return "random_walk" }

func (m RandomWalk) validate() error {
	if m.Scale < 0 {
		return fmt.Errorf("%w: negative scale %v", ErrInvalidParameters, m.Scale)
	}
	if m.Start <= 0 {
		return fmt.Errorf("%w: start price must be positive, got %v", ErrInvalidParameters, m.Start)
	}
	return nil
}

// Generate produces a Steps+1 point price path, deterministic per seed.
func (m RandomWalk) Generate(reg *schema.Registry, h Horizon, seed int64) (*container.Container, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	if err := h.validate(); err != nil {
		return nil, err
	}

	rng := newRNG(seed)
	step := m.Scale * math.Sqrt(h.Dt())

	prices := make([]float64, h.Steps+1)
	prices[0] = m.Start
	logS := math.Log(m.Start)
	for i := 1; i <= h.Steps; i++ {
		if rng.Int63()&1 == 0 {
			logS += step
		} else {
			logS -= step
		}
		prices[i] = math.Exp(logS)
	}
	return pathContainer(reg, h, prices)
}
