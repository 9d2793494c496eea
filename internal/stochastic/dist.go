package stochastic

import (
	"math"
	"math/rand"
)

// Exponential draws an exponential variate with rate lam via the inverse
// transform X = -ln(1-U)/lam.
func Exponential(rng *rand.Rand, lam float64) float64 {
	u := rng.Float64()
	return -math.Log1p(-u) / lam
}

// Poisson draws a Poisson(lam) variate by Devroye's sequential search:
// walk the CDF until it passes a single uniform draw. One uniform per
// variate keeps the stream position deterministic.
func Poisson(rng *rand.Rand, lam float64) int {
	if lam <= 0 {
		return 0
	}
	u := rng.Float64()
	x := 0
	p := math.Exp(-lam)
	s := p
	for u > s {
		x++
		p = p * lam / float64(x)
		s += p
	}
	return x
}

// NormalCDF evaluates the standard normal CDF with the Abramowitz-Stegun
// polynomial approximation (absolute error < 7.5e-8).
func NormalCDF(z float64) float64 {
	zz := math.Abs(z)
	pdf := math.Exp(-0.5*zz*zz) / math.Sqrt(2*math.Pi)
	t := 1.0 / (1.0 + zz*0.2316419)
	poly := ((((1.330274429*t-1.821255978)*t+1.781477937)*t-0.356563782)*t + 0.319381530) * t
	if z > 0 {
		return 1.0 - pdf*poly
	}
	return pdf * poly
}
