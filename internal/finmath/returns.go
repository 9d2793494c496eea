// Package finmath provides the return calculations that turn price
// containers into the sequences the permutation test engine consumes.
package finmath

import (
	"errors"
	"fmt"
	"math"
)

var ErrBadSeries = errors.New("finmath: bad series")

// SimpleReturns computes R_t = S_t/S_{t-periods} - 1. The result has
// len(prices)-periods elements, aligned to the later timestamp.
func SimpleReturns(prices []float64, periods int) ([]float64, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: periods must be >= 1, got %d", ErrBadSeries, periods)
	}
	if len(prices) <= periods {
		return nil, fmt.Errorf("%w: need more than %d prices, got %d", ErrBadSeries, periods, len(prices))
	}
	out := make([]float64, len(prices)-periods)
	for i := range out {
		prev := prices[i]
		if prev == 0 {
			return nil, fmt.Errorf("%w: zero price at index %d", ErrBadSeries, i)
		}
		out[i] = prices[i+periods]/prev - 1
	}
	return out, nil
}

// LogReturns computes r_t = ln(S_t/S_{t-periods}). All prices must be
// positive. The result has len(prices)-periods elements.
func LogReturns(prices []float64, periods int) ([]float64, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: periods must be >= 1, got %d", ErrBadSeries, periods)
	}
	if len(prices) <= periods {
		return nil, fmt.Errorf("%w: need more than %d prices, got %d", ErrBadSeries, periods, len(prices))
	}
	for i, p := range prices {
		if p <= 0 {
			return nil, fmt.Errorf("%w: non-positive price %v at index %d", ErrBadSeries, p, i)
		}
	}
	out := make([]float64, len(prices)-periods)
	for i := range out {
		out[i] = math.Log(prices[i+periods] / prices[i])
	}
	return out, nil
}

// MultiPeriodSimpleReturns compounds single-period simple returns over a
// rolling window: R_t(τ) = Π(1+R) - 1.
func MultiPeriodSimpleReturns(returns []float64, periods int) ([]float64, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: periods must be >= 1, got %d", ErrBadSeries, periods)
	}
	if len(returns) < periods {
		return nil, fmt.Errorf("%w: need at least %d returns, got %d", ErrBadSeries, periods, len(returns))
	}
	out := make([]float64, len(returns)-periods+1)
	for i := range out {
		acc := 1.0
		for _, r := range returns[i : i+periods] {
			acc *= 1 + r
		}
		out[i] = acc - 1
	}
	return out, nil
}

// MultiPeriodLogReturns sums single-period log returns over a rolling
// window: r_t(τ) = Σ r.
func MultiPeriodLogReturns(returns []float64, periods int) ([]float64, error) {
	if periods < 1 {
		return nil, fmt.Errorf("%w: periods must be >= 1, got %d", ErrBadSeries, periods)
	}
	if len(returns) < periods {
		return nil, fmt.Errorf("%w: need at least %d returns, got %d", ErrBadSeries, periods, len(returns))
	}
	out := make([]float64, len(returns)-periods+1)
	for i := range out {
		var acc float64
		for _, r := range returns[i : i+periods] {
			acc += r
		}
		out[i] = acc
	}
	return out, nil
}
