// Package stochastic implements parametric price-path generators. A model
// is a pure function of (parameters, horizon, seed): the same inputs
// always produce bit-identical containers, which the test suite and the
// permutation engine rely on.
package stochastic

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"QuantKit/internal/container"
	"QuantKit/internal/schema"
)

var ErrInvalidParameters = errors.New("stochastic: invalid parameters")

// Horizon fixes the time axis of a generated path: Steps increments after
// Start, with step size and year-fraction dt implied by the resolution.
type Horizon struct {
	Start      time.Time
	Steps      int
	Resolution schema.Resolution
}

// Trading-calendar constants used to map resolutions onto annualized
// model time: 252 sessions of 390 minutes.
const (
	tradingDays        = 252
	minutesPerSession  = 390
	secondsPerSession  = minutesPerSession * 60
)

// Dt returns the year fraction of one step at the horizon's resolution.
func (h Horizon) Dt() float64 {
	switch h.Resolution {
	case schema.Tick:
		return 1.0 / float64(tradingDays*secondsPerSession)
	case schema.Intraday:
		return 1.0 / float64(tradingDays*minutesPerSession)
	default:
		return 1.0 / float64(tradingDays)
	}
}

// step returns the wall-clock width of one step.
func (h Horizon) step() time.Duration {
	switch h.Resolution {
	case schema.Tick:
		return time.Second
	case schema.Intraday:
		return time.Minute
	default:
		return 24 * time.Hour
	}
}

// validate rejects out-of-domain horizons.
func (h Horizon) validate() error {
	if h.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidParameters, h.Steps)
	}
	if !h.Resolution.Valid() {
		return fmt.Errorf("%w: unknown resolution %q", ErrInvalidParameters, h.Resolution)
	}
	if h.Start.IsZero() {
		return fmt.Errorf("%w: zero start time", ErrInvalidParameters)
	}
	return nil
}

// timestamps builds the Steps+1 aligned path timestamps (initial point
// plus one per increment).
func (h Horizon) timestamps() []time.Time {
	start := h.Start
	if h.Resolution == schema.Daily {
		start = start.UTC().Truncate(24 * time.Hour)
	} else {
		start = start.Truncate(h.step())
	}
	ts := make([]time.Time, h.Steps+1)
	for i := range ts {
		ts[i] = start.Add(time.Duration(i) * h.step())
	}
	return ts
}

// Model generates a synthetic price path as a schema-validated container.
type Model interface {
	Name() string
	Generate(reg *schema.Registry, h Horizon, seed int64) (*container.Container, error)
}

// newRNG returns the seeded deterministic source all models draw from.
func newRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// pathContainer wraps a generated price path in a container conforming to
// the synthetic price schema at the horizon's resolution. Tick schemas
// additionally carry the mandatory trade-side field, derived from the
// sign of each increment.
func pathContainer(reg *schema.Registry, h Horizon, prices []float64) (*container.Container, error) {
	if err := schema.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	s, err := reg.Resolve(schema.SyntheticPriceName(h.Resolution))
	if err != nil {
		return nil, err
	}

	cols := map[string]container.Column{"price": container.Float64Column(prices)}
	if h.Resolution == schema.Tick {
		sides := make([]int64, len(prices))
		sides[0] = 1
		for i := 1; i < len(prices); i++ {
			if prices[i] >= prices[i-1] {
				sides[i] = 1
			} else {
				sides[i] = -1
			}
		}
		cols[schema.SideField] = container.Int64Column(sides)
	}

	return container.New(s, h.timestamps(), cols)
}
