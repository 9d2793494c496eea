package permtest

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"QuantKit/internal/stochastic"
)

// fixtureReturns draws a reproducible return sequence with a small
// positive drift.
func fixtureReturns(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.0004 + 0.01*rng.NormFloat64()
	}
	return out
}

func TestRunValidation(t *testing.T) {
	_, err := Run(Config{Returns: []float64{0.01}, N: 99})
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Run(Config{Returns: fixtureReturns(50, 1), N: 0})
	assert.ErrorIs(t, err, ErrInvalidResampleCount)

	_, err = Run(Config{Returns: fixtureReturns(50, 1), N: 99, Tail: Tail("sideways")})
	assert.Error(t, err)

	_, err = Run(Config{Returns: fixtureReturns(50, 1), N: 99, Mode: Mode("bootstrap")})
	assert.Error(t, err)
}

func TestRunPValueBounds(t *testing.T) {
	returns := fixtureReturns(252, 2)
	res, err := Run(Config{Returns: returns, N: 999, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, TwoSided, res.Tail)
	assert.Equal(t, 999, res.N)
	assert.Len(t, res.Null, 999)
	assert.True(t, sort.Float64sAreSorted(res.Null))

	// The +1 convention keeps p in [1/(N+1), 1].
	assert.GreaterOrEqual(t, res.PValue, 1.0/1000)
	assert.LessOrEqual(t, res.PValue, 1.0)
	assert.Equal(t, MeanReturn(returns), res.Observed)
}

func TestRunPValueCalibration(t *testing.T) {
	// When the observed sequence is itself drawn under the null, the
	// p-value should be approximately uniform over repeated independent
	// trials. The statistic must be order-sensitive so shuffling actually
	// changes it; the difference of half-means is the simplest such one.
	halfDiff := func(returns []float64) float64 {
		half := len(returns) / 2
		return MeanReturn(returns[half:]) - MeanReturn(returns[:half])
	}

	const trials = 400
	pvals := make([]float64, trials)
	for i := range pvals {
		rng := rand.New(rand.NewSource(int64(1000 + i)))
		returns := make([]float64, 64)
		for j := range returns {
			returns[j] = 0.01 * rng.NormFloat64()
		}
		res, err := Run(Config{
			Returns:   returns,
			Statistic: halfDiff,
			N:         99,
			Seed:      int64(i),
			Tail:      Greater,
		})
		require.NoError(t, err)
		pvals[i] = res.PValue
	}

	var sum float64
	for _, p := range pvals {
		sum += p
	}
	// With N=99 the p-values live on {1/100, ..., 1}, whose uniform mean
	// is 0.505.
	assert.InDelta(t, 0.505, sum/trials, 0.05)

	// Kolmogorov-Smirnov distance against the uniform CDF; the 1%
	// critical value for 400 samples is about 0.081.
	sort.Float64s(pvals)
	var dist float64
	for i, p := range pvals {
		if d := math.Abs(p - float64(i)/trials); d > dist {
			dist = d
		}
		if d := math.Abs(float64(i+1)/trials - p); d > dist {
			dist = d
		}
	}
	assert.Less(t, dist, 0.081)
}

func TestModelSamplerPropagatesDrawErrors(t *testing.T) {
	cfg := Config{Returns: fixtureReturns(32, 9), Mode: ModelBased}
	sampler, err := newSampler(cfg, 1.0/252)
	require.NoError(t, err)

	// A zero-length buffer makes the model refuse to draw; the error
	// must surface instead of leaving the buffer stale.
	err = sampler(rand.New(rand.NewSource(1)), nil)
	assert.ErrorIs(t, err, stochastic.ErrInvalidParameters)
}

func TestRunReproducible(t *testing.T) {
	returns := fixtureReturns(252, 3)
	cfg := Config{Returns: returns, Statistic: SharpeRatio, N: 499, Seed: 7, Tail: Greater}

	a, err := Run(cfg)
	require.NoError(t, err)
	b, err := Run(cfg)
	require.NoError(t, err)

	assert.Equal(t, a.PValue, b.PValue)
	assert.Equal(t, a.Null, b.Null)
}

func TestRunWorkerCountIndependent(t *testing.T) {
	returns := fixtureReturns(128, 4)
	base := Config{Returns: returns, N: 299, Seed: 11}

	var results []*Result
	for _, workers := range []int{1, 2, 7, 32} {
		cfg := base
		cfg.Workers = workers
		res, err := Run(cfg)
		require.NoError(t, err)
		results = append(results, res)
	}
	for _, res := range results[1:] {
		assert.Equal(t, results[0].PValue, res.PValue)
		assert.Equal(t, results[0].Null, res.Null)
	}
}

func TestRunShufflePreservesValues(t *testing.T) {
	// With a count statistic every shuffle is identical to the observed
	// sequence, so the null is degenerate at the observed value.
	countPositive := func(returns []float64) float64 {
		var n float64
		for _, r := range returns {
			if r > 0 {
				n++
			}
		}
		return n
	}

	returns := fixtureReturns(64, 5)
	res, err := Run(Config{Returns: returns, Statistic: countPositive, N: 199, Seed: 1, Tail: Greater})
	require.NoError(t, err)

	for _, v := range res.Null {
		assert.Equal(t, res.Observed, v)
	}
	assert.Equal(t, 1.0, res.PValue)
}

func TestRunModelBased(t *testing.T) {
	returns := fixtureReturns(252, 6)
	cfg := Config{
		Returns: returns,
		N:       199,
		Mode:    ModelBased,
		Seed:    13,
		Dt:      1.0 / 252,
	}

	a, err := Run(cfg)
	require.NoError(t, err)
	b, err := Run(cfg)
	require.NoError(t, err)
	assert.Equal(t, a.Null, b.Null)

	// Model draws are fresh values, not permutations of the input.
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)
	match := 0
	for _, v := range a.Null {
		i := sort.SearchFloat64s(sorted, v)
		if i < len(sorted) && sorted[i] == v {
			match++
		}
	}
	assert.Zero(t, match)
}

func TestTwoSidedRelation(t *testing.T) {
	returns := fixtureReturns(252, 8)
	run := func(tail Tail) *Result {
		res, err := Run(Config{Returns: returns, N: 999, Seed: 21, Tail: tail})
		require.NoError(t, err)
		return res
	}
	pg := run(Greater).PValue
	pl := run(Less).PValue
	pt := run(TwoSided).PValue

	want := 2 * math.Min(pg, pl)
	if want > 1 {
		want = 1
	}
	assert.Equal(t, want, pt)
}

func TestStatistics(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02}

	assert.InDelta(t, 0.005, MeanReturn(returns), 1e-12)
	assert.InDelta(t, 5.0/3.0, ProfitFactor(returns), 1e-12)
	assert.Equal(t, math.Inf(1), ProfitFactor([]float64{0.01, 0.02}))
	assert.Equal(t, 1.0, ProfitFactor([]float64{0, 0}))
	assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01}))
	assert.Greater(t, SharpeRatio(returns), 0.0)
}

func TestByName(t *testing.T) {
	for _, name := range []string{"mean", "mean_return", "sharpe", "sharpe_ratio", "profit_factor"} {
		stat, ok := ByName(name)
		assert.True(t, ok, name)
		assert.NotNil(t, stat, name)
	}
	_, ok := ByName("kurtosis")
	assert.False(t, ok)
}
