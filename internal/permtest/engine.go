// Package permtest builds empirical null distributions by resampling
// return sequences and reports how extreme an observed statistic is
// against them.
package permtest

import (
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sort"
	"sync"

	"QuantKit/internal/stochastic"
)

var (
	ErrInsufficientData     = errors.New("permtest: insufficient data")
	ErrInvalidResampleCount = errors.New("permtest: invalid resample count")
)

// Mode selects how null sequences are produced.
type Mode string

const (
	// Shuffle resamples by uniform random permutation of the observed
	// sequence: the marginal value set is preserved, temporal order is
	// destroyed.
	Shuffle Mode = "shuffle"
	// ModelBased draws fresh sequences from a GBM fitted to the observed
	// returns.
	ModelBased Mode = "model-based"
)

// Tail selects the sidedness of the p-value.
type Tail string

const (
	Greater  Tail = "greater"
	Less     Tail = "less"
	TwoSided Tail = "two-sided"
)

// Config parameterizes one test run.
type Config struct {
	Returns   []float64
	Statistic Statistic
	N         int
	Mode      Mode
	Tail      Tail
	Seed      int64
	// Dt is the year fraction per observation, used only by model-based
	// fitting. Zero means daily (1/252).
	Dt float64
	// Workers caps the resampling pool. Zero means GOMAXPROCS.
	Workers int
}

// Result is the immutable outcome of one test invocation.
type Result struct {
	Observed float64   `json:"observed"`
	PValue   float64   `json:"p_value"`
	N        int       `json:"n"`
	Mode     Mode      `json:"mode"`
	Tail     Tail      `json:"tail"`
	Seed     int64     `json:"seed"`
	Null     []float64 `json:"null"` // sorted ascending
}

// Run executes the permutation test. The N resamples are distributed
// over a worker pool; each resample owns an RNG seeded from the master
// seed, so the p-value depends only on (config, seed), never on worker
// count or scheduling.
func Run(cfg Config) (*Result, error) {
	if len(cfg.Returns) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 observations, got %d", ErrInsufficientData, len(cfg.Returns))
	}
	if cfg.N < 1 {
		return nil, fmt.Errorf("%w: N must be >= 1, got %d", ErrInvalidResampleCount, cfg.N)
	}
	if cfg.Statistic == nil {
		cfg.Statistic = MeanReturn
	}
	switch cfg.Tail {
	case Greater, Less, TwoSided:
	case "":
		cfg.Tail = TwoSided
	default:
		return nil, fmt.Errorf("permtest: unknown tail %q", cfg.Tail)
	}
	dt := cfg.Dt
	if dt == 0 {
		dt = 1.0 / 252
	}

	sampler, err := newSampler(cfg, dt)
	if err != nil {
		return nil, err
	}

	observed := cfg.Statistic(cfg.Returns)

	// Pre-derive one seed per resample from the master stream.
	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.N)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.N {
		workers = cfg.N
	}

	null := make([]float64, cfg.N)
	jobs := make(chan int)
	var (
		wg      sync.WaitGroup
		errOnce sync.Once
		drawErr error
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			buf := make([]float64, len(cfg.Returns))
			for i := range jobs {
				rng := rand.New(rand.NewSource(seeds[i]))
				if err := sampler(rng, buf); err != nil {
					errOnce.Do(func() { drawErr = err })
					continue
				}
				null[i] = cfg.Statistic(buf)
			}
		}()
	}
	for i := 0; i < cfg.N; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	if drawErr != nil {
		return nil, fmt.Errorf("permtest: draw null sample: %w", drawErr)
	}

	res := &Result{
		Observed: observed,
		PValue:   pValue(observed, null, cfg.Tail),
		N:        cfg.N,
		Mode:     cfg.Mode,
		Tail:     cfg.Tail,
		Seed:     cfg.Seed,
		Null:     null,
	}
	sort.Float64s(res.Null)
	return res, nil
}

// sampler fills buf with one null resample using rng.
type samplerFunc func(rng *rand.Rand, buf []float64) error

func newSampler(cfg Config, dt float64) (samplerFunc, error) {
	switch cfg.Mode {
	case Shuffle, "":
		observed := cfg.Returns
		return func(rng *rand.Rand, buf []float64) error {
			copy(buf, observed)
			rng.Shuffle(len(buf), func(i, j int) {
				buf[i], buf[j] = buf[j], buf[i]
			})
			return nil
		}, nil
	case ModelBased:
		model, err := stochastic.FitGBM(cfg.Returns, dt)
		if err != nil {
			return nil, err
		}
		return func(rng *rand.Rand, buf []float64) error {
			draws, err := model.SampleLogReturns(rng, len(buf), dt)
			if err != nil {
				return err
			}
			copy(buf, draws)
			return nil
		}, nil
	default:
		return nil, fmt.Errorf("permtest: unknown mode %q", cfg.Mode)
	}
}

// pValue applies the +1 continuity convention: the observed statistic
// counts as one of the N+1 points, so finite resampling never reports
// exactly zero.
func pValue(observed float64, null []float64, tail Tail) float64 {
	var ge, le int
	for _, t := range null {
		if t >= observed {
			ge++
		}
		if t <= observed {
			le++
		}
	}
	n1 := float64(len(null) + 1)
	pg := float64(ge+1) / n1
	pl := float64(le+1) / n1
	switch tail {
	case Greater:
		return pg
	case Less:
		return pl
	default:
		p := 2 * pg
		if pl < pg {
			p = 2 * pl
		}
		if p > 1 {
			p = 1
		}
		return p
	}
}
