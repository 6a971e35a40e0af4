// Package sweep measures estimator accuracy over a grid of precisions and
// cardinalities.
package sweep

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	hll "github.com/rejitnatarajan/HLL"
)

// ErrNoWork is returned when the grid or the trial count is empty.
var ErrNoWork = errors.New("sweep: nothing to run")

// boundFactor is how many theoretical standard errors a mean relative
// error may reach before a result is out of bound.
const boundFactor = 3

// cancelCheckInterval is how many insertions a trial makes between
// context checks.
const cancelCheckInterval = 4096

// Options configures a sweep.
type Options struct {
	Precisions    []int
	Cardinalities []int
	Trials        int
	Workers       int          // <= 0 means runtime.NumCPU()
	Hash          hll.HashFunc // nil means hll.Murmur3
	Seed          uint32
	Logger        *slog.Logger // nil discards
}

// Result summarizes the trials of one (precision, cardinality) cell.
type Result struct {
	Precision    int
	Cardinality  int
	Trials       int
	MeanEstimate float64
	MeanRelError float64
	MaxRelError  float64
	StdError     float64 // theoretical 1.04 / sqrt(2^Precision)
}

// WithinBound reports whether the mean relative error is at most three
// theoretical standard errors.
func (r Result) WithinBound() bool {
	return r.MeanRelError <= boundFactor*r.StdError
}

type cell struct {
	precision   int
	cardinality int
}

// Run executes opts.Trials trials for every (precision, cardinality) pair.
// Trial t inserts the keys "t<t>-k0" .. "t<t>-k<n-1>" into a fresh estimator.
// Results are ordered by precision, then cardinality. Duplicate grid values
// are collapsed and precisions are clamped like [hll.New] does.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	cells := grid(opts.Precisions, opts.Cardinalities)
	if len(cells) == 0 || opts.Trials < 1 {
		return nil, ErrNoWork
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	estimatorOpts := []hll.Option{hll.WithSeed(opts.Seed)}
	if opts.Hash != nil {
		estimatorOpts = append(estimatorOpts, hll.WithHash(opts.Hash))
	}

	logger.Info("sweep started",
		"cells", len(cells), "trials", opts.Trials, "workers", workers)

	start := time.Now()

	// estimates[c][t] is written only by the goroutine running that trial.
	estimates := make([][]float64, len(cells))
	for i := range estimates {
		estimates[i] = make([]float64, opts.Trials)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

schedule:
	for ci, c := range cells {
		for t := range opts.Trials {
			if gctx.Err() != nil {
				break schedule
			}

			g.Go(func() error {
				est, err := trial(gctx, c, t, estimatorOpts)
				if err != nil {
					return err
				}

				estimates[ci][t] = est

				return nil
			})
		}
	}

	waitErr := g.Wait()

	// A cancelled parent context wins over whatever the workers saw.
	if err := ctx.Err(); err != nil {
		logger.Warn("sweep cancelled", "error", err)
		return nil, err
	}

	if waitErr != nil {
		return nil, waitErr
	}

	results := make([]Result, len(cells))
	for i, c := range cells {
		results[i] = summarize(c, estimates[i])

		logger.Debug("cell done",
			"precision", c.precision,
			"cardinality", c.cardinality,
			"mean_rel_error", results[i].MeanRelError)
	}

	logger.Info("sweep finished", "elapsed", time.Since(start))

	return results, nil
}

// grid returns the sorted, deduplicated cross product of precisions and
// cardinalities. Non-positive cardinalities are dropped.
func grid(precisions, cardinalities []int) []cell {
	ps := make([]int, 0, len(precisions))
	for _, p := range precisions {
		ps = append(ps, hll.ClampPrecision(p))
	}

	slices.Sort(ps)
	ps = slices.Compact(ps)

	ns := make([]int, 0, len(cardinalities))
	for _, n := range cardinalities {
		if n > 0 {
			ns = append(ns, n)
		}
	}

	slices.Sort(ns)
	ns = slices.Compact(ns)

	cells := make([]cell, 0, len(ps)*len(ns))
	for _, p := range ps {
		for _, n := range ns {
			cells = append(cells, cell{precision: p, cardinality: n})
		}
	}

	return cells
}

// trial inserts c.cardinality distinct keys for trial t and returns the
// resulting estimate.
func trial(ctx context.Context, c cell, t int, opts []hll.Option) (float64, error) {
	e := hll.New(c.precision, opts...)

	prefix := "t" + strconv.Itoa(t) + "-k"
	key := make([]byte, 0, len(prefix)+20)

	for i := range c.cardinality {
		if i%cancelCheckInterval == 0 && ctx.Err() != nil {
			return 0, ctx.Err()
		}

		key = append(key[:0], prefix...)
		key = strconv.AppendInt(key, int64(i), 10)
		e.Add(key)
	}

	return e.Estimate(), nil
}

func summarize(c cell, estimates []float64) Result {
	n := float64(c.cardinality)

	var sumEst, sumRel, maxRel float64
	for _, est := range estimates {
		rel := math.Abs(est-n) / n
		sumEst += est
		sumRel += rel
		maxRel = max(maxRel, rel)
	}

	trials := float64(len(estimates))

	return Result{
		Precision:    c.precision,
		Cardinality:  c.cardinality,
		Trials:       len(estimates),
		MeanEstimate: sumEst / trials,
		MeanRelError: sumRel / trials,
		MaxRelError:  maxRel,
		StdError:     hll.StandardErrorFor(c.precision),
	}
}
