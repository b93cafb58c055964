// Package sampling runs large sampling experiments against a discrete
// distribution and compares observed bucket frequencies with the
// expected probabilities.
package sampling

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"

	"github.com/panbanda/mut/internal/cache"
	"github.com/panbanda/mut/internal/output"
	"github.com/panbanda/mut/pkg/config"
	"github.com/panbanda/mut/pkg/dist"
	"github.com/sourcegraph/conc/pool"
)

// DefaultBatch is the number of draws between cancellation checks.
const DefaultBatch = 1 << 16

// ProgressFunc is called after each finished batch with its size.
type ProgressFunc func(n int)

// Options configures a Histogram run.
type Options struct {
	Rounds    int
	Workers   int // <= 0 means NumCPU, at most config.MaxWorkers
	Seed      uint64
	Batch     int // <= 0 means DefaultBatch
	Tolerance float64
	Precision int // digits after the point, <= 0 means 6

	OnProgress ProgressFunc

	// Cache, when set, is consulted before drawing and filled after.
	Cache HistogramCache
}

// HistogramCache persists merged histograms between runs.
type HistogramCache interface {
	Counts(key cache.RunKey) ([]uint64, bool)
	StoreCounts(key cache.RunKey, counts []uint64) error
}

// Result is the merged outcome of a Histogram run.
type Result struct {
	Rounds       int       `json:"rounds" yaml:"rounds"`
	Workers      int       `json:"workers" yaml:"workers"`
	Seed         uint64    `json:"seed" yaml:"seed"`
	Fingerprint  string    `json:"fingerprint" yaml:"fingerprint"`
	Expected     []float64 `json:"expected" yaml:"expected"`
	Counts       []uint64  `json:"counts" yaml:"counts"`
	Observed     []float64 `json:"observed" yaml:"observed"`
	Deviation    []float64 `json:"deviation" yaml:"deviation"`
	MaxDeviation float64   `json:"max_deviation" yaml:"max_deviation"`
	Tolerance    float64   `json:"tolerance" yaml:"tolerance"`
	Pass         bool      `json:"pass" yaml:"pass"`
	Cached       bool      `json:"cached" yaml:"cached"`

	precision int
}

// Histogram draws opts.Rounds samples from mass, sharded across
// opts.Workers goroutines. Shard i uses seed opts.Seed+i, so a run is
// reproducible for a fixed seed and worker count.
func Histogram(ctx context.Context, mass []float64, opts Options) (*Result, error) {
	cdf, err := dist.GenerateCumulativeDistribution(mass)
	if err != nil {
		return nil, err
	}
	if opts.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive (got %d)", opts.Rounds)
	}
	if opts.Workers > config.MaxWorkers {
		return nil, fmt.Errorf("workers must be at most %d (got %d)", config.MaxWorkers, opts.Workers)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = min(runtime.NumCPU(), config.MaxWorkers)
	}
	workers = min(workers, opts.Rounds)
	batch := opts.Batch
	if batch <= 0 {
		batch = DefaultBatch
	}

	key := cache.RunKey{
		Fingerprint: dist.Fingerprint(cdf),
		Seed:        opts.Seed,
		Rounds:      opts.Rounds,
		Workers:     workers,
	}
	counts, cached := lookup(opts.Cache, key, cdf.Len())
	if cached {
		if opts.OnProgress != nil {
			opts.OnProgress(opts.Rounds)
		}
	} else {
		counts, err = draw(ctx, cdf, workers, batch, opts)
		if err != nil {
			return nil, err
		}
		if opts.Cache != nil {
			// A failed write only costs a rerun next time.
			_ = opts.Cache.StoreCounts(key, counts)
		}
	}

	r := &Result{
		Rounds:      opts.Rounds,
		Workers:     workers,
		Seed:        opts.Seed,
		Fingerprint: fmt.Sprintf("%016x", key.Fingerprint),
		Expected:    cdf.Probabilities(),
		Counts:      counts,
		Observed:    make([]float64, len(counts)),
		Deviation:   make([]float64, len(counts)),
		Tolerance:   opts.Tolerance,
		Cached:      cached,
		precision:   opts.Precision,
	}
	for b, c := range counts {
		r.Observed[b] = float64(c) / float64(opts.Rounds)
		r.Deviation[b] = math.Abs(r.Observed[b] - r.Expected[b])
		r.MaxDeviation = max(r.MaxDeviation, r.Deviation[b])
	}
	r.Pass = r.Within(opts.Tolerance)
	return r, nil
}

func lookup(c HistogramCache, key cache.RunKey, buckets int) ([]uint64, bool) {
	if c == nil {
		return nil, false
	}
	counts, ok := c.Counts(key)
	if !ok || len(counts) != buckets {
		return nil, false
	}
	return counts, true
}

// draw runs the shards and merges their histograms.
func draw(ctx context.Context, cdf dist.CDF, workers, batch int, opts Options) ([]uint64, error) {
	shards := make([][]uint64, workers)
	p := pool.New().WithContext(ctx).WithCancelOnError().WithMaxGoroutines(workers)
	for i := range workers {
		rounds := opts.Rounds / workers
		if i < opts.Rounds%workers {
			rounds++
		}
		p.Go(func(ctx context.Context) error {
			s := dist.NewSamplerFromCDF(cdf, opts.Seed+uint64(i))
			counts := make([]uint64, cdf.Len())
			for done := 0; done < rounds; {
				if err := ctx.Err(); err != nil {
					return err
				}
				n := min(batch, rounds-done)
				s.Accumulate(counts, n)
				done += n
				if opts.OnProgress != nil {
					opts.OnProgress(n)
				}
			}
			shards[i] = counts
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("sampling interrupted: %w", err)
	}

	counts := make([]uint64, cdf.Len())
	for _, shard := range shards {
		for b, c := range shard {
			counts[b] += c
		}
	}
	return counts, nil
}

// Within reports whether every bucket's observed frequency is within
// tolerance of its expected probability.
func (r *Result) Within(tolerance float64) bool {
	return r.MaxDeviation <= tolerance
}

func (r *Result) table() *output.Table {
	prec := r.precision
	if prec <= 0 {
		prec = 6
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', prec, 64) }

	rows := make([][]string, len(r.Counts))
	for b := range r.Counts {
		rows[b] = []string{
			strconv.Itoa(b),
			f(r.Expected[b]),
			strconv.FormatUint(r.Counts[b], 10),
			f(r.Observed[b]),
			f(r.Deviation[b]),
		}
	}
	footer := []string{"", "", "", "max", f(r.MaxDeviation)}
	return output.NewTable("Buckets", []string{"Bucket", "Expected", "Count", "Observed", "Deviation"}, rows, footer, r)
}

func (r *Result) verdict() string {
	if r.Pass {
		return fmt.Sprintf("max deviation %g within tolerance %g", r.MaxDeviation, r.Tolerance)
	}
	return fmt.Sprintf("max deviation %g exceeds tolerance %g", r.MaxDeviation, r.Tolerance)
}

// report lays out a run as its parameters, the bucket table and the verdict.
func (r *Result) report(verdict string) *output.Report {
	title := fmt.Sprintf("Sampling %d rounds", r.Rounds)
	if r.Cached {
		title += " [cached]"
	}
	run := fmt.Sprintf("seed %d, %d workers, cdf %s", r.Seed, r.Workers, r.Fingerprint)
	return &output.Report{
		Title: title,
		Parts: []output.Renderable{
			&output.Section{Title: "Run", Content: run},
			r.table(),
			&output.Section{Title: "Verdict", Content: verdict},
		},
		Data: r,
	}
}

func (r *Result) RenderData() any {
	return r
}

func (r *Result) RenderText(w io.Writer, colored bool) error {
	v := r.verdict()
	if colored {
		v = output.StatusColor(r.Pass, v)
	}
	return r.report(v).RenderText(w, colored)
}

func (r *Result) RenderMarkdown(w io.Writer) error {
	return r.report("**" + r.verdict() + "**").RenderMarkdown(w)
}
