package sampling

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panbanda/mut/internal/cache"
	"github.com/panbanda/mut/pkg/config"
	"github.com/panbanda/mut/pkg/dist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramFrequencies(t *testing.T) {
	mass := []float64{0.10, 0.15, 0.50, 0.25}

	r, err := Histogram(context.Background(), mass, Options{
		Rounds:    2_000_000,
		Workers:   4,
		Seed:      0xDEAFBEEF,
		Tolerance: 2e-3,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, r.Workers)
	require.Len(t, r.Counts, len(mass))
	var total uint64
	for b, c := range r.Counts {
		total += c
		assert.InDelta(t, mass[b], r.Observed[b], 2e-3, "bucket %d", b)
	}
	assert.Equal(t, uint64(2_000_000), total)
	assert.True(t, r.Pass)
	assert.True(t, r.Within(2e-3))
	assert.False(t, r.Within(0))
}

func TestHistogramReproducible(t *testing.T) {
	mass := []float64{3, 1, 0, 6}
	opts := Options{Rounds: 100_003, Workers: 3, Seed: 17, Batch: 1000}

	a, err := Histogram(context.Background(), mass, opts)
	require.NoError(t, err)
	b, err := Histogram(context.Background(), mass, opts)
	require.NoError(t, err)

	assert.Equal(t, a.Counts, b.Counts)
	assert.Zero(t, a.Counts[2], "empty bucket must never be drawn")
}

func TestHistogramMatchesSequentialShards(t *testing.T) {
	mass := []float64{1, 2, 3}
	r, err := Histogram(context.Background(), mass, Options{Rounds: 10, Workers: 3, Seed: 5})
	require.NoError(t, err)

	cdf := dist.MustGenerateCumulativeDistribution(mass)
	want := make([]uint64, 3)
	for i, rounds := range []int{4, 3, 3} {
		dist.NewSamplerFromCDF(cdf, 5+uint64(i)).Accumulate(want, rounds)
	}
	assert.Equal(t, want, r.Counts)
}

func TestHistogramWorkersCappedByRounds(t *testing.T) {
	r, err := Histogram(context.Background(), []float64{1}, Options{Rounds: 2, Workers: 16})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Workers)
	assert.Equal(t, []uint64{2}, r.Counts)
}

func TestHistogramRejectsTooManyWorkers(t *testing.T) {
	_, err := Histogram(context.Background(), []float64{1, 1}, Options{Rounds: 2_000_000, Workers: 2_000_000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be at most")

	r, err := Histogram(context.Background(), []float64{1, 1}, Options{Rounds: 4096, Workers: config.MaxWorkers})
	require.NoError(t, err)
	assert.Equal(t, config.MaxWorkers, r.Workers)
}

func TestHistogramProgress(t *testing.T) {
	var seen atomic.Int64
	_, err := Histogram(context.Background(), []float64{1, 1}, Options{
		Rounds:     50_000,
		Workers:    4,
		Batch:      999,
		OnProgress: func(n int) { seen.Add(int64(n)) },
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), seen.Load())
}

func TestHistogramCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Histogram(ctx, []float64{1, 1}, Options{Rounds: 1_000_000, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHistogramInvalid(t *testing.T) {
	_, err := Histogram(context.Background(), []float64{0, 0}, Options{Rounds: 10})
	assert.ErrorIs(t, err, dist.ErrZeroMass)

	_, err = Histogram(context.Background(), []float64{1}, Options{Rounds: 0})
	assert.Error(t, err)
}

func TestResultRender(t *testing.T) {
	r, err := Histogram(context.Background(), []float64{1, 3}, Options{
		Rounds: 1000, Workers: 1, Seed: 1, Tolerance: 0.5, Precision: 3,
	})
	require.NoError(t, err)

	var text bytes.Buffer
	require.NoError(t, r.RenderText(&text, false))
	assert.Contains(t, text.String(), "Sampling 1000 rounds")
	assert.Contains(t, text.String(), "0.250")
	assert.Contains(t, text.String(), "within tolerance 0.5")
	assert.Contains(t, text.String(), "seed 1, 1 workers, cdf "+r.Fingerprint)

	var md bytes.Buffer
	require.NoError(t, r.RenderMarkdown(&md))
	assert.Contains(t, md.String(), "| Bucket | Expected | Count | Observed | Deviation |")
	assert.Contains(t, md.String(), "**max deviation")
	assert.Contains(t, md.String(), "# Sampling 1000 rounds\n")
	assert.Contains(t, md.String(), "## Verdict\n")

	data, err := json.Marshal(r.RenderData())
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"expected":[0.25,0.75]`), string(data))
	assert.Contains(t, string(data), `"pass":true`)
}

func TestHistogramCache(t *testing.T) {
	c, err := cache.New(filepath.Join(t.TempDir(), "cache"), time.Hour, true)
	require.NoError(t, err)

	mass := []float64{1, 3}
	opts := Options{Rounds: 50_000, Workers: 2, Seed: 11, Tolerance: 0.02, Cache: c}

	first, err := Histogram(context.Background(), mass, opts)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	var progressed atomic.Int64
	opts.OnProgress = func(n int) { progressed.Add(int64(n)) }
	second, err := Histogram(context.Background(), mass, opts)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Counts, second.Counts)
	assert.Equal(t, first.MaxDeviation, second.MaxDeviation)
	assert.Equal(t, int64(50_000), progressed.Load())

	// A different worker count is a different histogram.
	opts.Workers = 1
	third, err := Histogram(context.Background(), mass, opts)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	var buf bytes.Buffer
	require.NoError(t, second.RenderText(&buf, false))
	assert.Contains(t, buf.String(), "[cached]")
}
