package stats

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the descriptive statistics of a sample.
type Summary struct {
	Count    int     `json:"count" yaml:"count"`
	Sum      float64 `json:"sum" yaml:"sum"`
	Min      float64 `json:"min" yaml:"min"`
	Max      float64 `json:"max" yaml:"max"`
	Mean     float64 `json:"mean" yaml:"mean"`
	Variance float64 `json:"variance" yaml:"variance"` // population
	StdDev   float64 `json:"std_dev" yaml:"std_dev"`
	// GeometricMean is only set when every value is positive.
	GeometricMean *float64 `json:"geometric_mean,omitempty" yaml:"geometric_mean,omitempty"`
	HarmonicMean  float64  `json:"harmonic_mean" yaml:"harmonic_mean"`
	Median        float64  `json:"median" yaml:"median"`
	P90           float64  `json:"p90" yaml:"p90"`
	P99           float64  `json:"p99" yaml:"p99"`
}

// Describe computes a Summary of values in one call.
func Describe[T Number](values []T) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, fmt.Errorf("describe: %w", ErrEmpty)
	}

	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}

	mean, err := ArithmeticMean(xs)
	if err != nil {
		return Summary{}, err
	}
	variance, err := Variance(xs, mean)
	if err != nil {
		return Summary{}, err
	}
	harmonic, err := HarmonicMean(xs)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Count:        len(xs),
		Sum:          floats.Sum(xs),
		Min:          floats.Min(xs),
		Max:          floats.Max(xs),
		Mean:         mean,
		Variance:     variance,
		StdDev:       StandardDeviation(variance),
		HarmonicMean: harmonic,
	}
	if s.Min > 0 {
		if g, err := GeometricMean(xs); err == nil {
			s.GeometricMean = &g
		}
	}

	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	s.P99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)

	return s, nil
}
