package dist

import (
	"math/rand/v2"
	"slices"

	"github.com/panbanda/mut/pkg/stats"
)

// Sampler draws bucket indices in proportion to a mass vector.
// A Sampler owns its random source and must not be shared between
// goroutines; the underlying CDF may be.
type Sampler struct {
	cdf CDF
	rng *rand.Rand
}

// NewSampler builds the CDF of mass and seeds a PCG source with seed.
func NewSampler[T stats.Number](mass []T, seed uint64) (*Sampler, error) {
	cdf, err := GenerateCumulativeDistribution(mass)
	if err != nil {
		return nil, err
	}
	return NewSamplerFromCDF(cdf, seed), nil
}

// NewSamplerFromCDF wraps an existing CDF. The CDF is shared, not copied.
func NewSamplerFromCDF(cdf CDF, seed uint64) *Sampler {
	return &Sampler{
		cdf: cdf,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns the bucket for one uniform draw.
func (s *Sampler) Next() int {
	return s.cdf.Search(s.rng.Float64())
}

// Counts tallies rounds draws per bucket.
func (s *Sampler) Counts(rounds int) []uint64 {
	counts := make([]uint64, len(s.cdf))
	s.Accumulate(counts, rounds)
	return counts
}

// Accumulate adds rounds draws to counts, which must have Len() entries.
func (s *Sampler) Accumulate(counts []uint64, rounds int) {
	for range rounds {
		counts[s.Next()]++
	}
}

// Len returns the number of buckets.
func (s *Sampler) Len() int {
	return len(s.cdf)
}

// CDF returns a copy of the sampler's distribution.
func (s *Sampler) CDF() CDF {
	return slices.Clone(s.cdf)
}

// Probabilities returns the normalised mass of each bucket.
func (s *Sampler) Probabilities() []float64 {
	return s.cdf.Probabilities()
}
