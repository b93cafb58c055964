// Package dist builds discrete cumulative distributions from probability
// mass vectors and maps uniform draws in [0,1] back to bucket indices.
package dist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/mut/pkg/stats"
)

var (
	// ErrEmptyMass is returned when the mass vector has no elements.
	ErrEmptyMass = errors.New("mass vector is empty")
	// ErrNegativeMass is returned for a negative or NaN mass element.
	ErrNegativeMass = errors.New("mass must be non-negative")
	// ErrZeroMass is returned when the masses do not sum to a positive finite total.
	ErrZeroMass = errors.New("total mass must be positive and finite")
	// ErrEmptyCDF is returned when searching an empty distribution.
	ErrEmptyCDF = errors.New("cumulative distribution is empty")
	// ErrMalformedCDF is returned when the first element is not 0.
	ErrMalformedCDF = errors.New("cumulative distribution must start at 0")
	// ErrValueOutOfRange is returned for a search value outside [0,1].
	ErrValueOutOfRange = errors.New("value must be within [0,1]")
)

// CDF is a lower-cumulative distribution: element i is the probability
// mass of every bucket before i, so bucket i covers [cdf[i], cdf[i+1])
// with an implicit cdf[len] of 1.
type CDF []float64

// GenerateCumulativeDistribution normalises mass and returns its CDF.
// mass need not sum to 1.
func GenerateCumulativeDistribution[T stats.Number](mass []T) (CDF, error) {
	if len(mass) == 0 {
		return nil, ErrEmptyMass
	}

	var total float64
	for i, m := range mass {
		v := float64(m)
		if !(v >= 0) {
			return nil, fmt.Errorf("mass[%d] = %v: %w", i, v, ErrNegativeMass)
		}
		total += v
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("total %v: %w", total, ErrZeroMass)
	}

	cdf := make(CDF, len(mass))
	var running float64
	for i, m := range mass {
		cdf[i] = running / total
		running += float64(m)
	}
	return cdf, nil
}

// MustGenerateCumulativeDistribution is like GenerateCumulativeDistribution
// but panics on invalid mass.
func MustGenerateCumulativeDistribution[T stats.Number](mass []T) CDF {
	cdf, err := GenerateCumulativeDistribution(mass)
	if err != nil {
		panic("dist: " + err.Error())
	}
	return cdf
}

// SearchCumulativeDistribution returns the bucket of cdf containing value.
//
// cdf must be non-decreasing; that is not re-checked so the call stays
// O(log n). Use CDF.Search to skip validation entirely.
func SearchCumulativeDistribution(cdf []float64, value float64) (int, error) {
	if len(cdf) == 0 {
		return 0, ErrEmptyCDF
	}
	if cdf[0] != 0 {
		return 0, fmt.Errorf("cdf[0] = %v: %w", cdf[0], ErrMalformedCDF)
	}
	if !(value >= 0 && value <= 1) {
		return 0, fmt.Errorf("value %v: %w", value, ErrValueOutOfRange)
	}
	return CDF(cdf).Search(value), nil
}

// Search returns the largest index i with c[i] <= value. A value on a
// boundary belongs to the bucket the boundary opens, so buckets of zero
// mass are never returned. value 1 maps to the last bucket with positive
// mass.
//
// Search does no validation and panics on an empty CDF.
func (c CDF) Search(value float64) int {
	i := c.search(value)
	// Only reachable for value >= 1: step back over trailing empty buckets.
	for hi := 1.0; i > 0 && c[i] >= hi; i-- {
		hi = c[i]
	}
	return i
}

func (c CDF) search(value float64) int {
	bot, top := 0, len(c)
	for {
		if top <= bot {
			panic(fmt.Sprintf("dist: empty search range [%d,%d)", bot, top))
		}
		mid := bot + (top-bot)/2
		if top-bot == 1 {
			return mid
		}
		// mid > bot here, so either branch narrows the range.
		if c[mid] <= value {
			bot = mid
		} else {
			top = mid
		}
	}
}

// Len returns the number of buckets.
func (c CDF) Len() int {
	return len(c)
}

// Probabilities returns the normalised mass of each bucket.
func (c CDF) Probabilities() []float64 {
	p := make([]float64, len(c))
	for i := range c {
		next := 1.0
		if i+1 < len(c) {
			next = c[i+1]
		}
		p[i] = next - c[i]
	}
	return p
}

// Bounds returns the half-open interval [lo, hi) covered by bucket i.
func (c CDF) Bounds(i int) (lo, hi float64) {
	lo, hi = c[i], 1.0
	if i+1 < len(c) {
		hi = c[i+1]
	}
	return lo, hi
}

// Fingerprint hashes the exact float bits of cdf. Two CDFs built from the
// same mass vector always share a fingerprint.
func Fingerprint(cdf []float64) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range cdf {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
