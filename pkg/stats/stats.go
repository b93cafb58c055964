// Package stats provides descriptive statistics over numeric slices.
//
// Every function is generic over Number and accumulates in float64, so
// integer and floating point inputs share one code path.
package stats

import (
	"errors"
	"fmt"
	"math"
)

// Number is any integer or floating point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

var (
	// ErrEmpty is returned when a computation needs at least one value.
	ErrEmpty = errors.New("empty input")
	// ErrNonPositive is returned by GeometricMean for values <= 0.
	ErrNonPositive = errors.New("value must be positive")
	// ErrLengthMismatch is returned when paired slices differ in length.
	ErrLengthMismatch = errors.New("x and y lengths differ")
	// ErrTooFewPoints is returned when a regression has fewer than two points.
	ErrTooFewPoints = errors.New("at least two points required")
	// ErrDegenerate is returned when every x value is identical.
	ErrDegenerate = errors.New("x values are all equal")
)

// ArithmeticMean returns sum(values)/len(values).
func ArithmeticMean[T Number](values []T) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("arithmetic mean: %w", ErrEmpty)
	}
	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	return sum / float64(len(values)), nil
}

// GeometricMean returns the nth root of the product of values.
//
// The product is kept as a binary exponent plus a mantissa in [0.5, 1)
// so that long or large inputs never overflow or underflow.
func GeometricMean[T Number](values []T) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("geometric mean: %w", ErrEmpty)
	}

	var exponent int64
	mantissa := 1.0
	for i, v := range values {
		x := float64(v)
		if !(x > 0) {
			return 0, fmt.Errorf("geometric mean: values[%d] = %v: %w", i, x, ErrNonPositive)
		}
		frac, exp := math.Frexp(x)
		exponent += int64(exp)
		frac, exp = math.Frexp(mantissa * frac)
		exponent += int64(exp)
		mantissa = frac
	}

	n := float64(len(values))
	return math.Exp2(float64(exponent)/n) * math.Pow(mantissa, 1/n), nil
}

// HarmonicMean returns n / sum(1/x). A zero element is not rejected and
// yields 0 (or NaN when reciprocals of mixed sign cancel).
func HarmonicMean[T Number](values []T) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("harmonic mean: %w", ErrEmpty)
	}
	var sum float64
	for _, v := range values {
		sum += 1 / float64(v)
	}
	return float64(len(values)) / sum, nil
}

// Variance returns the population variance (divisor n) of values around
// mean. The caller computes mean, usually with ArithmeticMean.
func Variance[T Number](values []T, mean float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("variance: %w", ErrEmpty)
	}
	var sum float64
	for _, v := range values {
		d := float64(v) - mean
		sum += d * d
	}
	return sum / float64(len(values)), nil
}

// StandardDeviation returns the square root of variance. Negative input
// gives NaN.
func StandardDeviation(variance float64) float64 {
	return math.Sqrt(variance)
}

// Slope returns the ordinary least-squares slope of ys against xs:
//
//	(n*Sxy - Sx*Sy) / (n*Sxx - Sx*Sx)
//
// No intercept is fitted. xs must not all be equal; that case is detected
// directly since rounding can leave the denominator non-zero.
func Slope[T Number](xs, ys []T) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("slope: %d x values, %d y values: %w", len(xs), len(ys), ErrLengthMismatch)
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("slope: %w", ErrTooFewPoints)
	}
	if allEqual(xs) {
		return 0, fmt.Errorf("slope: %w", ErrDegenerate)
	}

	var sx, sy, sxy, sxx float64
	for i := range xs {
		x, y := float64(xs[i]), float64(ys[i])
		sx += x
		sy += y
		sxy += x * y
		sxx += x * x
	}

	n := float64(len(xs))
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, fmt.Errorf("slope: %w", ErrDegenerate)
	}
	return (n*sxy - sx*sy) / den, nil
}

func allEqual[T Number](values []T) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}
