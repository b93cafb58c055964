package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestArithmeticMean(t *testing.T) {
	got, err := ArithmeticMean([]uint64{1, 2, 3, 1, 2, 3, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = ArithmeticMean([]float64{1, 2, 3, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)

	got, err = ArithmeticMean([]int8{-4, 4, 9})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	_, err = ArithmeticMean([]float64{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestGeometricMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"three integers", []float64{20, 30, 1000}, math.Pow(20*30*1000, 1/3.0)},
		{"two floats", []float64{2.0, 8.0}, 4.0},
		{"single value", []float64{7}, 7},
		{"fractions", []float64{0.25, 0.5, 0.125}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GeometricMean(tt.values)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 0.0001)
			assert.InDelta(t, stat.GeometricMean(tt.values, nil), got, 1e-9)
		})
	}
}

func TestGeometricMeanIntegers(t *testing.T) {
	got, err := GeometricMean([]uint64{20, 30, 1000})
	require.NoError(t, err)
	assert.InDelta(t, math.Pow(20*30*1000, 1/3.0), got, 0.0001)
}

func TestGeometricMeanNoOverflow(t *testing.T) {
	// The naive product of these overflows float64 after a few elements.
	values := make([]float64, 100)
	for i := range values {
		values[i] = 1e300
	}
	got, err := GeometricMean(values)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e300, got, 1e-9)

	for i := range values {
		values[i] = 1e-300
	}
	got, err = GeometricMean(values)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-300, got, 1e-9)
}

func TestGeometricMeanErrors(t *testing.T) {
	_, err := GeometricMean([]int{})
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = GeometricMean([]int{3, 0, 2})
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = GeometricMean([]float64{3, -1})
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = GeometricMean([]float64{math.NaN()})
	assert.ErrorIs(t, err, ErrNonPositive)
}

func TestHarmonicMean(t *testing.T) {
	got, err := HarmonicMean([]uint64{60, 30})
	require.NoError(t, err)
	assert.InDelta(t, 40.0, got, 0.0001)

	values := []float64{1, 2, 4}
	got, err = HarmonicMean(values)
	require.NoError(t, err)
	assert.InDelta(t, stat.HarmonicMean(values, nil), got, 1e-12)

	_, err = HarmonicMean([]int{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestHarmonicMeanZeroPropagates(t *testing.T) {
	got, err := HarmonicMean([]float64{5, 0, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
}

func TestVariance(t *testing.T) {
	values := []uint64{1, 2, 3, 1, 2, 3, 1, 2, 3}
	mean, err := ArithmeticMean(values)
	require.NoError(t, err)

	got, err := Variance(values, mean)
	require.NoError(t, err)
	assert.InDelta(t, 0.6666667, got, 0.000001)

	floatsIn := []float64{1, 2, 3, 1, 2, 3, 1, 2, 3}
	assert.InDelta(t, stat.PopVariance(floatsIn, nil), got, 1e-12)

	_, err = Variance([]float64{}, 0)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestStandardDeviation(t *testing.T) {
	values := []uint64{1, 2, 3, 1, 2, 3, 1, 2, 3}
	mean, err := ArithmeticMean(values)
	require.NoError(t, err)
	variance, err := Variance(values, mean)
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt(variance), StandardDeviation(variance), 0.000001)
	assert.Equal(t, 0.0, StandardDeviation(0))
	assert.True(t, math.IsNaN(StandardDeviation(-1)))
}

func TestSlope(t *testing.T) {
	xs := []float64{0, 1, 2, 3, 4, 5}

	tests := []struct {
		name string
		xs   []float64
		ys   []float64
		want float64
	}{
		{"unit slope", xs, []float64{1, 2, 3, 4, 5, 6}, 1.0},
		{"double slope", xs, []float64{0, 2, 4, 6, 8, 10}, 2.0},
		{"rotated points", []float64{3, 4, 5, 0, 1, 2}, []float64{4, 5, 6, 1, 2, 3}, 1.0},
		{"negative slope", xs, []float64{10, 8, 6, 4, 2, 0}, -2.0},
		{"flat", xs, []float64{3, 3, 3, 3, 3, 3}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slope(tt.xs, tt.ys)
			require.NoError(t, err)
			assert.Less(t, math.Abs(got-tt.want), 0.01)

			_, beta := stat.LinearRegression(tt.xs, tt.ys, nil, false)
			assert.InDelta(t, beta, got, 1e-9)
		})
	}
}

func TestSlopeRotationInvariant(t *testing.T) {
	xs := []float64{0.5, 1.7, 2.2, 3.9, 4.1, 5.6}
	ys := []float64{1.1, 1.9, 3.4, 3.8, 5.2, 6.3}
	base, err := Slope(xs, ys)
	require.NoError(t, err)

	for shift := 1; shift < len(xs); shift++ {
		rx := append(append([]float64{}, xs[shift:]...), xs[:shift]...)
		ry := append(append([]float64{}, ys[shift:]...), ys[:shift]...)
		got, err := Slope(rx, ry)
		require.NoError(t, err)
		assert.InDelta(t, base, got, 1e-9, "shift %d", shift)
	}
}

func TestSlopeErrors(t *testing.T) {
	_, err := Slope([]int{1, 2, 3}, []int{1, 2})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Slope([]int{1}, []int{1})
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = Slope([]int{2, 2, 2}, []int{1, 5, 9})
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestSlopeRepeatedFractionalX(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{"point seven", []float64{0.7, 0.7, 0.7, 0.7, 0.7}, []float64{0, 1, 2, 3, 4}},
		{"point three", []float64{0.3, 0.3, 0.3}, []float64{0, 1, 2}},
		{"three point three", []float64{3.3, 3.3, 3.3}, []float64{0, 1, 2}},
		{"point one", []float64{0.1, 0.1, 0.1}, []float64{5, 1, 2}},
		{"one point one", []float64{1.1, 1.1, 1.1, 1.1}, []float64{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Slope(tt.xs, tt.ys)
			assert.ErrorIs(t, err, ErrDegenerate)
			assert.Zero(t, got)
		})
	}
}
