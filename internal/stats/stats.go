// Package stats holds the numeric primitives used by the SPC engine.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// D2 is the bias correction for a moving range of two adjacent individuals.
const D2 = 1.128

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// SampleStdDev returns the n-1 standard deviation. It is 0 when n < 2
// and exactly 0 whenever every element is equal.
func SampleStdDev(xs []float64) float64 {
	if len(xs) < 2 || constant(xs) {
		return 0
	}
	return math.Sqrt(stat.Variance(xs, nil))
}

// MovingRange returns |x[i]-x[i-1]| for i = 1..n-1.
func MovingRange(xs []float64) []float64 {
	if len(xs) < 2 {
		return []float64{}
	}
	out := make([]float64, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		out[i-1] = math.Abs(xs[i] - xs[i-1])
	}
	return out
}

// WithinStdDev estimates short-term sigma as mean(moving range)/D2.
func WithinStdDev(xs []float64) float64 {
	return Mean(MovingRange(xs)) / D2
}

// MinMax returns the extremes of xs; both are 0 for empty input.
func MinMax(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return floats.Min(xs), floats.Max(xs)
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func constant(xs []float64) bool {
	lo, hi := MinMax(xs)
	return lo == hi
}
