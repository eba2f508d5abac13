package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 10.0, Mean([]float64{9.8, 10.0, 10.2, 9.9, 10.1}), 1e-12)

	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3}, 0},
		{"constant", []float64{5, 5, 5, 5}, 0},
		{"spread", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0 / 7.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SampleStdDev(tt.xs), 1e-12)
		})
	}
}

func TestSampleStdDevZeroIffConstant(t *testing.T) {
	series := [][]float64{
		{1, 1},
		{0.1, 0.1, 0.1},
		{1, 2},
		{-3, 3, -3},
		{1e6, 1e6 + 1},
	}
	for _, xs := range series {
		sd := SampleStdDev(xs)
		assert.GreaterOrEqual(t, sd, 0.0)
		lo, hi := MinMax(xs)
		assert.Equal(t, lo == hi, sd == 0, "series %v", xs)
	}
}

func TestMovingRange(t *testing.T) {
	assert.Empty(t, MovingRange(nil))
	assert.Empty(t, MovingRange([]float64{1}))

	xs := []float64{10, 12, 9, 9, 15}
	mr := MovingRange(xs)
	require.Len(t, mr, len(xs)-1)
	assert.Equal(t, []float64{2, 3, 0, 6}, mr)
	for _, v := range mr {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 2.75/D2, WithinStdDev(xs), 1e-12)
}

func TestConstantsForClamps(t *testing.T) {
	assert.Equal(t, 2, ConstantsFor(1).N)
	assert.Equal(t, 10, ConstantsFor(32).N)
	c := ConstantsFor(5)
	assert.Equal(t, 0.577, c.A2)
	assert.Equal(t, 2.115, c.D4)
	assert.Equal(t, 0.0, c.D3)
	assert.Equal(t, 0.223, ConstantsFor(10).D3)
}

func TestLinearRegression(t *testing.T) {
	r := LinearRegression([]float64{2, 4, 6, 8, 10})
	assert.InDelta(t, 2.0, r.Slope, 1e-9)
	assert.InDelta(t, 0.0, r.Intercept, 1e-9)
	assert.InDelta(t, 1.0, r.RSquared, 1e-9)

	flat := LinearRegression([]float64{3, 3, 3, 3})
	assert.Equal(t, 0.0, flat.Slope)
	assert.Equal(t, 0.0, flat.RSquared)
	assert.False(t, math.IsNaN(flat.RSquared))

	noisy := LinearRegression([]float64{1, 3, 2, 4, 3, 5})
	assert.Greater(t, noisy.Slope, 0.0)
	assert.Less(t, noisy.RSquared, 1.0)
}

func TestApproxShapiroWilk(t *testing.T) {
	var tester NormalityTester = ApproxShapiroWilk{}

	short := tester.Test([]float64{1, 2})
	assert.False(t, short.Testable)

	flat := tester.Test([]float64{4, 4, 4, 4})
	assert.False(t, flat.Testable)

	bell := tester.Test([]float64{9.5, 9.9, 10.0, 10.1, 10.5})
	require.True(t, bell.Testable)
	assert.True(t, bell.IsNormal)
	assert.Contains(t, []float64{0.001, 0.01, 0.05, 0.1}, bell.PValue)

	skewed := tester.Test([]float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 50})
	require.True(t, skewed.Testable)
	assert.False(t, skewed.IsNormal)
	assert.Equal(t, 0.001, skewed.PValue)
}

func TestHistogramCountsEveryPoint(t *testing.T) {
	xs := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 10}
	h := NewHistogram(xs, 15)
	require.Len(t, h.Counts, 15)
	require.Len(t, h.BinCenters, 15)
	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, len(xs), total)
	assert.Equal(t, 1, h.Counts[14], "max lands in the closed last bin")
	assert.InDelta(t, 0.6, h.BinWidth, 1e-12)

	flat := NewHistogram([]float64{7, 7, 7}, 15)
	total = 0
	for _, c := range flat.Counts {
		total += c
	}
	assert.Equal(t, 3, total)
}

func TestNormalCurve(t *testing.T) {
	c := NormalCurve(10, 1, 50, 0.5)
	require.Len(t, c.X, CurvePoints)
	assert.InDelta(t, 6.0, c.X[0], 1e-12)
	assert.InDelta(t, 14.0, c.X[CurvePoints-1], 1e-12)
	for _, y := range c.Y {
		assert.True(t, Finite(y))
		assert.GreaterOrEqual(t, y, 0.0)
	}
	assert.Empty(t, NormalCurve(10, 0, 50, 0.5).X)
}

func TestTwoSidedTail(t *testing.T) {
	assert.InDelta(t, 0.0027, TwoSidedTail(3), 1e-4)
	assert.InDelta(t, 1.0, TwoSidedTail(0), 1e-12)
	assert.Equal(t, TwoSidedTail(-2), TwoSidedTail(2))
}

func TestRobustOutliers(t *testing.T) {
	median, mad := MedianMAD([]float64{1, 2, 3, 4, 100})
	assert.Equal(t, 3.0, median)
	assert.Equal(t, 1.0, mad)
	median, mad = MedianMAD([]float64{4, 1, 3, 2})
	assert.Equal(t, 2.5, median)
	assert.Equal(t, 1.0, mad)
	assert.Equal(t, []int{4}, RobustOutliers([]float64{1, 2, 3, 4, 100}, OutlierThreshold))
	assert.Empty(t, RobustOutliers([]float64{5, 5, 5, 9}, OutlierThreshold))
}
