package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OutlierThreshold is the default robust |z| cutoff.
const OutlierThreshold = 3.5

// MedianMAD computes the median and the median absolute deviation.
func MedianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	median = median50(cp)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = median50(dev)
	return
}

// RobustOutliers returns the positions whose robust z-score
// 0.6745*(x-median)/MAD exceeds threshold in absolute value.
// A zero MAD yields no outliers.
func RobustOutliers(vals []float64, threshold float64) []int {
	out := []int{}
	median, mad := MedianMAD(vals)
	if mad == 0 {
		return out
	}
	for i, v := range vals {
		if math.Abs(0.6745*(v-median)/mad) > threshold {
			out = append(out, i)
		}
	}
	return out
}

// median50 is the median of a sorted slice. Odd lengths take the middle
// order statistic; even lengths average the two middle values, which no
// single stat.CumulantKind returns.
func median50(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return stat.Quantile(0.5, stat.Empirical, sorted, nil)
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}
