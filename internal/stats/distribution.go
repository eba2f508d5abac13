package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CurvePoints is the resolution of the fitted normal curve.
const CurvePoints = 100

// Histogram holds equal-width bin centers and their counts.
type Histogram struct {
	BinCenters []float64 `json:"bin_centers"`
	Counts     []int     `json:"counts"`
	BinWidth   float64   `json:"bin_width"`
}

// Curve is a sampled normal density, scaled to histogram counts.
type Curve struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// NewHistogram bins xs into equal-width bins spanning [min, max]; the
// last bin is closed. A constant series spans [v-0.5, v+0.5].
func NewHistogram(xs []float64, bins int) Histogram {
	if len(xs) == 0 || bins < 1 {
		return Histogram{BinCenters: []float64{}, Counts: []int{}}
	}
	lo, hi := MinMax(xs)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	width := edges[1] - edges[0]

	dividers := append([]float64(nil), edges...)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	raw := stat.Histogram(nil, dividers, sorted, nil)

	h := Histogram{
		BinCenters: make([]float64, bins),
		Counts:     make([]int, bins),
		BinWidth:   width,
	}
	for i := 0; i < bins; i++ {
		h.BinCenters[i] = (edges[i] + edges[i+1]) / 2
		h.Counts[i] = int(raw[i])
	}
	return h
}

// NormalCurve samples N(mean, sd) over mean ± 4sd and scales the density
// by n*binWidth. It is empty when sd is not positive.
func NormalCurve(mean, sd float64, n int, binWidth float64) Curve {
	if !(sd > 0) || !Finite(mean) {
		return Curve{X: []float64{}, Y: []float64{}}
	}
	dist := distuv.Normal{Mu: mean, Sigma: sd}
	xs := make([]float64, CurvePoints)
	floats.Span(xs, mean-4*sd, mean+4*sd)
	ys := make([]float64, CurvePoints)
	scale := float64(n) * binWidth
	for i, x := range xs {
		ys[i] = dist.Prob(x) * scale
	}
	return Curve{X: xs, Y: ys}
}

// TwoSidedTail returns 2*(1-Φ(|z|)), the mass outside ±z of a unit normal.
func TwoSidedTail(z float64) float64 {
	return 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
}
