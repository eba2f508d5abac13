package stats

import (
	"fmt"
	"math"
	"sort"
)

// NormalityResult is the outcome of a normality check at alpha = 0.05.
type NormalityResult struct {
	Testable bool    `json:"testable"`
	W        float64 `json:"w,omitempty"`
	PValue   float64 `json:"p_value,omitempty"`
	IsNormal bool    `json:"is_normal"`
	Alpha    float64 `json:"alpha"`
	Message  string  `json:"message"`
}

// NormalityTester classifies a sample as normal or not.
type NormalityTester interface {
	Test(xs []float64) NormalityResult
}

// ApproxShapiroWilk is a coarse Shapiro-Wilk W test. Its p-value is a
// bucket (0.001, 0.01, 0.05, 0.1), usable only as a normal/non-normal flag.
type ApproxShapiroWilk struct{}

const (
	swMinN = 3
	swMaxN = 5000
	alpha  = 0.05
)

var swCoefficients = map[int][]float64{
	3:  {0.7071},
	4:  {0.6872, 0.1677},
	5:  {0.6646, 0.1543, 0},
	6:  {0.6431, 0.1519, 0.0351},
	7:  {0.6233, 0.1496, 0.0458},
	8:  {0.6052, 0.1472, 0.0539},
	9:  {0.5888, 0.1447, 0.0604},
	10: {0.5739, 0.1422, 0.0658},
}

func swWeights(n int) []float64 {
	if c, ok := swCoefficients[n]; ok {
		return c
	}
	out := make([]float64, n/2)
	for i := range out {
		j := float64(i + 1)
		out[i] = math.Sqrt(j/(float64(n)+1-j)) * 0.5
	}
	return out
}

func swPValue(w float64) float64 {
	switch {
	case w < 0.8:
		return 0.001
	case w < 0.9:
		return 0.01
	case w < 0.95:
		return 0.05
	default:
		return 0.1
	}
}

// Test implements NormalityTester.
func (ApproxShapiroWilk) Test(xs []float64) NormalityResult {
	n := len(xs)
	if n < swMinN || n > swMaxN {
		return NormalityResult{
			Alpha:   alpha,
			Message: fmt.Sprintf("normality not testable: need %d-%d points, have %d", swMinN, swMaxN, n),
		}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	mean := Mean(sorted)
	var ss float64
	for _, v := range sorted {
		ss += (v - mean) * (v - mean)
	}
	if ss == 0 {
		return NormalityResult{Alpha: alpha, Message: "normality not testable: zero variance"}
	}
	a := swWeights(n)
	var num float64
	for i := 0; i < n/2 && i < len(a); i++ {
		num += a[i] * (sorted[n-1-i] - sorted[i])
	}
	w := num * num / ss
	p := swPValue(w)
	res := NormalityResult{Testable: true, W: w, PValue: p, IsNormal: p >= alpha, Alpha: alpha}
	if res.IsNormal {
		res.Message = fmt.Sprintf("data is consistent with a normal distribution (p = %.4f >= %.2f)", p, alpha)
	} else {
		res.Message = fmt.Sprintf("data is not normally distributed (p = %.4f < %.2f)", p, alpha)
	}
	return res
}
