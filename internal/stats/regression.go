package stats

import "gonum.org/v1/gonum/stat"

// Regression is an ordinary least squares fit of y against x = 1..n.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// LinearRegression fits ys against their 1-based positions.
//
// A constant series has no variance to explain, so its R² is reported
// as 0 ("no trend detectable") instead of NaN.
func LinearRegression(ys []float64) Regression {
	if len(ys) < 2 {
		return Regression{Intercept: Mean(ys)}
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i + 1)
	}
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	r := Regression{Slope: beta, Intercept: alpha}
	if constant(ys) {
		r.Slope = 0
		r.Intercept = ys[0]
		return r
	}
	r.RSquared = stat.RSquared(xs, ys, nil, alpha, beta)
	return r
}
