package decision

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
)

// TrendType is the direction of a detected linear trend.
type TrendType string

const (
	TrendNone  TrendType = "none"
	TrendWear  TrendType = "wear"
	TrendDrift TrendType = "drift"
)

const (
	trendMinR2      = 0.7
	trendMinPoints  = 3
	slopeRangeRatio = 10
)

// Trend is the outcome of DetectTrend.
type Trend struct {
	Detectable     bool      `json:"detectable"`
	Slope          float64   `json:"slope"`
	RSquared       float64   `json:"r_squared"`
	Type           TrendType `json:"type"`
	Strength       string    `json:"strength"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

// HasTrend reports whether a wear or drift trend was found.
func (t Trend) HasTrend() bool { return t.Type == TrendWear || t.Type == TrendDrift }

// DetectTrend fits a line through the series. A trend requires
// |slope| > (max-min)/(10n) and R² > 0.7; a negative slope is wear and a
// positive one drift.
func DetectTrend(values []float64) Trend {
	n := len(values)
	if n < trendMinPoints {
		return Trend{Type: TrendNone, Message: fmt.Sprintf("trend not detectable: need at least %d points", trendMinPoints)}
	}
	reg := stats.LinearRegression(values)
	lo, hi := stats.MinMax(values)
	threshold := (hi - lo) / float64(n*slopeRangeRatio)

	t := Trend{
		Detectable:     true,
		Slope:          reg.Slope,
		RSquared:       reg.RSquared,
		Type:           TrendNone,
		Strength:       strength(reg.RSquared),
		Recommendation: "use a standard Shewhart control chart",
	}
	if math.Abs(reg.Slope) > threshold && reg.RSquared > trendMinR2 {
		if reg.Slope < 0 {
			t.Type = TrendWear
			t.Recommendation = "wear trend detected; use an Acceptance Control Chart"
		} else {
			t.Type = TrendDrift
			t.Recommendation = "drift trend detected; use an extended Shewhart chart or EWMA"
		}
	}
	if t.HasTrend() {
		t.Message = fmt.Sprintf("%s trend detected (R² = %.4f)", t.Type, reg.RSquared)
	} else {
		t.Message = fmt.Sprintf("no significant trend (R² = %.4f)", reg.RSquared)
	}
	return t
}

func strength(r2 float64) string {
	switch {
	case r2 > 0.8:
		return "strong"
	case r2 > 0.5:
		return "medium"
	default:
		return "weak"
	}
}
