package decision

import "github.com/KaramelBytes/qip-spc-cli/internal/stats"

// Normality is a normality test result with follow-up advice.
type Normality struct {
	stats.NormalityResult
	Recommendations []string `json:"recommendations,omitempty"`
}

// NonNormal reports whether the series was tested and rejected.
// An untestable series is not treated as non-normal.
func (n Normality) NonNormal() bool { return n.Testable && !n.IsNormal }

// TestNormality runs t over values; a nil t uses ApproxShapiroWilk.
func TestNormality(t stats.NormalityTester, values []float64) Normality {
	if t == nil {
		t = stats.ApproxShapiroWilk{}
	}
	res := Normality{NormalityResult: t.Test(values)}
	switch {
	case !res.Testable:
	case res.IsNormal:
		res.Recommendations = []string{"use a standard Shewhart control chart"}
	default:
		res.Recommendations = []string{
			"try a log transformation",
			"try a Box-Cox transformation",
			"try a square-root transformation",
			"consider non-parametric methods",
			"check for outliers",
		}
	}
	return res
}
